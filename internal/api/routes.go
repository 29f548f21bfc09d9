// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/Noise-unit/Noise-Map/internal/maplayer"
	"github.com/Noise-unit/Noise-Map/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Registry *service.Registry
	Surface  *maplayer.MemorySurface

	// Layers and Groups are the repository configuration; read-only.
	Layers []service.LayerConfig
	Groups []service.GroupDefinition
}

// Types

// LayerInfo is the API view of a registry entry.
type LayerInfo struct {
	ID         string            `json:"id" doc:"Layer id"`
	Name       string            `json:"name" doc:"Display name"`
	Partition  string            `json:"partition" enum:"uploaded,repo" doc:"Registry partition"`
	Active     bool              `json:"active" doc:"Whether the layer is visible"`
	Opacity    float64           `json:"opacity" minimum:"0" maximum:"1" doc:"Layer opacity"`
	Kind       string            `json:"kind,omitempty" doc:"Renderer kind, e.g. markers or shapes"`
	Features   int               `json:"features" doc:"Number of features in the layer"`
	Meta       service.LayerMeta `json:"meta" doc:"Resolved layer metadata"`
}

type PartitionIDInput struct {
	Partition string `path:"partition" enum:"uploaded,repo" doc:"Registry partition"`
	ID        string `path:"id" doc:"Layer id" example:"noise-zones"`
}

type LayersOutput struct {
	Body struct {
		Layers []LayerInfo `json:"layers" doc:"All registry entries, uploaded partition first"`
	}
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterLayers registers layer state routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{partition}/{id}", h.GetLayer, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers/{partition}/{id}/active", h.SetActive, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers/{partition}/{id}/opacity", h.SetOpacity, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/layers/uploaded/{id}", h.DeleteUploaded, huma.OperationTags("layers"))
}

// RegisterFeatures registers the aggregate feature query.
func (h *APIHandler) RegisterFeatures(api huma.API) {
	huma.Get(api, "/api/v1/features/active", h.GetActiveFeatures, huma.OperationTags("features"))
}

// RegisterGroups registers the grouped panel listing.
func (h *APIHandler) RegisterGroups(api huma.API) {
	huma.Get(api, "/api/v1/groups", h.GetGroups, huma.OperationTags("layers"))
}

// RegisterMap registers map surface event routes.
func (h *APIHandler) RegisterMap(api huma.API) {
	huma.Post(api, "/api/v1/map/zoom", h.SetZoom, huma.OperationTags("map"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func layerInfo(part service.Partition, e *service.Entry) LayerInfo {
	kind := ""
	if e.Layer != nil {
		kind = e.Layer.Kind()
	}
	return LayerInfo{
		ID:        e.ID,
		Name:      e.Name,
		Partition: string(part),
		Active:    e.Active,
		Opacity:   e.Opacity,
		Kind:      kind,
		Features:  len(e.Features),
		Meta:      e.Meta,
	}
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	out := &LayersOutput{}
	out.Body.Layers = []LayerInfo{}
	for _, part := range []service.Partition{service.PartitionUploaded, service.PartitionRepo} {
		for _, e := range h.svc.Registry.List(part) {
			out.Body.Layers = append(out.Body.Layers, layerInfo(part, e))
		}
	}
	return out, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *PartitionIDInput) (*struct{ Body LayerInfo }, error) {
	e, ok := h.svc.Registry.Get(service.Partition(input.Partition), input.ID)
	if !ok {
		return nil, huma.Error404NotFound("layer not found")
	}
	return &struct{ Body LayerInfo }{Body: layerInfo(service.Partition(input.Partition), e)}, nil
}

func (h *APIHandler) SetActive(ctx context.Context, input *struct {
	PartitionIDInput
	Body struct {
		Active bool `json:"active" doc:"Desired visibility"`
	}
}) (*struct{ Body MessageBody }, error) {
	// A missing id is not an error; the layer may simply not be ready yet.
	h.svc.Registry.SetActive(service.Partition(input.Partition), input.ID, input.Body.Active)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "ok"}}, nil
}

func (h *APIHandler) SetOpacity(ctx context.Context, input *struct {
	PartitionIDInput
	Body struct {
		Opacity float64 `json:"opacity" minimum:"0" maximum:"1" doc:"Desired opacity"`
	}
}) (*struct{ Body MessageBody }, error) {
	h.svc.Registry.SetOpacity(service.Partition(input.Partition), input.ID, input.Body.Opacity)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "ok"}}, nil
}

type DeleteUploadedInput struct {
	ID string `path:"id" doc:"Uploaded layer id"`
}

func (h *APIHandler) DeleteUploaded(ctx context.Context, input *DeleteUploadedInput) (*struct{ Body MessageBody }, error) {
	if !h.svc.Registry.Remove(service.PartitionUploaded, input.ID) {
		return nil, huma.Error404NotFound("layer not found")
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer removed"}}, nil
}

// ActiveFeaturesOutput carries a pre-marshaled GeoJSON document.
type ActiveFeaturesOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *APIHandler) GetActiveFeatures(ctx context.Context, input *struct{}) (*ActiveFeaturesOutput, error) {
	fc := geojson.NewFeatureCollection()
	fc.Features = h.svc.Registry.AllActiveFeatures()
	if fc.Features == nil {
		fc.Features = []*geojson.Feature{}
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to encode features", err)
	}
	return &ActiveFeaturesOutput{ContentType: "application/geo+json", Body: data}, nil
}

// SetZoom propagates a map zoom change to every attached handle that
// restyles itself by zoom level.
func (h *APIHandler) SetZoom(ctx context.Context, input *struct {
	Body struct {
		Zoom int `json:"zoom" minimum:"0" maximum:"22" doc:"New map zoom level"`
	}
}) (*struct{ Body MessageBody }, error) {
	if h.svc.Surface != nil {
		h.svc.Surface.ApplyZoom(input.Body.Zoom)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "ok"}}, nil
}

type GroupsOutput struct {
	Body struct {
		Groups []service.PanelGroup `json:"groups" doc:"Grouped repo layers in panel order"`
	}
}

func (h *APIHandler) GetGroups(ctx context.Context, input *struct{}) (*GroupsOutput, error) {
	out := &GroupsOutput{}
	out.Body.Groups = service.PanelGroups(h.svc.Groups, h.svc.Layers)
	if out.Body.Groups == nil {
		out.Body.Groups = []service.PanelGroup{}
	}
	return out, nil
}
