package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/Noise-unit/Noise-Map/internal/service"
)

// EventHandler streams registry change events to the map UI via Datastar
// SSE signals. The one-shot "repo layers ready" notification arrives on
// the same stream; the UI must not query the repo partition before it.
type EventHandler struct {
	bus *service.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus *service.EventBus) *EventHandler {
	return &EventHandler{bus: bus}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/events", h.Events, huma.OperationTags("events"))
}

func (h *EventHandler) Events(ctx context.Context, input *struct{}) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			r, w := humago.Unwrap(humaCtx)
			sse := datastar.NewSSE(w, r)

			ch := h.bus.Subscribe()
			defer h.bus.Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					if ev.Action == service.ReadyAction {
						sse.MarshalAndPatchSignals(map[string]any{
							"repoLayersReady": true,
						})
						continue
					}
					sse.MarshalAndPatchSignals(map[string]any{
						"layerEvent": map[string]string{
							"partition": ev.Resource,
							"action":    ev.Action,
							"id":        ev.ID,
						},
					})
				}
			}
		},
	}, nil
}
