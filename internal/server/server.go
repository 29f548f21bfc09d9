// Package server assembles the Noise-Map HTTP service: the Huma REST API,
// the multipart upload endpoint and the static map page.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/Noise-unit/Noise-Map/internal/api"
	"github.com/Noise-unit/Noise-Map/internal/config"
	"github.com/Noise-unit/Noise-Map/internal/db"
	"github.com/Noise-unit/Noise-Map/internal/ingest"
	"github.com/Noise-unit/Noise-Map/internal/maplayer"
	"github.com/Noise-unit/Noise-Map/internal/proj"
	"github.com/Noise-unit/Noise-Map/internal/service"
	"github.com/Noise-unit/Noise-Map/internal/shpconv"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for the map page and assets
	App     *config.Config
}

// Server is the Noise-Map HTTP server.
type Server struct {
	config    Config
	mux       *http.ServeMux
	humaAPI   huma.API
	db        *sql.DB
	bus       *service.EventBus
	registry  *service.Registry
	uploader  *service.Uploader
	preloader *service.Preloader
	surface   *maplayer.MemorySurface
}

// New creates a new Noise-Map server.
func New(cfg Config) *Server {
	if cfg.App == nil {
		cfg.App = config.Default()
	}
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("Noise-Map API", "1.0.0")
	humaConfig.Info.Description = "Layer ingestion and state management API for the noise map."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	bus := service.NewEventBus()
	registry := service.NewRegistry(bus)
	surface := maplayer.NewMemorySurface()

	normalizer := ingest.NewNormalizer(proj.ForEPSG(cfg.App.SourceEPSG))
	ingestor := ingest.New(normalizer, shpconv.New(), nil)

	s := &Server{
		config:    cfg,
		mux:       mux,
		humaAPI:   humaAPI,
		bus:       bus,
		registry:  registry,
		surface:   surface,
		uploader:  service.NewUploader(registry, ingestor, nil),
		preloader: service.NewPreloader(registry, ingestor, &service.HTTPFetcher{}, surface, bus, nil),
	}

	// The measurement database is optional; the layer API works without it.
	conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "noisemap"})
	if err == nil {
		s.db = conn
	} else {
		slog.Warn("measurement database unavailable", "error", err)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

// OpenAPI returns the generated OpenAPI description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Registry exposes the layer registry for in-process collaborators.
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Preload starts loading the configured repo layers. Safe to call more
// than once; already-loaded configs are skipped.
func (s *Server) Preload(ctx context.Context) {
	s.preloader.Preload(ctx, s.config.App.Layers)
}

func (s *Server) routes() {
	services := &api.Services{
		Registry: s.registry,
		Surface:  s.surface,
		Layers:   s.config.App.Layers,
		Groups:   s.config.App.Groups,
	}
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(services))

	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewEventHandler(s.bus).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Multipart upload stays on the plain mux; each file in the batch is
	// ingested independently.
	s.mux.HandleFunc("/api/v1/layers/upload", s.handleUpload)

	// Static assets for the map page.
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/map", s.handleMap)
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "noise-map",
		"status":  "running",
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.config.WebDir, "templates", "map.html"))
}

// handleUpload ingests a batch of uploaded files. A rejected file is
// reported in its own result and never aborts the rest of the batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	form := r.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		http.Error(w, "No files provided", http.StatusBadRequest)
		return
	}

	var results []service.UploadResult
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			results = append(results, service.UploadResult{File: header.Filename, Error: "could not read file"})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			results = append(results, service.UploadResult{File: header.Filename, Error: "could not read file"})
			continue
		}
		res := s.uploader.Upload(header.Filename, data)
		s.recordMeasurements(r.Context(), res)
		results = append(results, res)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}

// recordMeasurements copies survey readings from a freshly uploaded layer
// into the measurements table for ad-hoc analysis. Best effort; the layer
// is already committed and a database failure must not fail the upload.
func (s *Server) recordMeasurements(ctx context.Context, res service.UploadResult) {
	if s.db == nil || res.Error != "" {
		return
	}
	e, ok := s.registry.Get(service.PartitionUploaded, res.LayerID)
	if !ok {
		return
	}
	ms := db.MeasurementsFromFeatures(e.Features, res.File)
	if len(ms) == 0 {
		return
	}
	if err := db.InsertMeasurements(ctx, s.db, ms); err != nil {
		slog.Warn("failed to record measurements", "file", res.File, "error", err)
	}
}
