package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Noise-unit/Noise-Map/internal/ingest"
)

// UploadResult reports the outcome of ingesting one uploaded file.
type UploadResult struct {
	File    string `json:"file" doc:"Uploaded file name"`
	LayerID string `json:"layerId,omitempty" doc:"Registry id of the created layer"`
	Error   string `json:"error,omitempty" doc:"Ingestion error, if the file was rejected"`
}

// Uploader ingests user-provided files into the uploaded partition. Each
// file is processed independently: a rejected file is reported in its
// result and never aborts the rest of the batch.
type Uploader struct {
	registry *Registry
	ingestor *ingest.Ingestor
	guess    LabelGuesser
}

// NewUploader creates an Uploader. guess may be nil to use the default
// label guesser.
func NewUploader(registry *Registry, ingestor *ingest.Ingestor, guess LabelGuesser) *Uploader {
	return &Uploader{registry: registry, ingestor: ingestor, guess: guess}
}

// Upload ingests a single file and commits it as an active uploaded layer.
// Failed ingestion leaves no trace in the registry.
func (u *Uploader) Upload(filename string, data []byte) UploadResult {
	result, err := u.ingestor.Ingest(filename, data)
	if err != nil {
		slog.Warn("upload rejected", "file", filename, "error", err)
		return UploadResult{File: filename, Error: uploadErrorMessage(err)}
	}

	id := slugify(filename)
	u.registry.Put(PartitionUploaded, &Entry{
		ID:       id,
		Name:     filename,
		Layer:    result.Layer,
		Features: result.Features,
		Active:   true,
		Opacity:  DefaultUploadedOpacity,
		Meta: LayerMeta{
			Type:       TypeOther,
			Source:     filename,
			LabelField: ResolveLabelField(LayerConfig{}, result.Features, u.guess),
		},
	})
	slog.Info("upload ingested", "file", filename, "id", id, "features", len(result.Features))
	return UploadResult{File: filename, LayerID: id}
}

// UploadBatch ingests every file in order, returning one result per file.
func (u *Uploader) UploadBatch(files map[string][]byte, order []string) []UploadResult {
	results := make([]UploadResult, 0, len(order))
	for _, name := range order {
		results = append(results, u.Upload(name, files[name]))
	}
	return results
}

// uploadErrorMessage maps ingestion failures onto the user-facing
// messages shown once per file.
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "unsupported file type"
	case errors.Is(err, ingest.ErrMissingDependency):
		return "shapefile conversion is not available"
	case errors.Is(err, ingest.ErrParse):
		return "file could not be parsed"
	default:
		return err.Error()
	}
}

// slugify creates a URL-safe layer id from a file name.
func slugify(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "_")
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
