package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// Dispatcher routes a document to the extractor registered for its file
// extension. Registration keys are lowercase extensions with the dot,
// e.g. ".pdf".
type Dispatcher struct {
	byExtension map[string]ports.TextExtractor
	fallback    ports.TextExtractor
}

func NewDispatcher(fallback ports.TextExtractor) *Dispatcher {
	return &Dispatcher{
		byExtension: make(map[string]ports.TextExtractor),
		fallback:    fallback,
	}
}

func (d *Dispatcher) Register(extension string, extractor ports.TextExtractor) {
	d.byExtension[strings.ToLower(extension)] = extractor
}

func (d *Dispatcher) Extract(ctx context.Context, doc *domain.Document) ([]domain.Fragment, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if impl, ok := d.byExtension[ext]; ok {
		return impl.Extract(ctx, doc)
	}
	if d.fallback != nil {
		return d.fallback.Extract(ctx, doc)
	}
	return nil, domain.WrapError(domain.ErrInvalidInput, "extract document",
		errors.New("unsupported file type: "+ext))
}
