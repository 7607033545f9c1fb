package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// Extractor pulls plain text out of PDF documents, one fragment per page so
// page numbers survive into chunk metadata. Pages that fail to parse are
// skipped; a document where every page fails is an error.
type Extractor struct {
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewExtractor(storage ports.ObjectStorage, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{storage: storage, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.Fragment, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	pages := pdfReader.NumPage()
	fragments := make([]domain.Fragment, 0, pages)
	failed := 0
	for i := 1; i <= pages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			failed++
			e.logger.Warn("pdf page extraction failed", "file", doc.Filename, "page", i, "error", err)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fragments = append(fragments, domain.Fragment{Text: text, PageNumber: i})
	}

	if len(fragments) == 0 && failed > 0 {
		return nil, fmt.Errorf("no extractable text in pdf: %s (%d pages failed)", doc.Filename, failed)
	}
	return fragments, nil
}
