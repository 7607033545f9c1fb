package xlsxdoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// Extractor turns spreadsheet rows into standalone table fragments. Each
// data row is serialized as "header: value" pairs so a row stays meaningful
// as a retrieval unit without its neighbors.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.Fragment, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	book, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer book.Close()

	var fragments []domain.Fragment
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		headers := rows[0]
		for _, row := range rows[1:] {
			text := serializeRow(sheet, headers, row)
			if text == "" {
				continue
			}
			fragments = append(fragments, domain.Fragment{Text: text, IsTable: true})
		}
	}
	return fragments, nil
}

func serializeRow(sheet string, headers, row []string) string {
	var b strings.Builder
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
			b.WriteString(strings.TrimSpace(headers[i]))
			b.WriteString(": ")
		}
		b.WriteString(cell)
	}
	if b.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("[%s] %s", sheet, b.String())
}
