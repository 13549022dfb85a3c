package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/velora-health/docenrich/internal/model"
	"github.com/velora-health/docenrich/internal/records"
)

// RecordSource supplies the tag records to export.
type RecordSource interface {
	Scan(ctx context.Context, filter records.Filter) ([]model.TagRecord, error)
}

// Service produces XLSX bytes summarizing tag records for reporting.
type Service struct {
	source RecordSource
	logger *slog.Logger
}

func NewService(source RecordSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// ExportTagsXLSX returns an XLSX workbook (as bytes) for the matching records.
// If only from is provided -> from..now (inclusive).
// If neither is provided   -> all records.
func (s *Service) ExportTagsXLSX(ctx context.Context, documentID string, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		now := time.Now().UTC()
		toDate = &now
	}

	recs, err := s.source.Scan(ctx, records.Filter{DocumentID: documentID, From: fromDate, To: toDate})
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Tags"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Detected At",
		"Document",
		"Asset Type",
		"Operation",
		"Tag",
		"Value",
		"Confidence",
		"Location",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, time.UnixMilli(r.Timestamp).UTC().Format("2006-01-02 15:04:05"))
		write(2, r.DocumentID)
		write(3, string(r.AssetType))
		write(4, string(r.Operation))
		write(5, r.Tag)
		if r.Value != nil {
			write(6, truncate(*r.Value, 140))
		} else {
			write(6, "")
		}
		write(7, fmt.Sprintf("%.2f", r.Confidence))
		write(8, r.Location)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 16) // document
	_ = f.SetColWidth(sheet, "C", "D", 16) // asset type, operation
	_ = f.SetColWidth(sheet, "E", "E", 28) // tag
	_ = f.SetColWidth(sheet, "F", "F", 48) // value
	_ = f.SetColWidth(sheet, "G", "G", 12) // confidence
	_ = f.SetColWidth(sheet, "H", "H", 60) // location

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
