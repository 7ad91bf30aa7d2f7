package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
)

const (
	exportSheet  = "Contatos"
	statusHeader = "Status"

	// Column widths track the longest value but stay readable either way.
	minColWidth = 12.0
	maxColWidth = 60.0

	headerFillColor = "25D366"
)

// ExportService serializes the current collection back into an xlsx workbook,
// one data row per contact plus a styled header row.
type ExportService struct {
	app    *Application
	logger *slog.Logger
}

// NewExportService creates an ExportService.
func NewExportService(app *Application, logger *slog.Logger) *ExportService {
	return &ExportService{
		app:    app,
		logger: logger.With("component", "export_service"),
	}
}

type columnKind int

const (
	colName columnKind = iota
	colPhone
	colStatus
	colSide
)

type exportColumn struct {
	header string
	kind   columnKind
}

// BuildWorkbook produces the export file in memory and returns its suggested
// file name (embedding the current UTC date and time) plus the xlsx bytes.
// An empty collection is an error and nothing is written.
func (s *ExportService) BuildWorkbook(ctx context.Context) (string, *bytes.Buffer, error) {
	contacts := s.app.ListContacts(ctx)
	if len(contacts) == 0 {
		exportsTotal.WithLabelValues("failure").Inc()
		return "", nil, &domain.EmptyResultError{Operation: "export"}
	}

	cols := planColumns(contacts)

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), exportSheet)

	widths := make([]int, len(cols))
	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(exportSheet, cell, col.header); err != nil {
			exportsTotal.WithLabelValues("failure").Inc()
			return "", nil, fmt.Errorf("writing header cell: %w", err)
		}
		widths[i] = utf8.RuneCountInString(col.header)
	}

	for r, c := range contacts {
		for i, col := range cols {
			value := cellValue(c, col)
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellStr(exportSheet, cell, value); err != nil {
				exportsTotal.WithLabelValues("failure").Inc()
				return "", nil, fmt.Errorf("writing cell %s: %w", cell, err)
			}
			// Width in characters, not bytes; accented pt-BR text must not
			// over-widen the column.
			if n := utf8.RuneCountInString(value); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i := range cols {
		width := float64(widths[i]) + 2
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, colName, colName, width); err != nil {
			exportsTotal.WithLabelValues("failure").Inc()
			return "", nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := s.styleHeader(f, len(cols)); err != nil {
		exportsTotal.WithLabelValues("failure").Inc()
		return "", nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		exportsTotal.WithLabelValues("failure").Inc()
		return "", nil, fmt.Errorf("serializing workbook: %w", err)
	}

	fileName := fmt.Sprintf("contatos_export_%s.xlsx", time.Now().UTC().Format("20060102T150405Z"))
	exportsTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "Export finished", "file_name", fileName, "contacts", len(contacts), "columns", len(cols))
	return fileName, buf, nil
}

// planColumns lays out the export: name and phone first, then every side
// field header in first-seen order. Follow-up columns from old exports are
// dropped and replaced by the synthesized status column, inserted right after
// the first volume-like column (appended when there is none). The placement
// is order-dependent on purpose; existing spreadsheets downstream rely on it.
func planColumns(contacts []*domain.Contact) []exportColumn {
	cols := []exportColumn{
		{header: "Nome", kind: colName},
		{header: "Telefone", kind: colPhone},
	}
	seen := make(map[string]bool)
	for _, c := range contacts {
		for _, field := range c.ExtraInfo {
			if seen[field.Key] || domain.IsFollowUpHeader(field.Key) {
				continue
			}
			seen[field.Key] = true
			cols = append(cols, exportColumn{header: field.Key, kind: colSide})
		}
	}

	statusCol := exportColumn{header: statusHeader, kind: colStatus}
	for i, col := range cols {
		if col.kind == colSide && domain.IsVolumeHeader(col.header) {
			cols = append(cols[:i+1], append([]exportColumn{statusCol}, cols[i+1:]...)...)
			return cols
		}
	}
	return append(cols, statusCol)
}

func cellValue(c *domain.Contact, col exportColumn) string {
	switch col.kind {
	case colName:
		return c.Name
	case colPhone:
		return c.Phone
	case colStatus:
		return c.Status.Label()
	default:
		field, ok := c.ExtraField(col.header)
		if !ok {
			return ""
		}
		if field.Kind == domain.FieldNumber && domain.IsVolumeHeader(col.header) {
			return domain.FormatBRL(field.Number)
		}
		return field.DisplayValue()
	}
}

func (s *ExportService) styleHeader(f *excelize.File, numCols int) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(numCols, 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, styleID); err != nil {
		return fmt.Errorf("applying header style: %w", err)
	}
	return nil
}
