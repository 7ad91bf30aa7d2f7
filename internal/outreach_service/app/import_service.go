package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
)

// ImportService builds contact collections from uploaded payloads and swaps
// them into the application. Both modes replace the whole collection; there
// are no merge semantics.
type ImportService struct {
	app    *Application
	logger *slog.Logger
}

// NewImportService creates an ImportService.
func NewImportService(app *Application, logger *slog.Logger) *ImportService {
	return &ImportService{
		app:    app,
		logger: logger.With("component", "import_service"),
	}
}

// ImportResult reports what an import produced. Warnings are only ever
// present for spreadsheet mode, where a bad row is skipped instead of
// aborting the batch.
type ImportResult struct {
	Contacts []*domain.Contact   `json:"contacts"`
	Warnings []domain.RowWarning `json:"warnings,omitempty"`
}

type jsonContactRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	CustomMessage string `json:"customMessage"`
}

// ImportJSON parses a raw JSON array of contacts. Any failure aborts the
// whole import: the caller sees zero imported records, never a partial set.
func (s *ImportService) ImportJSON(ctx context.Context, data []byte) (*ImportResult, error) {
	var records []jsonContactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		importsTotal.WithLabelValues("json", "failure").Inc()
		return nil, &domain.ValidationError{Reason: "payload is not a JSON array of contacts: " + err.Error()}
	}

	contacts := make([]*domain.Contact, 0, len(records))
	for i, rec := range records {
		if rec.Name == "" && rec.Phone == "" {
			importsTotal.WithLabelValues("json", "failure").Inc()
			return nil, &domain.ValidationError{Reason: fmt.Sprintf("element %d has neither name nor phone", i)}
		}
		phone, err := domain.NormalizePhone(rec.Phone, s.app.CountryCode())
		if err != nil {
			importsTotal.WithLabelValues("json", "failure").Inc()
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		id := uuid.New()
		if rec.ID != "" {
			if parsed, perr := uuid.Parse(rec.ID); perr == nil {
				id = parsed
			}
		}
		c := domain.NewContact(id, rec.Name, phone)
		c.CustomMessage = rec.CustomMessage
		contacts = append(contacts, c)
	}

	if len(contacts) == 0 {
		importsTotal.WithLabelValues("json", "failure").Inc()
		return nil, &domain.EmptyResultError{Operation: "import"}
	}

	s.app.ReplaceCollection(ctx, contacts)
	importsTotal.WithLabelValues("json", "success").Inc()
	importedContactsTotal.Add(float64(len(contacts)))
	s.logger.InfoContext(ctx, "JSON import finished", "contacts", len(contacts))
	return &ImportResult{Contacts: contacts}, nil
}

// ImportSpreadsheet parses an xlsx workbook. The header row must contain a
// recognizable name column and phone column; data rows missing either value
// are skipped silently, rows with unnormalizable phones are skipped with a
// warning, and every other non-empty cell is carried as a typed side field
// under its original header.
func (s *ImportService) ImportSpreadsheet(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		importsTotal.WithLabelValues("spreadsheet", "failure").Inc()
		return nil, &domain.ValidationError{Reason: "file is not a readable spreadsheet: " + err.Error()}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		importsTotal.WithLabelValues("spreadsheet", "failure").Inc()
		return nil, &domain.ValidationError{Reason: "reading spreadsheet rows: " + err.Error()}
	}
	if len(rows) == 0 {
		importsTotal.WithLabelValues("spreadsheet", "failure").Inc()
		return nil, &domain.ValidationError{Reason: "spreadsheet has no header row"}
	}

	headers := rows[0]
	nameIdx, phoneIdx := -1, -1
	for i, h := range headers {
		switch {
		case nameIdx < 0 && domain.IsNameHeader(h):
			nameIdx = i
		case phoneIdx < 0 && domain.IsPhoneHeader(h):
			phoneIdx = i
		}
	}
	if nameIdx < 0 {
		importsTotal.WithLabelValues("spreadsheet", "failure").Inc()
		return nil, &domain.ValidationError{Reason: `spreadsheet header row must contain a name column (e.g. "Nome")`}
	}
	if phoneIdx < 0 {
		importsTotal.WithLabelValues("spreadsheet", "failure").Inc()
		return nil, &domain.ValidationError{Reason: `spreadsheet header row must contain a phone column (e.g. "Telefone")`}
	}

	var (
		contacts []*domain.Contact
		warnings []domain.RowWarning
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header row

		name := strings.TrimSpace(cellAt(row, nameIdx))
		rawPhone := strings.TrimSpace(cellAt(row, phoneIdx))
		if name == "" || rawPhone == "" {
			importRowsSkippedTotal.Inc()
			continue
		}

		phone, err := domain.NormalizePhone(rawPhone, s.app.CountryCode())
		if err != nil {
			warnings = append(warnings, domain.RowWarning{Row: rowNum, Err: err})
			importRowsSkippedTotal.Inc()
			continue
		}

		c := domain.NewContact(uuid.New(), name, phone)
		for j, header := range headers {
			if j == nameIdx || j == phoneIdx || strings.TrimSpace(header) == "" {
				continue
			}
			raw := strings.TrimSpace(cellAt(row, j))
			if raw == "" {
				continue
			}
			c.ExtraInfo = append(c.ExtraInfo, domain.ClassifyField(header, raw))
		}
		contacts = append(contacts, c)
	}

	if len(contacts) == 0 {
		importsTotal.WithLabelValues("spreadsheet", "failure").Inc()
		return nil, &domain.EmptyResultError{Operation: "import", Warnings: warnings}
	}

	s.app.ReplaceCollection(ctx, contacts)
	importsTotal.WithLabelValues("spreadsheet", "success").Inc()
	importedContactsTotal.Add(float64(len(contacts)))
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "Import row skipped", "row", w.Row, "error", w.Err)
	}
	s.logger.InfoContext(ctx, "Spreadsheet import finished", "contacts", len(contacts), "skipped_rows", len(warnings))
	return &ImportResult{Contacts: contacts, Warnings: warnings}, nil
}

// ImportFile routes an uploaded file to the right mode by extension.
func (s *ImportService) ImportFile(ctx context.Context, filename string, data []byte) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return s.ImportJSON(ctx, data)
	case ".xlsx", ".xlsm", ".xltx":
		return s.ImportSpreadsheet(ctx, bytes.NewReader(data))
	default:
		importsTotal.WithLabelValues("file", "failure").Inc()
		return nil, &domain.ValidationError{Reason: "unsupported file type: " + filepath.Ext(filename)}
	}
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
