package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
)

func newTestImportService(t *testing.T) (*ImportService, *Application) {
	t.Helper()
	application, _ := newTestApp(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewImportService(application, logger), application
}

func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportService_ImportJSON(t *testing.T) {
	svc, application := newTestImportService(t)
	ctx := context.Background()

	payload := []byte(`[
		{"name": "Ana", "phone": "11999999999"},
		{"id": "7e6ad4a8-58b0-4a0c-b6f1-59c3f2f42d3f", "name": "Bruno", "phone": "+55 11 98888-7777", "customMessage": "Oi {name}"}
	]`)

	result, err := svc.ImportJSON(ctx, payload)
	require.NoError(t, err)
	require.Len(t, result.Contacts, 2)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, "5511999999999", result.Contacts[0].Phone)
	assert.Equal(t, domain.StatusPending, result.Contacts[0].Status)
	assert.Equal(t, "7e6ad4a8-58b0-4a0c-b6f1-59c3f2f42d3f", result.Contacts[1].ID.String())
	assert.Equal(t, "Oi {name}", result.Contacts[1].CustomMessage)

	// The import replaced the application collection.
	assert.Len(t, application.ListContacts(ctx), 2)
}

func TestImportService_ImportJSON_NotAnArray(t *testing.T) {
	svc, application := newTestImportService(t)

	_, err := svc.ImportJSON(context.Background(), []byte(`{"name": "Ana"}`))
	require.Error(t, err)

	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Empty(t, application.ListContacts(context.Background()))
}

func TestImportService_ImportJSON_MissingNameAndPhone(t *testing.T) {
	svc, _ := newTestImportService(t)

	_, err := svc.ImportJSON(context.Background(), []byte(`[{"name": "Ana", "phone": "11999999999"}, {"customMessage": "oi"}]`))
	require.Error(t, err)

	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestImportService_ImportJSON_BadPhoneAbortsWholeImport(t *testing.T) {
	svc, application := newTestImportService(t)

	_, err := svc.ImportJSON(context.Background(), []byte(`[{"name": "Ana", "phone": "11999999999"}, {"name": "Bruno", "phone": "123"}]`))
	require.Error(t, err)

	var normErr *domain.NormalizationError
	assert.True(t, errors.As(err, &normErr))
	assert.Equal(t, "123", normErr.Input)

	// Zero imported records, not a partial set.
	assert.Empty(t, application.ListContacts(context.Background()))
}

func TestImportService_ImportSpreadsheet(t *testing.T) {
	svc, application := newTestImportService(t)
	ctx := context.Background()

	r := buildWorkbook(t, [][]interface{}{
		{"Nome", "Telefone", "Cidade"},
		{"Ana", "11999999999", "SP"},
	})

	result, err := svc.ImportSpreadsheet(ctx, r)
	require.NoError(t, err)
	require.Len(t, result.Contacts, 1)
	assert.Empty(t, result.Warnings)

	c := result.Contacts[0]
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "5511999999999", c.Phone)
	require.Len(t, c.ExtraInfo, 1)
	assert.Equal(t, "Cidade", c.ExtraInfo[0].Key)
	assert.Equal(t, "SP", c.ExtraInfo[0].Text)

	assert.Len(t, application.ListContacts(ctx), 1)
}

func TestImportService_ImportSpreadsheet_TypedSideFields(t *testing.T) {
	svc, _ := newTestImportService(t)

	r := buildWorkbook(t, [][]interface{}{
		{"Nome", "Telefone", "Valor", "Data Pagamento"},
		{"Ana", "11999999999", "1.234,56", "45292"},
	})

	result, err := svc.ImportSpreadsheet(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, result.Contacts, 1)

	valor, ok := result.Contacts[0].ExtraField("Valor")
	require.True(t, ok)
	assert.Equal(t, domain.FieldNumber, valor.Kind)
	assert.InDelta(t, 1234.56, valor.Number, 1e-9)

	data, ok := result.Contacts[0].ExtraField("Data Pagamento")
	require.True(t, ok)
	assert.Equal(t, domain.FieldDate, data.Kind)
	assert.Equal(t, "01/01/2024", data.DisplayValue())
}

func TestImportService_ImportSpreadsheet_NoPhoneColumn(t *testing.T) {
	svc, application := newTestImportService(t)

	r := buildWorkbook(t, [][]interface{}{
		{"Nome", "Cidade"},
		{"Ana", "SP"},
	})

	_, err := svc.ImportSpreadsheet(context.Background(), r)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Reason, "phone")
	assert.Empty(t, application.ListContacts(context.Background()))
}

func TestImportService_ImportSpreadsheet_RowsMissingValuesSkippedSilently(t *testing.T) {
	svc, _ := newTestImportService(t)

	r := buildWorkbook(t, [][]interface{}{
		{"Nome", "Telefone"},
		{"Ana", "11999999999"},
		{"", "11988887777"},
		{"Bruno", ""},
	})

	result, err := svc.ImportSpreadsheet(context.Background(), r)
	require.NoError(t, err)
	assert.Len(t, result.Contacts, 1)
	assert.Empty(t, result.Warnings)
}

func TestImportService_ImportSpreadsheet_BadPhoneRowWarnsButImportSucceeds(t *testing.T) {
	svc, _ := newTestImportService(t)

	r := buildWorkbook(t, [][]interface{}{
		{"Nome", "Telefone"},
		{"Ana", "11999999999"},
		{"Bruno", "123"},
	})

	result, err := svc.ImportSpreadsheet(context.Background(), r)
	require.NoError(t, err)
	assert.Len(t, result.Contacts, 1)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 3, result.Warnings[0].Row)
}

func TestImportService_ImportSpreadsheet_AllRowsBadFailsWithAggregate(t *testing.T) {
	svc, application := newTestImportService(t)

	r := buildWorkbook(t, [][]interface{}{
		{"Nome", "Telefone"},
		{"Ana", "12"},
		{"Bruno", "34"},
	})

	_, err := svc.ImportSpreadsheet(context.Background(), r)
	require.Error(t, err)

	var emptyErr *domain.EmptyResultError
	require.True(t, errors.As(err, &emptyErr))
	assert.Len(t, emptyErr.Warnings, 2)
	assert.Contains(t, emptyErr.Error(), "row 2")
	assert.Empty(t, application.ListContacts(context.Background()))
}

func TestImportService_ImportFile_UnsupportedExtension(t *testing.T) {
	svc, _ := newTestImportService(t)
	before := testutil.ToFloat64(importsTotal.WithLabelValues("file", "failure"))

	_, err := svc.ImportFile(context.Background(), "contatos.csv", []byte("Nome,Telefone"))
	require.Error(t, err)

	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, before+1, testutil.ToFloat64(importsTotal.WithLabelValues("file", "failure")))
}
