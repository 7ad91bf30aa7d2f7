package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/DisparoLabs/disparo/internal/outreach_service/app"
	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
)

// MaxImportBodySize caps import uploads at 16 MiB.
const MaxImportBodySize = 16 << 20

// ContactHandler exposes the contact collection over HTTP.
type ContactHandler struct {
	app       *app.Application
	importSvc *app.ImportService
	exportSvc *app.ExportService
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(application *app.Application, importSvc *app.ImportService, exportSvc *app.ExportService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		app:       application,
		importSvc: importSvc,
		exportSvc: exportSvc,
		logger:    logger.With("handler", "contacts"),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes registers the contact and settings routes.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contacts", h.handleList)
	r.Post("/contacts", h.handleAdd)
	r.Post("/contacts/import", h.handleImport)
	r.Get("/contacts/export", h.handleExport)
	r.Patch("/contacts/{id}", h.handleUpdate)
	r.Delete("/contacts/{id}", h.handleDelete)
	r.Put("/contacts/{id}/status", h.handleSetStatus)
	r.Post("/contacts/{id}/dispatch", h.handleDispatch)
	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleUpdateSettings)
}

func (h *ContactHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.ListContacts(r.Context()))
}

func (h *ContactHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "validation failed", Details: err.Error()})
		return
	}

	contact, err := h.app.AddContact(r.Context(), req.Name, req.Phone, req.CustomMessage)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	var req UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "invalid request payload"})
		return
	}

	contact, err := h.app.UpdateContact(r.Context(), id, app.UpdateContactParams{
		Name:          req.Name,
		Phone:         req.Phone,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	if err := h.app.DeleteContact(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "validation failed", Details: err.Error()})
		return
	}

	contact, err := h.app.SetStatus(r.Context(), id, domain.ContactStatus(req.Status))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	result, err := h.app.Dispatch(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleImport accepts either a raw JSON array body or a multipart upload
// under the "file" field (json or xlsx, routed by extension).
func (h *ContactHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImportBodySize)

	var (
		result *app.ImportResult
		err    error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, fileName, ferr := h.importUpload(r)
		if ferr != nil {
			writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: ferr.Error()})
			return
		}
		result, err = h.importSvc.ImportFile(r.Context(), fileName, data)
	} else {
		body, rerr := io.ReadAll(r.Body)
		if rerr != nil {
			writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "could not read request body"})
			return
		}
		result, err = h.importSvc.ImportJSON(r.Context(), body)
	}
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := ImportResponse{Imported: len(result.Contacts)}
	for _, warning := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warning.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContactHandler) importUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(MaxImportBodySize); err != nil {
		return nil, "", errors.New("could not parse multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.New(`multipart form must contain a "file" field`)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", errors.New("could not read uploaded file")
	}
	return data, header.Filename, nil
}

func (h *ContactHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	fileName, buf, err := h.exportSvc.BuildWorkbook(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *ContactHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Settings(r.Context()))
}

func (h *ContactHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "validation failed", Details: err.Error()})
		return
	}

	settings := h.app.UpdateSettings(r.Context(), domain.Settings{
		MessageTemplate:      req.MessageTemplate,
		FollowUpDelaySeconds: req.FollowUpDelaySeconds,
	})
	writeJSON(w, http.StatusOK, settings)
}

func (h *ContactHandler) contactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "invalid contact id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses. All of
// these are operation-boundary errors; the previous state stays usable.
func (h *ContactHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr    *domain.ValidationError
		normalizationErr *domain.NormalizationError
		emptyErr         *domain.EmptyResultError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, GenericErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: err.Error()})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: validationErr.Error()})
	case errors.As(err, &normalizationErr):
		writeJSON(w, http.StatusUnprocessableEntity, GenericErrorResponse{Error: err.Error()})
	case errors.As(err, &emptyErr):
		writeJSON(w, http.StatusUnprocessableEntity, GenericErrorResponse{Error: emptyErr.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, GenericErrorResponse{Error: "internal server error"})
	}
}
