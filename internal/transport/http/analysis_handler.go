package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "mtracecli/internal/errors"
	"mtracecli/internal/exporter"
	"mtracecli/internal/middleware"
	"mtracecli/internal/services"
	"mtracecli/pkg/contracts/domain"
)

// Content types accepted by the analyses endpoint.
const (
	ContentTypeCSV       = "text/csv"
	ContentTypePlain     = "text/plain"
	ContentTypeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeMultipart = "multipart/form-data"

	// multipartMemory is how much of a multipart upload is kept in memory
	// before spilling to temp files.
	multipartMemory = 32 << 20
)

// AnalysisHandler handles analysis and decode requests with RFC 7807 errors
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:      service,
		validator:    middleware.NewRequestValidator(logger),
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the v1 analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(middleware.ContentTypeValidator(h.errorHandler,
		ContentTypeCSV, ContentTypePlain, ContentTypeXLSX, ContentTypeMultipart,
	)).Post("/analyses", h.CreateAnalysis)

	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).
		Post("/decode", h.Decode)

	return r
}

// analysisQuery holds the optional query overrides of an analysis
type analysisQuery struct {
	TopN      int    `json:"topN" validate:"omitempty,min=1,max=1000"`
	Timezone  string `json:"tz" validate:"omitempty,timezone"`
	Source    string `json:"source" validate:"omitempty,max=255"`
	Events    *bool  `json:"events"`
	Timelines *bool  `json:"timelines"`
}

// CreateAnalysis handles POST /api/v1/analyses. The body is the export
// itself, or a multipart form with the export in the "file" field.
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	body, source, format, cleanup, err := h.upload(r, q.Source)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer cleanup()

	analysis, err := h.service.Analyze(ctx, services.AnalysisRequest{
		Source:           source,
		Format:           format,
		Body:             body,
		TopN:             q.TopN,
		Timezone:         q.Timezone,
		IncludeEvents:    q.Events,
		IncludeTimelines: q.Timelines,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "analysis rejected",
			slog.String("source", source),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, analysisError(err))
		return
	}

	w.Header().Set("X-Run-ID", analysis.Payload.Meta.RunID)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, analysis.Payload)
}

// analysisError keeps client-side failures as they are and reports
// everything else as a failed analysis run.
func analysisError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apierrors.ErrTypeIngestion, apierrors.ErrTypeParsing, apierrors.ErrTypeValidation:
			return err
		}
	}
	return apierrors.ErrAnalysisFailed
}

// decodeRequest is the body of POST /api/v1/decode
type decodeRequest struct {
	Blob string `json:"blob" validate:"required"`
}

// decodeResponse pairs each event with its type tag
type decodeResponse struct {
	Events  []domain.EventEnvelope    `json:"events"`
	Skipped []services.SkippedSection `json:"skipped"`
}

// Decode handles POST /api/v1/decode
func (h *AnalysisHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res := h.service.Decode(r.Context(), req.Blob)
	render.JSON(w, r, decodeResponse{
		Events:  exporter.Envelopes(nil, res.Events),
		Skipped: res.Skipped,
	})
}

func (h *AnalysisHandler) parseQuery(r *http.Request) (analysisQuery, error) {
	values := r.URL.Query()
	q := analysisQuery{
		Timezone: values.Get("tz"),
		Source:   values.Get("source"),
	}

	var fieldErrs []apierrors.ValidationError
	if v := values.Get("topN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: "topN", Message: "topN must be an integer"})
		}
		q.TopN = n
	}
	for _, flag := range []struct {
		name string
		dst  **bool
	}{{"events", &q.Events}, {"timelines", &q.Timelines}} {
		name, dst := flag.name, flag.dst
		v := values.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: name, Message: name + " must be a boolean"})
			continue
		}
		*dst = &b
	}
	if len(fieldErrs) > 0 {
		return q, apierrors.NewValidationErrors(fieldErrs)
	}

	if err := h.validator.ValidateStruct(&q); err != nil {
		return q, err
	}
	return q, nil
}

// upload locates the export inside the request. cleanup releases any
// multipart temp files and is never nil.
func (h *AnalysisHandler) upload(r *http.Request, source string) (io.Reader, string, string, func(), error) {
	noop := func() {}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", "", noop, apierrors.ErrUnsupportedMediaType
	}

	switch mediaType {
	case ContentTypeMultipart:
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, "", "", noop, uploadError(err)
		}
		cleanup := func() { r.MultipartForm.RemoveAll() }

		file, header, err := r.FormFile("file")
		if err != nil {
			cleanup()
			return nil, "", "", noop, apierrors.ErrValidation("file", "file is required")
		}
		if source == "" {
			source = header.Filename
		}
		return file, source, formatOf(source, header.Header.Get("Content-Type")), func() {
			file.Close()
			cleanup()
		}, nil

	case ContentTypeXLSX:
		if source == "" {
			source = "upload.xlsx"
		}
		return r.Body, source, services.InputXLSX, noop, nil

	case ContentTypeCSV, ContentTypePlain:
		if source == "" {
			source = "upload.csv"
		}
		return r.Body, source, services.InputCSV, noop, nil
	}

	return nil, "", "", noop, apierrors.ErrUnsupportedMediaType
}

// formatOf picks the reader for an uploaded file by extension, then by the
// part's content type.
func formatOf(filename, contentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return services.InputXLSX
	case ".csv", ".txt", ".tsv":
		return services.InputCSV
	}
	if strings.HasPrefix(contentType, ContentTypeXLSX) {
		return services.InputXLSX
	}
	return services.InputCSV
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierrors.ErrPayloadTooLarge
	}
	return apierrors.InvalidRequestWithError(err)
}
