package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/achalasia-report/internal/application/analysis"
	appreport "github.com/bryanwahyu/achalasia-report/internal/application/report"
	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
	"github.com/bryanwahyu/achalasia-report/internal/logger"
	"github.com/bryanwahyu/achalasia-report/internal/metrics"
	"github.com/bryanwahyu/achalasia-report/internal/middleware"
)

const defaultMaxBody = 20 << 20

type Options struct {
	Checkers     map[string]middleware.HealthChecker
	CORSOrigins  []string
	RateLimiter  *middleware.RateLimiter // nil disables rate limiting
	MaxBodyBytes int64
}

type Router struct {
	analysisSvc *appanalysis.Service
	reportSvc   *appreport.Service
	maxBody     int64
}

func NewRouter(analysisSvc *appanalysis.Service, reportSvc *appreport.Service, opts Options) http.Handler {
	r := &Router{analysisSvc: analysisSvc, reportSvc: reportSvc, maxBody: opts.MaxBodyBytes}
	if r.maxBody <= 0 {
		r.maxBody = defaultMaxBody
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", "X-Report-ID", "X-Analysis-Outcome", middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if opts.RateLimiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler(opts.Checkers))
	mux.Handle("/metrics", metrics.Handler())

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze, "Analysis failed"))
		rt.Post("/analyze/report", r.wrap(r.handleAnalyzeReport, "Analysis failed"))
		rt.Post("/reports", r.wrap(r.handleReport, "Report generation failed"))
		rt.Post("/reports/publish", r.wrap(r.handlePublish, "Report publishing failed"))
	})

	return mux
}

// requestError is a client mistake that never reached the services.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps handler errors to a JSON {"error": ...} body. Unknown errors are
// logged and answered with the route's generic message.
func (r *Router) wrap(h handlerFunc, generic string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var reqErr *requestError
		switch {
		case errors.As(err, &reqErr):
			writeError(w, reqErr.status, reqErr.msg)
		case ai.KindOf(err) != "":
			writeError(w, ai.HTTPStatus(err), ai.Message(err))
		case errors.Is(err, appreport.ErrPublishingDisabled):
			writeError(w, http.StatusNotImplemented, "Report publishing is not configured")
		default:
			logger.WithError(err).WithField("request_id", middleware.GetRequestID(req.Context())).Error(generic)
			writeError(w, http.StatusInternalServerError, generic)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON commits the status before encoding, so an encode failure can only
// be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).WithField("status", status).Warn("response write failed")
	}
}

func (r *Router) decode(w http.ResponseWriter, req *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, r.maxBody))
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: fmt.Sprintf("Request body exceeds %d bytes", tooBig.Limit)}
		}
		return badRequest("Invalid JSON body: %v", err)
	}
	return nil
}

type analyzeBody struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
	FileName    string `json:"fileName"`
}

type analyzeResponse struct {
	Analysis analysis.Result      `json:"analysis"`
	FileName string               `json:"fileName"`
	MIMEType string               `json:"mimeType"`
	Outcome  analysis.OutcomeKind `json:"outcome"`
	View     analysis.View        `json:"view"`
	Warnings []analysis.Violation `json:"warnings,omitempty"`
}

func (r *Router) submit(w http.ResponseWriter, req *http.Request) (*appanalysis.Response, error) {
	var body analyzeBody
	if err := r.decode(w, req, &body); err != nil {
		return nil, err
	}
	data, uriMIME, err := middleware.DecodeImage(body.ImageBase64)
	if err != nil {
		return nil, badRequest("%v", err)
	}
	// declared types that are not image/* are resolved by the service, not rejected
	mime := body.MimeType
	if mime == "" {
		mime = uriMIME
	}
	name, err := middleware.CleanFileName(body.FileName)
	if err != nil {
		return nil, badRequest("%v", err)
	}

	return r.analysisSvc.Submit(req.Context(), appanalysis.Submission{
		Image:    data,
		MIMEType: mime,
		FileName: name,
	})
}

// POST /v1/analyze
// Body: {"imageBase64": "...", "mimeType": "image/png", "fileName": "scan.png"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	resp, err := r.submit(w, req)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis: resp.Outcome.Result,
		FileName: resp.FileName,
		MIMEType: resp.MIMEType,
		Outcome:  resp.Outcome.Kind,
		View:     analysis.NewView(resp.Outcome.Result),
		Warnings: resp.Warnings,
	})
	return nil
}

// POST /v1/analyze/report
// Same body as /v1/analyze, answers with the PDF directly.
func (r *Router) handleAnalyzeReport(w http.ResponseWriter, req *http.Request) error {
	resp, err := r.submit(w, req)
	if err != nil {
		return err
	}
	art, err := r.reportSvc.Build(req.Context(), appreport.Request{Result: resp.Outcome.Result, FileName: resp.FileName})
	if err != nil {
		return err
	}
	w.Header().Set("X-Analysis-Outcome", resp.Outcome.Kind.String())
	writePDF(w, art)
	return nil
}

type reportBody struct {
	Analysis *analysis.Result `json:"analysis"`
	FileName string           `json:"fileName"`
}

func (r *Router) build(w http.ResponseWriter, req *http.Request) (*appreport.Artifact, error) {
	var body reportBody
	if err := r.decode(w, req, &body); err != nil {
		return nil, err
	}
	if body.Analysis == nil {
		return nil, badRequest("analysis is required")
	}
	if !body.Analysis.Diagnosis.Valid() {
		return nil, badRequest("analysis.diagnosis must be Positive, Negative or Inconclusive")
	}
	name, err := middleware.CleanFileName(body.FileName)
	if err != nil {
		return nil, badRequest("%v", err)
	}
	if name == "" {
		name = appanalysis.DefaultFileName
	}
	return r.reportSvc.Build(req.Context(), appreport.Request{Result: body.Analysis.WithDefaults(), FileName: name})
}

// POST /v1/reports
// Body: {"analysis": {...}, "fileName": "scan.png"}
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	art, err := r.build(w, req)
	if err != nil {
		return err
	}
	writePDF(w, art)
	return nil
}

// POST /v1/reports/publish
func (r *Router) handlePublish(w http.ResponseWriter, req *http.Request) error {
	art, err := r.build(w, req)
	if err != nil {
		return err
	}
	pub, err := r.reportSvc.Publish(req.Context(), art)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, pub)
	return nil
}

func writePDF(w http.ResponseWriter, art *appreport.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Content)))
	w.Header().Set("X-Report-ID", art.ReportID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Content)
}
