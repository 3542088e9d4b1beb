package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/achalasia-report/internal/application"
	appanalysis "github.com/bryanwahyu/achalasia-report/internal/application/analysis"
	appreport "github.com/bryanwahyu/achalasia-report/internal/application/report"
	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/sample"
	"github.com/bryanwahyu/achalasia-report/internal/infra/render/pdf"
	"github.com/bryanwahyu/achalasia-report/internal/infra/storage"
)

var (
	clock     = application.FixedClock{At: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)}
	pngBase64 = base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
)

type failingClient struct{ err error }

func (f failingClient) Analyze(context.Context, ai.Image) (string, error) { return "", f.err }

func newTestRouter(t *testing.T, client ai.Client, pub storage.Store, maxBody int64) http.Handler {
	t.Helper()
	reports := &appreport.Service{
		Renderer: pdf.NewRenderer(),
		Measurer: pdf.NewMeasurer(),
		Clock:    clock,
		Driver:   "test",
	}
	if pub != nil {
		reports.Publisher = pub
	}
	return NewRouter(
		appanalysis.NewService(client, "test", clock),
		reports,
		Options{MaxBodyBytes: maxBody},
	)
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	return body["error"]
}

func TestAnalyze(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 0)
	rec := post(t, h, "/v1/analyze", map[string]string{
		"imageBase64": "data:image/png;base64," + pngBase64,
		"fileName":    "barium.png",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var got struct {
		Analysis struct {
			Diagnosis string `json:"diagnosis"`
		} `json:"analysis"`
		FileName string `json:"fileName"`
		Outcome  string `json:"outcome"`
		View     struct {
			Accent        string `json:"accent"`
			DetectedCount int    `json:"detected_count"`
		} `json:"view"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Analysis.Diagnosis != "Positive" || got.Outcome != "parsed" || got.FileName != "barium.png" {
		t.Fatalf("response = %+v", got)
	}
	if got.View.Accent != "danger" || got.View.DetectedCount != 5 {
		t.Fatalf("view = %+v", got.View)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		client ai.Client
		body   any
		status int
		msg    string
	}{
		{"no image", sample.NewClient(), map[string]string{"fileName": "x.png"}, http.StatusBadRequest, "No image data provided"},
		{"bad json", sample.NewClient(), "{", http.StatusBadRequest, ""},
		{"bad base64", sample.NewClient(), map[string]string{"imageBase64": "***"}, http.StatusBadRequest, ""},
		{"rate limited", failingClient{ai.FromStatus(429, nil)}, map[string]string{"imageBase64": pngBase64}, http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment."},
		{"credits", failingClient{ai.FromStatus(402, nil)}, map[string]string{"imageBase64": pngBase64}, http.StatusPaymentRequired, "Service credits exhausted. Please add credits."},
		{"gateway", failingClient{ai.FromStatus(503, nil)}, map[string]string{"imageBase64": pngBase64}, http.StatusInternalServerError, "AI analysis failed: 503"},
		{"empty answer", failingClient{ai.EmptyResponse(nil)}, map[string]string{"imageBase64": pngBase64}, http.StatusInternalServerError, "No analysis content returned"},
		{"no key", failingClient{ai.Misconfigured("AI_API_KEY is not configured")}, map[string]string{"imageBase64": pngBase64}, http.StatusInternalServerError, "AI_API_KEY is not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestRouter(t, tt.client, nil, 0), "/v1/analyze", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			msg := errorBody(t, rec)
			if tt.msg != "" && msg != tt.msg {
				t.Fatalf("error = %q, want %q", msg, tt.msg)
			}
			if msg == "" {
				t.Fatal("error message must not be empty")
			}
		})
	}
}

func TestAnalyzeResolvesNonImageMIME(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 0)
	for _, declared := range []string{"application/octet-stream", "application/pdf"} {
		rec := post(t, h, "/v1/analyze", map[string]string{"imageBase64": pngBase64, "mimeType": declared})
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d: %s", declared, rec.Code, rec.Body)
		}
		var got struct {
			MIMEType string `json:"mimeType"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.MIMEType != "image/png" {
			t.Fatalf("%s: mimeType = %q, want sniffed image/png", declared, got.MIMEType)
		}
	}
}

// brokenWriter fails every body write, like a client that hung up mid-response.
type brokenWriter struct {
	header  http.Header
	headers []int
}

func (b *brokenWriter) Header() http.Header { return b.header }
func (b *brokenWriter) WriteHeader(code int) { b.headers = append(b.headers, code) }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestFailedResponseWriteKeepsStatus(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 0)
	body, _ := json.Marshal(map[string]string{"imageBase64": pngBase64})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	w := &brokenWriter{header: http.Header{}}
	h.ServeHTTP(w, req)

	if len(w.headers) != 1 || w.headers[0] != http.StatusOK {
		t.Fatalf("status writes = %v, want exactly [200]", w.headers)
	}
}

func TestAnalyzeBodyTooLarge(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 64)
	rec := post(t, h, "/v1/analyze", map[string]string{"imageBase64": strings.Repeat("A", 256)})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

const reportJSON = `{"analysis":{"diagnosis":"Negative","confidence":77,"achalasia_type":"Not Applicable","recommendations":["Follow up"]},"fileName":"control scan.jpg"}`

func TestReport(t *testing.T) {
	rec := post(t, newTestRouter(t, sample.NewClient(), nil, 0), "/v1/reports", reportJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Achalasia_Report_control_scan_2026-02-03.pdf"` {
		t.Fatalf("disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Header().Get("X-Report-ID"), "ACH-") {
		t.Fatalf("report id = %q", rec.Header().Get("X-Report-ID"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("body is not a PDF")
	}
}

func TestReportValidation(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 0)
	for _, body := range []string{`{}`, `{"analysis":{"diagnosis":"Maybe"}}`} {
		rec := post(t, h, "/v1/reports", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, rec.Code)
		}
	}
}

func TestPublish(t *testing.T) {
	rec := post(t, newTestRouter(t, sample.NewClient(), nil, 0), "/v1/reports/publish", reportJSON)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status without publisher = %d", rec.Code)
	}

	store, err := storage.NewLocal(t.TempDir(), "https://files.example")
	if err != nil {
		t.Fatal(err)
	}
	rec = post(t, newTestRouter(t, sample.NewClient(), store, 0), "/v1/reports/publish", reportJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got appreport.Published
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.URL, "https://files.example/reports/2026-02-03/") || got.Pages != 1 {
		t.Fatalf("published = %+v", got)
	}
}

func TestAnalyzeReport(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 0)
	rec := post(t, h, "/v1/analyze/report", map[string]string{"imageBase64": pngBase64, "mimeType": "image/png", "fileName": "swallow.png"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Analysis-Outcome") != "parsed" {
		t.Fatalf("outcome header = %q", rec.Header().Get("X-Analysis-Outcome"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("body is not a PDF")
	}
}

func TestHealthAndCORS(t *testing.T) {
	h := newTestRouter(t, sample.NewClient(), nil, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}
