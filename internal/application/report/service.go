package report

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/achalasia-report/internal/application"
	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
	domain "github.com/bryanwahyu/achalasia-report/internal/domain/report"
	"github.com/bryanwahyu/achalasia-report/internal/logger"
	"github.com/bryanwahyu/achalasia-report/internal/metrics"
)

const DefaultFilePrefix = "Achalasia_Report"

var ErrPublishingDisabled = errors.New("report publishing is not configured")

// Service implements use-cases untuk report PDF.
// Safe for concurrent use; every Build owns its own layout session.
type Service struct {
	Renderer  domain.Renderer
	Measurer  domain.Measurer // nil uses the approximate measurer
	Publisher domain.Publisher
	Driver    string // storage driver name, for metrics and logs
	Clock     application.Clock

	FilePrefix string
	Footer     domain.Footer
}

type Request struct {
	Result   analysis.Result
	FileName string
}

// Artifact is one rendered report.
type Artifact struct {
	Name        string
	ReportID    string
	ContentType string
	Content     []byte
	Pages       int
	CreatedAt   time.Time
	Document    domain.Document
}

type Published struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Pages int    `json:"pages"`
}

func (s *Service) Build(ctx context.Context, req Request) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Renderer == nil {
		return nil, errors.New("report renderer is not configured")
	}

	now := s.now()
	id := ReportID(now)
	in := domain.Input{
		Result:   req.Result.Clone(),
		FileName: req.FileName,
		Header: domain.Header{
			ReportID: id,
			Date:     now.Format("January 2, 2006"),
			Time:     now.Format("3:04:05 PM"),
		},
	}

	doc := domain.Layout(in, domain.A4(), s.Measurer)
	doc = domain.FinalizeChrome(doc, s.footer())

	content, err := s.Renderer.Render(doc, domain.Meta{
		Title:   "Achalasia Cardia Diagnostic Report " + id,
		Subject: "AI-assisted analysis of " + fallback(req.FileName, "unknown"),
		Author:  "achalasia-report",
		Created: now,
	})
	if err != nil {
		return nil, fmt.Errorf("render report %s: %w", id, err)
	}

	art := &Artifact{
		Name:        FileName(s.prefix(), req.FileName, now),
		ReportID:    id,
		ContentType: s.Renderer.ContentType(),
		Content:     content,
		Pages:       doc.PageCount(),
		CreatedAt:   now,
		Document:    doc,
	}
	metrics.RecordReport(art.Pages)
	logger.WithFields(logrus.Fields{
		"report_id": id,
		"name":      art.Name,
		"pages":     art.Pages,
		"bytes":     len(content),
		"diagnosis": req.Result.Diagnosis,
	}).Info("report rendered")
	for _, p := range doc.Placements {
		if p.Oversized {
			logger.WithFields(logrus.Fields{"report_id": id, "section": p.Section, "page": p.Page}).
				Warn("section taller than one page, started on a fresh page and truncated")
		}
	}
	return art, nil
}

// Publish uploads the artifact under reports/<date>/<uuid>/<name>.
func (s *Service) Publish(ctx context.Context, art *Artifact) (*Published, error) {
	if s.Publisher == nil {
		return nil, ErrPublishingDisabled
	}
	key := path.Join("reports", art.CreatedAt.Format("2006-01-02"), uuid.NewString(), art.Name)
	url, err := s.Publisher.Publish(ctx, key, art.Content, art.ContentType)
	metrics.RecordPublish(s.Driver, err)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"driver": s.Driver, "key": key}).Error("report upload failed")
		return nil, fmt.Errorf("publish report %s: %w", art.ReportID, err)
	}
	logger.WithFields(logrus.Fields{"driver": s.Driver, "key": key, "report_id": art.ReportID}).Info("report published")
	return &Published{Name: art.Name, URL: url, Pages: art.Pages}, nil
}

// ReportID is ACH- followed by the upper-case base36 millisecond timestamp.
func ReportID(t time.Time) string {
	return "ACH-" + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName derives <prefix>_<input stem>_<YYYY-MM-DD>.pdf from the uploaded file name.
func FileName(prefix, input string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	base := input
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "scan"
	}
	return fmt.Sprintf("%s_%s_%s.pdf", prefix, base, t.Format("2006-01-02"))
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) prefix() string {
	if s.FilePrefix == "" {
		return DefaultFilePrefix
	}
	return s.FilePrefix
}

func (s *Service) footer() domain.Footer {
	f := s.Footer
	def := domain.DefaultFooter()
	if f.Disclaimer == "" {
		f.Disclaimer = def.Disclaimer
	}
	if f.Attribution == "" {
		f.Attribution = def.Attribution
	}
	return f
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
