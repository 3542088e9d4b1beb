package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/achalasia-report/internal/application"
	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	domain "github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
	"github.com/bryanwahyu/achalasia-report/internal/logger"
	"github.com/bryanwahyu/achalasia-report/internal/metrics"
)

const (
	DefaultMIMEType = "image/jpeg"
	DefaultFileName = "unknown"
)

// Submission is one image handed in for analysis.
type Submission struct {
	Image    []byte
	MIMEType string
	FileName string
}

// Response carries the extraction outcome plus anything worth showing next to it.
type Response struct {
	Outcome  domain.Outcome
	FileName string
	MIMEType string
	Warnings []domain.Violation
}

type Service struct {
	client   ai.Client
	provider string
	clock    application.Clock
}

func NewService(client ai.Client, provider string, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{client: client, provider: provider, clock: clock}
}

// Submit sends the image to the model once and extracts a result from its answer.
// Unparseable answers come back as a fallback outcome, not as an error.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Response, error) {
	if len(sub.Image) == 0 {
		metrics.RecordAnalysisFailure(string(ai.KindInvalidInput))
		return nil, ai.InvalidInput(ai.ErrInvalidInput.Message)
	}
	if s.client == nil {
		metrics.RecordAnalysisFailure(string(ai.KindMisconfigured))
		return nil, ai.Misconfigured("AI provider is not configured")
	}

	img := ai.Image{
		Data:     sub.Image,
		MIMEType: ResolveMIME(sub.MIMEType, sub.Image),
		FileName: strings.TrimSpace(sub.FileName),
	}
	if img.FileName == "" {
		img.FileName = DefaultFileName
	}
	log := logger.WithFields(logrus.Fields{
		"provider":  s.provider,
		"file_name": img.FileName,
		"mime_type": img.MIMEType,
		"bytes":     len(img.Data),
	})

	start := s.clock.Now()
	raw, err := s.client.Analyze(ctx, img)
	elapsed := s.clock.Now().Sub(start)
	if err != nil {
		if ai.KindOf(err) == "" {
			err = &ai.Error{Kind: ai.KindUpstreamFailure, Message: ai.ErrUpstreamFailure.Message, Cause: err}
		}
		metrics.RecordAnalysisFailure(string(ai.KindOf(err)))
		log.WithError(err).WithField("kind", ai.KindOf(err)).Error("analysis request failed")
		return nil, err
	}

	out := domain.Extract(raw)
	metrics.RecordAnalysis(s.provider, out.Kind.String(), elapsed)

	resp := &Response{Outcome: out, FileName: img.FileName, MIMEType: img.MIMEType}
	if out.IsFallback() {
		log.WithError(out.Err).WithField("raw_length", len(raw)).Warn("model answer could not be parsed, using fallback result")
		return resp, nil
	}

	resp.Warnings = domain.Check(out.Result)
	for _, v := range resp.Warnings {
		metrics.RecordViolation(indexSuffix.ReplaceAllString(v.Field, ""))
		log.WithField("violation", v.String()).Warn("result breaks the response contract")
	}
	log.WithFields(logrus.Fields{
		"diagnosis":  out.Result.Diagnosis,
		"confidence": out.Result.Confidence,
		"duration":   elapsed.String(),
	}).Info("analysis completed")
	return resp, nil
}

var indexSuffix = regexp.MustCompile(`\[\d+\]`)

// ResolveMIME picks the media type announced upstream: the caller's value if it
// names an image, else whatever the bytes sniff as, else image/jpeg.
func ResolveMIME(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	if len(data) > 0 {
		if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
			return mt.String()
		}
	}
	return DefaultMIMEType
}
