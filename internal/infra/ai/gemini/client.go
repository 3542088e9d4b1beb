// Package gemini sends analysis requests to the native Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/prompt"
)

const DefaultModel = "gemini-2.5-pro"

type Client struct {
	APIKey string
	Model  string
}

func NewClient(apiKey, model string) *Client {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{APIKey: strings.TrimSpace(apiKey), Model: model}
}

func (c *Client) Analyze(ctx context.Context, img ai.Image) (string, error) {
	if c.APIKey == "" {
		return "", ai.Misconfigured("GEMINI_API_KEY is not configured")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return "", ai.Misconfigured(fmt.Sprintf("gemini client: %v", err))
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.Model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemPrompt())},
	}

	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	parts := []genai.Part{
		genai.Text(prompt.UserPrompt(img.FileName)),
		&genai.Blob{MIMEType: mime, Data: img.Data},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", classify(err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", ai.EmptyResponse(nil)
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

// classify maps Gemini transport errors onto the same taxonomy the
// chat-completions gateway uses, so callers see one set of messages.
func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return ai.EmptyResponse(err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code != 0 {
		return ai.FromStatus(gErr.Code, err)
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return ai.FromStatus(code, err)
		}
		if st := apiErr.GRPCStatus(); st != nil {
			return ai.FromStatus(httpStatus(st.Code()), err)
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return ai.FromStatus(httpStatus(st.Code()), err)
	}
	return &ai.Error{Kind: ai.KindUpstreamFailure, Message: ai.ErrUpstreamFailure.Message, Cause: err}
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
