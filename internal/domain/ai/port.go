package ai

import "context"

// Image is one encoded image sent for analysis.
type Image struct {
	Data     []byte
	MIMEType string
	FileName string
}

// Client sends an image with the diagnostic rubric to a vision model and
// returns the raw text of its answer.
type Client interface {
	Analyze(ctx context.Context, img Image) (string, error)
}
