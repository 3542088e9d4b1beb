package report

import (
	"context"
	"time"
)

// Meta is document-level metadata for the rendered file.
type Meta struct {
	Title   string
	Subject string
	Author  string
	Created time.Time
}

// Renderer turns a laid-out document into file bytes.
type Renderer interface {
	Render(doc Document, meta Meta) ([]byte, error)
	ContentType() string
}

// Publisher stores a rendered report and returns where it can be fetched.
type Publisher interface {
	Publish(ctx context.Context, key string, content []byte, contentType string) (string, error)
}
