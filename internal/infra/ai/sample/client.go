// Package sample is an offline ai.Client that answers with canned results.
package sample

import (
	"context"

	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/prompt"
)

type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) Analyze(ctx context.Context, img ai.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt.SampleAnswer(img.FileName)
}
