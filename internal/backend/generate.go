package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
)

const (
	generatePath = "/generate/"
	downloadPath = "/generate/download/"

	StatusOK      = "ok"
	StatusSkipped = "skipped"
)

// Generation is the outcome of a generation request. Any status other than skipped is a success.
// GeneratedID is empty when skipped.
type Generation struct {
	Status      string   `json:"status"`
	GeneratedID string   `json:"generated_id"`
	Similarity  *float64 `json:"similarity"`
}

// Skipped reports whether the backend refused to generate a document.
func (g *Generation) Skipped() bool {
	return strings.EqualFold(strings.TrimSpace(g.Status), StatusSkipped)
}

// Document is a downloaded generated document. Body must be closed by the caller.
type Document struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
	Size        int64
}

// Generate asks the backend to produce a tailored CV for the pair.
func (c *Client) Generate(ctx context.Context, cvID, jobID string) (*Generation, error) {
	if cvID == "" || jobID == "" {
		return nil, errors.New("cv id and job id are required")
	}

	fields := []formField{
		{Key: "cv_id", Value: cvID},
		{Key: "job_id", Value: jobID},
	}

	var generation Generation
	if err := c.postForm(ctx, generatePath, fields, nil, &generation); err != nil {
		return nil, err
	}

	return &generation, nil
}

// Download opens the generated document stream.
func (c *Client) Download(ctx context.Context, generatedID string) (*Document, error) {
	generatedID = strings.TrimSpace(generatedID)
	if generatedID == "" {
		return nil, errors.New("generated id is required")
	}

	resp, err := c.stream(ctx, downloadPath+url.PathEscape(generatedID))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", generatedID, err)
	}

	return &Document{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		Size:        resp.ContentLength,
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	return params["filename"]
}
