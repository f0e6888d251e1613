package backend

import (
	"context"
	"errors"
	"strings"
)

const (
	jobUploadPath = "/job/upload"
	cvUploadPath  = "/cv/upload"
)

// JobOffer is the job offer as captured by the user: a file, pasted text, or both.
type JobOffer struct {
	Title string
	File  string
	Text  string
}

type JobUpload struct {
	JobID string `json:"job_id"`
}

type CVUpload struct {
	CVID     string `json:"cv_id"`
	Filename string `json:"filename"`
}

// UploadJob sends the offer to the backend and returns its job identifier.
func (c *Client) UploadJob(ctx context.Context, offer JobOffer) (*JobUpload, error) {
	text := strings.TrimSpace(offer.Text)
	file := strings.TrimSpace(offer.File)
	if text == "" && file == "" {
		return nil, errors.New("job offer needs a file or a text")
	}

	var fields []formField
	if title := strings.TrimSpace(offer.Title); title != "" {
		fields = append(fields, formField{Key: "title", Value: title})
	}
	if text != "" {
		fields = append(fields, formField{Key: "text", Value: text})
	}

	var attachment *formFile
	if file != "" {
		attachment = &formFile{Field: "file", Path: file}
	}

	var upload JobUpload
	if err := c.postForm(ctx, jobUploadPath, fields, attachment, &upload); err != nil {
		return nil, err
	}

	if strings.TrimSpace(upload.JobID) == "" {
		return nil, &ContractError{Endpoint: "job upload", Field: "job_id"}
	}

	return &upload, nil
}

// UploadCV sends the CV file to the backend and returns its identifier.
func (c *Client) UploadCV(ctx context.Context, path string) (*CVUpload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cv file is required")
	}

	var upload CVUpload
	if err := c.postForm(ctx, cvUploadPath, nil, &formFile{Field: "file", Path: path}, &upload); err != nil {
		return nil, err
	}

	if strings.TrimSpace(upload.CVID) == "" {
		return nil, &ContractError{Endpoint: "cv upload", Field: "cv_id"}
	}

	return &upload, nil
}
