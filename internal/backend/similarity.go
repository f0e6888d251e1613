package backend

import (
	"context"
	"errors"
	"math"
	"net/url"
)

const similarityPath = "/similarity/test"

// Similarity is the match strength between a CV and a job offer, in [0,1].
type Similarity struct {
	Score float64
}

// Percent returns the score as a rounded percentage.
func (s *Similarity) Percent() int {
	return Percent(s.Score)
}

// Percent converts a [0,1] score to a rounded percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// similarityPayload covers both field names the backend has used for the score.
type similarityPayload struct {
	SimilarityScore *float64 `json:"similarity_score"`
	Similarity      *float64 `json:"similarity"`
}

// Similarity asks the backend to score the CV against the job offer.
func (c *Client) Similarity(ctx context.Context, cvID, jobID string) (*Similarity, error) {
	if cvID == "" || jobID == "" {
		return nil, errors.New("cv id and job id are required")
	}

	q := url.Values{}
	q.Set("cv_id", cvID)
	q.Set("job_id", jobID)

	var raw map[string]any
	if err := c.getJSON(ctx, similarityPath, q, &raw); err != nil {
		return nil, err
	}

	return decodeSimilarity(raw)
}

func decodeSimilarity(raw map[string]any) (*Similarity, error) {
	var payload similarityPayload
	if err := decodeItem(raw, &payload); err != nil {
		return nil, err
	}

	switch {
	case payload.SimilarityScore != nil:
		return &Similarity{Score: *payload.SimilarityScore}, nil
	case payload.Similarity != nil:
		return &Similarity{Score: *payload.Similarity}, nil
	default:
		return nil, &ContractError{Endpoint: "similarity", Field: "similarity_score"}
	}
}
