package backend

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "http://localhost:8000"
	userAgent = "achrafdevl/talentbridge"
	// Generation runs the whole document pipeline on the backend, so it gets a generous budget.
	defaultTimeout = 2 * time.Minute
)

// Client talks to the CV tailoring backend.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New returns a client for the backend at url. An empty token disables the Authorization header.
func New(logger *zap.Logger, url, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		url = apiURL
	}

	return &Client{
		token:  strings.TrimSpace(token),
		APIURL: url,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

