package fundamental

import (
	"context"
	"fmt"
	"time"

	"EquityScout/internal/domain/models"
	xhttp "EquityScout/pkg/http"
)

// HTTPEngine scores tickers through the external fundamental service. The
// screener treats it as advisory: a failed call downgrades to a missing
// fundamental score, never a skipped ticker.
type HTTPEngine struct {
	baseURL  string
	attempts int
	client   *xhttp.Client
}

func NewHTTPEngine(baseURL string, timeout time.Duration, attempts int) *HTTPEngine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if attempts <= 0 {
		attempts = 2
	}
	return &HTTPEngine{
		baseURL:  baseURL,
		attempts: attempts,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type scoreRequest struct {
	Ticker string `json:"ticker"`
}

type scoreResponse struct {
	Score    int      `json:"score"`
	Patterns []string `json:"patterns"`
}

// Score posts the ticker to the fundamental service, retrying transient
// failures up to the configured attempt count.
func (e *HTTPEngine) Score(ctx context.Context, ticker string) (models.FundamentalScore, error) {
	if e.client == nil || e.baseURL == "" {
		return models.FundamentalScore{}, fmt.Errorf("fundamental http client not initialized")
	}

	var resp scoreResponse
	var err error
	for i := 1; i <= e.attempts; i++ {
		err = e.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    e.baseURL + "/api/fundamental/score",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: scoreRequest{Ticker: ticker},
		}, &resp)
		if err == nil {
			return models.FundamentalScore{Score: resp.Score, Patterns: resp.Patterns}, nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return models.FundamentalScore{}, ctx.Err()
		}
	}
	return models.FundamentalScore{}, fmt.Errorf("score %s: %w", ticker, err)
}
