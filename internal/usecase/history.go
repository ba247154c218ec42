package usecase

import (
	"context"
	"fmt"
	"time"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
)

// HistoryBrowser serves persisted screening rows.
type HistoryBrowser struct {
	store domrepo.ResultStore
}

func NewHistoryBrowser(store domrepo.ResultStore) *HistoryBrowser {
	return &HistoryBrowser{store: store}
}

// History lists persisted rows in the requested window, most recent first,
// returning the page and the total match count. A zero time range defaults
// to the trailing 30 days.
func (h *HistoryBrowser) History(ctx context.Context, q domrepo.HistoryQuery) ([]models.HistoryRecord, int, error) {
	if q.To.IsZero() {
		q.To = time.Now().UTC()
	}
	if q.From.IsZero() {
		q.From = q.To.AddDate(0, 0, -30)
	}
	if q.From.After(q.To) {
		return nil, 0, fmt.Errorf("%w: history range start after end", models.ErrInvalidFilter)
	}
	if q.Limit <= 0 {
		q.Limit = 100
	}
	records, total, err := h.store.History(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("query history: %w", err)
	}
	return records, total, nil
}

// Latest returns the top rows of the most recent persisted screening date.
func (h *HistoryBrowser) Latest(ctx context.Context, market string, limit int) (*models.LatestRecommendations, error) {
	if limit <= 0 {
		limit = 20
	}
	latest, err := h.store.Latest(ctx, market, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return latest, nil
}
