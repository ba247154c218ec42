package repository

import (
	"context"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
	pkgkafka "EquityScout/pkg/kafka"
)

// KafkaResultPublisher hands completed screening runs to downstream
// consumers, one message per surfaced signal keyed by ticker.
type KafkaResultPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaResultPublisher{producer: producer, topic: topic}
}

func (p *KafkaResultPublisher) PublishResult(ctx context.Context, r *models.ScreeningResult) error {
	all := r.AllSignals()
	if len(all) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(all))
	for i, c := range all {
		msgs[i] = pkgkafka.Message{
			Key: []byte(c.Ticker),
			Value: map[string]interface{}{
				"screening_date":  r.ScreeningDate.Format("2006-01-02"),
				"ticker":          c.Ticker,
				"market":          c.Market,
				"tier":            string(c.Tier),
				"score":           c.Score,
				"bonus_score":     c.BonusScore,
				"perfect":         c.Perfect,
				"active_patterns": c.ActivePatterns,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
