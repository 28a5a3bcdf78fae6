package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type alertEvalStore interface {
	ListPriceWatches(ctx context.Context) ([]db.PriceWatch, error)
	CreateAlert(ctx context.Context, a *models.Alert) error
	DisablePriceAlerts(ctx context.Context, userID, ticker string) error
}

// AlertEvaluationJob turns reached watchlist price targets into alert rows.
// A fired watch is disabled so it alerts once per target.
type AlertEvaluationJob struct {
	store alertEvalStore
	log   zerolog.Logger
}

func NewAlertEvaluationJob(store alertEvalStore, log zerolog.Logger) *AlertEvaluationJob {
	return &AlertEvaluationJob{
		store: store,
		log:   log.With().Str("job", "alert_evaluation").Logger(),
	}
}

func (j *AlertEvaluationJob) Name() string { return "alert_evaluation" }

func (j *AlertEvaluationJob) Run(ctx context.Context) error {
	watches, err := j.store.ListPriceWatches(ctx)
	if err != nil {
		return fmt.Errorf("list price watches: %w", err)
	}

	var fired int
	for _, w := range watches {
		if w.LastPrice < w.TargetPrice {
			continue
		}

		body := fmt.Sprintf("%s is trading at %.2f, at or above your target of %.2f.",
			w.Ticker, w.LastPrice, w.TargetPrice)
		alert := &models.Alert{
			ID:        "alert-" + uuid.NewString()[:8],
			Title:     fmt.Sprintf("%s reached price target", w.Ticker),
			Body:      body,
			Ticker:    w.Ticker,
			Severity:  "info",
			Type:      "price_target",
			CreatedAt: time.Now().UTC(),
		}
		if err := j.store.CreateAlert(ctx, alert); err != nil {
			j.log.Warn().Err(err).Str("ticker", w.Ticker).Msg("Alert insert failed")
			continue
		}
		if err := j.store.DisablePriceAlerts(ctx, w.UserID, w.Ticker); err != nil {
			j.log.Warn().Err(err).Str("ticker", w.Ticker).Msg("Failed to disable fired watch")
		}
		fired++
	}

	j.log.Info().Int("watches", len(watches)).Int("fired", fired).Msg("Alert evaluation finished")
	return nil
}

type alertCleanupStore interface {
	DeleteReadAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertCleanupJob drops read alerts older than the retention window.
type AlertCleanupJob struct {
	store     alertCleanupStore
	retention time.Duration
	log       zerolog.Logger
}

func NewAlertCleanupJob(store alertCleanupStore, retentionDays int, log zerolog.Logger) *AlertCleanupJob {
	return &AlertCleanupJob{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.With().Str("job", "alert_cleanup").Logger(),
	}
}

func (j *AlertCleanupJob) Name() string { return "alert_cleanup" }

func (j *AlertCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.retention)
	deleted, err := j.store.DeleteReadAlertsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete read alerts: %w", err)
	}

	j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Alert cleanup finished")
	return nil
}
