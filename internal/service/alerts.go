package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/metrics"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

// AlertService owns the value-bet alert lifecycle after creation: expiry
// sweeps, invalidation on significant odds moves, and user actions
type AlertService struct {
	alertRepo repository.AlertRepository
	alertLog  *logger.AlertLogger
}

// NewAlertService creates an alert lifecycle service
func NewAlertService(alertRepo repository.AlertRepository, baseLogger *logrus.Logger) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		alertLog:  logger.NewAlertLogger(baseLogger),
	}
}

// ExpireSweep transitions past-expiry ACTIVE alerts to EXPIRED and returns
// how many were expired
func (s *AlertService) ExpireSweep(ctx context.Context) (int64, error) {
	start := time.Now()

	expired, err := s.alertRepo.ExpireOlderThan(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire alerts: %w", err)
	}

	metrics.AlertsExpiredTotal.Add(float64(expired))
	s.alertLog.LogExpirySweep(int(expired), float64(time.Since(start).Milliseconds()))

	return expired, nil
}

// MarkTaken records that the user placed the bet behind an alert
func (s *AlertService) MarkTaken(ctx context.Context, alertID uuid.UUID, externalBetID string) error {
	alert, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return fmt.Errorf("failed to load alert: %w", err)
	}

	if err := alert.MarkTaken(externalBetID); err != nil {
		return err
	}
	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist taken alert: %w", err)
	}

	s.alertLog.LogAlertStateChange(alertID.String(), string(models.AlertActive), string(models.AlertTaken), "user placed bet")
	return nil
}

// Invalidate marks an alert INVALID with a reason, typically because the odds
// moved enough to erase the detected edge
func (s *AlertService) Invalidate(ctx context.Context, alertID uuid.UUID, reason string) error {
	alert, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return fmt.Errorf("failed to load alert: %w", err)
	}

	if err := alert.Invalidate(reason); err != nil {
		return err
	}
	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist invalidated alert: %w", err)
	}

	metrics.AlertsInvalidatedTotal.Inc()
	s.alertLog.LogAlertStateChange(alertID.String(), string(models.AlertActive), string(models.AlertInvalid), reason)
	return nil
}

// InvalidateForMove invalidates every ACTIVE alert on a selection whose edge a
// significant odds move has erased
func (s *AlertService) InvalidateForMove(ctx context.Context, eventID uuid.UUID, marketID uuid.UUID, selection string, oldPrice, newPrice float64) (int, error) {
	alerts, err := s.alertRepo.GetActiveByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to list active alerts: %w", err)
	}

	reason := fmt.Sprintf("odds moved from %.2f to %.2f", oldPrice, newPrice)
	invalidated := 0
	for _, alert := range alerts {
		if alert.MarketID != marketID || alert.Selection != selection {
			continue
		}
		// Only shortening prices erase a back-side edge
		if newPrice >= alert.Odds {
			continue
		}
		if err := s.Invalidate(ctx, alert.ID, reason); err != nil {
			return invalidated, err
		}
		invalidated++
	}

	return invalidated, nil
}

// GetUserAlerts lists a user's alerts in the given status, best value first
func (s *AlertService) GetUserAlerts(ctx context.Context, userID uuid.UUID, status models.AlertStatus, limit int) ([]*models.ValueBetAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.alertRepo.GetByUser(ctx, userID, status, limit)
}
