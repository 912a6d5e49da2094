package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/datasource"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

// EventSyncResult summarizes one sync pass
type EventSyncResult struct {
	SportsSeen       int `json:"sports_seen"`
	EventsCreated    int `json:"events_created"`
	EventsUpdated    int `json:"events_updated"`
	OddsInserted     int `json:"odds_inserted"`
	OddsSuperseded   int `json:"odds_superseded"`
	SignificantMoves int `json:"significant_moves"`
	Errors           int `json:"errors"`
}

// EventSyncService mirrors the provider's upcoming-event catalog into the
// local store. Events are created as SCHEDULED and matched on the provider's
// external identifier, with a same-day team-name fallback for providers that
// disagree on identifiers. Each synced event's bookmaker quotes are handed to
// the odds tracker, so one provider fetch feeds both the catalog and the
// odds store the pipeline reads from.
type EventSyncService struct {
	provider  datasource.OddsProvider
	sportRepo repository.SportRepository
	eventRepo repository.EventRepository
	tracker   *OddsTracker
	maxSports int
	logger    *logrus.Entry
}

// NewEventSyncService creates an event sync service. A nil tracker syncs the
// event catalog only.
func NewEventSyncService(
	provider datasource.OddsProvider,
	sportRepo repository.SportRepository,
	eventRepo repository.EventRepository,
	tracker *OddsTracker,
	maxSports int,
	baseLogger *logrus.Logger,
) *EventSyncService {
	if maxSports <= 0 {
		maxSports = 10
	}
	return &EventSyncService{
		provider:  provider,
		sportRepo: sportRepo,
		eventRepo: eventRepo,
		tracker:   tracker,
		maxSports: maxSports,
		logger:    baseLogger.WithField("component", "event_sync"),
	}
}

// Sync pulls the provider's active sports and upcoming events. Per-sport and
// per-event failures are counted and contained.
func (s *EventSyncService) Sync(ctx context.Context) (*EventSyncResult, error) {
	result := &EventSyncResult{}

	sports, err := s.provider.FetchSports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sports: %w", err)
	}

	for _, info := range sports {
		if !info.Active {
			continue
		}
		if result.SportsSeen >= s.maxSports {
			break
		}
		result.SportsSeen++

		if err := s.syncSport(ctx, info, result); err != nil {
			s.logger.WithFields(logrus.Fields{
				"sport_key": info.Key,
				"error":     err.Error(),
			}).Warn("Sport sync failed, continuing")
			result.Errors++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"sports":        result.SportsSeen,
		"created":       result.EventsCreated,
		"updated":       result.EventsUpdated,
		"odds_inserted": result.OddsInserted,
		"superseded":    result.OddsSuperseded,
		"errors":        result.Errors,
	}).Info("Event sync completed")

	return result, nil
}

func (s *EventSyncService) syncSport(ctx context.Context, info datasource.SportInfo, result *EventSyncResult) error {
	sport, err := s.sportRepo.GetOrCreate(ctx, info.Key, info.Title)
	if err != nil {
		return fmt.Errorf("failed to get or create sport: %w", err)
	}

	events, err := s.provider.FetchOdds(ctx, info.Key, datasource.OddsRequestOptions{})
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	for _, providerEvent := range events {
		event, created, updated, err := s.syncEvent(ctx, sport, providerEvent)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"external_id": providerEvent.ID,
				"error":       err.Error(),
			}).Warn("Event sync failed, continuing")
			result.Errors++
			continue
		}
		if created {
			result.EventsCreated++
		}
		if updated {
			result.EventsUpdated++
		}

		if s.tracker != nil {
			track, err := s.tracker.TrackEvent(ctx, event, providerEvent)
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"external_id": providerEvent.ID,
					"error":       err.Error(),
				}).Warn("Odds tracking failed, continuing")
				result.Errors++
				continue
			}
			result.OddsInserted += track.Inserted
			result.OddsSuperseded += track.Superseded
			result.SignificantMoves += track.SignificantMoves
			result.Errors += track.Errors
		}
	}

	return nil
}

// syncEvent finds or creates the local event for one provider event
func (s *EventSyncService) syncEvent(ctx context.Context, sport *models.Sport, pe datasource.EventOdds) (event *models.Event, created, updated bool, err error) {
	event, err = s.eventRepo.GetByExternalID(ctx, pe.ID)
	if errors.Is(err, models.ErrNotFound) {
		event, err = s.eventRepo.GetByTeamsAndDay(ctx, sport.ID, pe.HomeTeam, pe.AwayTeam, pe.StartTime)
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, false, false, err
	}

	if event == nil || errors.Is(err, models.ErrNotFound) {
		event = &models.Event{
			ID:         uuid.New(),
			SportID:    sport.ID,
			ExternalID: pe.ID,
			HomeTeam:   pe.HomeTeam,
			AwayTeam:   pe.AwayTeam,
			StartTime:  pe.StartTime,
			Status:     models.EventStatusScheduled,
			IsActive:   true,
		}
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return nil, false, false, fmt.Errorf("failed to create event: %w", err)
		}
		return event, true, false, nil
	}

	// Start times move; nothing else the provider reports should
	if !event.StartTime.Equal(pe.StartTime) {
		event.StartTime = pe.StartTime
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return nil, false, false, fmt.Errorf("failed to update event: %w", err)
		}
		return event, false, true, nil
	}

	return event, false, false, nil
}

// RecordResult stores a finished event's score, enabling the persisted-history
// feature tier to learn from it
func (s *EventSyncService) RecordResult(ctx context.Context, eventID uuid.UUID, homeScore, awayScore int) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}

	event.Status = models.EventStatusFinished
	event.HomeScore = &homeScore
	event.AwayScore = &awayScore
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	return nil
}
