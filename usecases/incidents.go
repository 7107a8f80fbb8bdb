package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"lab-server/entities"
	"lab-server/logger"
	"lab-server/metrics"
	"lab-server/repositories"
)

const (
	minIncidentDescription = 10
	// Completed incidents are kept this long before the purger removes them.
	incidentRetention = 48 * time.Hour
)

type IncidentsUseCase struct {
	repo repositories.IncidentRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewIncidentsUseCase(repo repositories.IncidentRepository) *IncidentsUseCase {
	return &IncidentsUseCase{
		repo: repo,
		log:  logger.WithComponent("incidents"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Report records a new PENDING incident.
func (uc *IncidentsUseCase) Report(ctx context.Context, description, severity string) (*entities.Incident, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < minIncidentDescription {
		return nil, fmt.Errorf("%w: description needs at least %d characters", ErrValidation, minIncidentDescription)
	}
	sev, ok := entities.ParseSeverity(severity)
	if !ok {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrValidation, severity)
	}
	incident := &entities.Incident{
		Description: description,
		Severity:    sev,
		Status:      entities.IncidentPending,
		CreatedAt:   uc.now(),
	}
	if err := uc.repo.Create(ctx, incident); err != nil {
		return nil, err
	}
	uc.log.Info().Uint("incident", incident.ID).Str("severity", string(sev)).Msg("incident reported")
	return incident, nil
}

// List returns incidents newest first. An empty status lists all of them.
func (uc *IncidentsUseCase) List(ctx context.Context, status string) ([]entities.Incident, error) {
	var filter entities.IncidentStatus
	if strings.TrimSpace(status) != "" {
		st, ok := entities.ParseIncidentStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown incident status %q", ErrValidation, status)
		}
		filter = st
	}
	return uc.repo.List(ctx, filter)
}

// Complete marks an incident COMPLETED. Completing it again is a no-op that
// keeps the first completion time.
func (uc *IncidentsUseCase) Complete(ctx context.Context, id uint) (*entities.Incident, error) {
	if _, err := uc.repo.Complete(ctx, id, uc.now()); err != nil {
		return nil, err
	}
	incident, err := uc.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: incident %d", ErrNotFound, id)
	}
	return incident, err
}

// Purge deletes COMPLETED incidents closed more than the retention ago.
func (uc *IncidentsUseCase) Purge(ctx context.Context) (int64, error) {
	cutoff := uc.now().Add(-incidentRetention)
	n, err := uc.repo.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.IncidentsPurged.Add(float64(n))
		uc.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("purged completed incidents")
	}
	return n, nil
}

// RunPurger purges on every tick until ctx is cancelled.
func (uc *IncidentsUseCase) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.Purge(ctx); err != nil && ctx.Err() == nil {
				uc.log.Warn().Err(err).Msg("incident purge failed")
			}
		}
	}
}
