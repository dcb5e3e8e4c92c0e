package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/pkg/cache"
	"TelescopeStatus/pkg/logger"
)

const missionsCacheKey = "missions:caom"

// MissionCatalog validates telescope identifiers against the archive's
// current mission list.
type MissionCatalog struct {
	archive repository.Archive
	cache   cache.Service
	ttl     time.Duration
	metrics repository.Metrics
	log     *logger.Logger
}

// NewMissionCatalog creates a catalog. c may be nil to always ask the archive.
func NewMissionCatalog(archive repository.Archive, c cache.Service, ttl time.Duration, metrics repository.Metrics, log *logger.Logger) *MissionCatalog {
	if log == nil {
		log = logger.Nop()
	}
	return &MissionCatalog{archive: archive, cache: c, ttl: ttl, metrics: metrics, log: log}
}

// Missions returns the known mission identifiers.
func (m *MissionCatalog) Missions(ctx context.Context) ([]string, error) {
	if m.cache == nil {
		return m.archive.ListMissions(ctx)
	}
	missions, hit, err := cache.GetOrLoad(ctx, m.cache, missionsCacheKey, m.ttl, m.archive.ListMissions)
	if m.metrics != nil {
		m.metrics.RecordCacheLookup("missions", hit)
	}
	if err != nil {
		return nil, err
	}
	return missions, nil
}

// Validate uppercases name and checks it is a known mission.
func (m *MissionCatalog) Validate(ctx context.Context, name string) (string, error) {
	missions, err := m.Missions(ctx)
	if err != nil {
		return "", fmt.Errorf("list missions: %w", err)
	}
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, known := range missions {
		if strings.ToUpper(known) == upper {
			return upper, nil
		}
	}
	m.log.Debug("unknown telescope", logger.String("telescope", name))
	return "", &models.UnknownTelescopeError{Name: name, Valid: missions}
}
