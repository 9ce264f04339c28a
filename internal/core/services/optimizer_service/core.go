package optimizer_service

import (
	"context"
	"fmt"
	"time"

	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/out"
	"github.com/infusioncare/appointment-optimizer/internal/utils"
	"github.com/infusioncare/appointment-optimizer/pkg/metrics"
)

type OptimizerService struct {
	recordSource out.RecordSourcePort
	cachePort    out.CachePort
	calendar     out.CalendarPort
	logger       out.LoggerPort
	engineCfg    domain.OptimizerConfig
	timezone     *time.Location
	now          func() time.Time
}

func NewOptimizerService(
	recordSource out.RecordSourcePort,
	cachePort out.CachePort,
	calendar out.CalendarPort,
	cfg *config.Config,
	logger out.LoggerPort,
) *OptimizerService {
	timezone, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		timezone = time.UTC
	}

	return &OptimizerService{
		recordSource: recordSource,
		cachePort:    cachePort,
		calendar:     calendar,
		logger:       logger.WithModule("OptimizerService"),
		engineCfg:    engineConfig(cfg),
		timezone:     timezone,
		now:          time.Now,
	}
}

// engineConfig maps validated app configuration onto the engine's knobs.
func engineConfig(cfg *config.Config) domain.OptimizerConfig {
	return domain.OptimizerConfig{
		CapacityModel:        domain.CapacityModel(cfg.Optimizer.CapacityModel),
		DailyCapacityMinutes: cfg.Optimizer.DailyCapacityMinutes,
		ClinicOpenMinutes:    cfg.Optimizer.ClinicOpenMinutes,
		ClinicCloseMinutes:   cfg.Optimizer.ClinicCloseMinutes,
		Window: domain.BookingWindow{
			StartOffsetDays: cfg.Optimizer.WindowStartOffsetDays,
			LengthDays:      cfg.Optimizer.WindowLengthDays,
			OpenEnded:       cfg.Optimizer.WindowOpenEnded,
		},
		TieBreak:    domain.TieBreak(cfg.Optimizer.TieBreak),
		ResultCount: cfg.Optimizer.ResultCount,
	}
}

// today is the reference date every window and holiday decision hangs
// off; one request sees exactly one value of it.
func (s *OptimizerService) today() time.Time {
	return utils.StartOfDay(s.now().In(s.timezone))
}

func (s *OptimizerService) GetLocations(ctx context.Context) ([]string, error) {
	s.logger.Info("optimizer.locations.fetch", out.LogFields{})

	locations, err := s.recordSource.GetLocations(ctx)
	if err != nil {
		s.logger.Error("optimizer.locations.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("optimizer.locations.fetch_failed: %w", err)
	}

	return locations, nil
}

func (s *OptimizerService) FindSlots(ctx context.Context, query domain.SlotQuery) (domain.RankedSlots, error) {
	started := time.Now()
	today := s.today()

	s.logger.Info("optimizer.slots.find", out.LogFields{
		"location": query.Location,
		"chairId":  query.ChairID,
		"duration": query.DurationMinutes,
	})

	snapshot, err := s.getSnapshot(ctx, query.Location, today)
	if err != nil {
		metrics.RecordSlotQuery(query.Location, "error")
		return domain.RankedSlots{}, err
	}

	capacities := AggregateCapacity(*snapshot, s.engineCfg)
	ranked := RankSlots(capacities, query, s.engineCfg, today, s.calendar.IsHoliday)

	outcome := "ok"
	if ranked.NoCapacity {
		outcome = "no_capacity"
		s.logger.Warn("optimizer.slots.no_capacity", out.LogFields{
			"location": query.Location,
			"duration": query.DurationMinutes,
		})
	}
	metrics.RecordSlotQuery(query.Location, outcome)
	metrics.RecordSlotQueryDuration(time.Since(started).Seconds())

	s.logger.Debug("optimizer.slots.find_success", out.LogFields{
		"location":   query.Location,
		"slotsCount": len(ranked.Slots),
	})

	return ranked, nil
}

func (s *OptimizerService) RebalanceDays(ctx context.Context, query domain.RebalanceQuery) (domain.RebalancePlan, error) {
	today := s.today()

	s.logger.Info("optimizer.rebalance.started", out.LogFields{
		"location": query.Location,
		"days":     query.Days,
	})

	snapshot, err := s.getSnapshot(ctx, query.Location, today)
	if err != nil {
		metrics.RecordRebalance(query.Location, "error")
		return domain.RebalancePlan{}, err
	}

	capacities := AggregateCapacity(*snapshot, s.engineCfg)
	plan := RebalanceAppointments(*snapshot, capacities, query.Days)
	metrics.RecordRebalance(query.Location, "ok")

	s.logger.Debug("optimizer.rebalance.success", out.LogFields{
		"location":    query.Location,
		"assignments": len(plan.Assignments),
		"daysPool":    len(plan.Days),
	})

	return plan, nil
}

func (s *OptimizerService) InvalidateSnapshotCache(ctx context.Context, location string) error {
	if s.cachePort == nil {
		return nil
	}

	s.cachePort.InvalidateSnapshot(ctx, location)
	s.logger.Info("optimizer.cache.invalidated", out.LogFields{
		"location": location,
	})

	return nil
}

func (s *OptimizerService) InvalidateAllSnapshotCache(ctx context.Context) error {
	if s.cachePort == nil {
		return nil
	}

	s.cachePort.InvalidateAllSnapshots(ctx)
	s.logger.Info("optimizer.cache.invalidated_all", out.LogFields{})

	return nil
}

// getSnapshot serves the normalized snapshot for a location, from cache
// when a fresh one exists, otherwise fetched and normalized anew.
func (s *OptimizerService) getSnapshot(ctx context.Context, location string, today time.Time) (*domain.ScheduleSnapshot, error) {
	if s.cachePort != nil {
		if snapshot, exists := s.cachePort.GetSnapshot(ctx, location, today); exists {
			metrics.RecordSnapshotCacheHit()
			s.logger.Debug("optimizer.snapshot.cache_hit", out.LogFields{
				"location":     location,
				"appointments": len(snapshot.Appointments),
			})
			return snapshot, nil
		}
		metrics.RecordSnapshotCacheMiss()
	}

	records, err := s.recordSource.GetAppointmentRecords(ctx, location)
	if err != nil {
		s.logger.Error("optimizer.snapshot.fetch_failed", out.LogFields{
			"location": location,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("optimizer.snapshot.fetch_failed: %w", err)
	}

	appointments, err := NormalizeRecords(records, today, s.engineCfg, s.calendar.IsHoliday)
	if err != nil {
		s.logger.Error("optimizer.snapshot.normalize_failed", out.LogFields{
			"location": location,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("optimizer.snapshot.normalize_failed: %w", err)
	}

	snapshot := &domain.ScheduleSnapshot{
		Location:     location,
		AsOf:         today,
		Appointments: appointments,
	}

	if s.cachePort != nil {
		s.cachePort.StoreSnapshot(ctx, snapshot)
	}

	s.logger.Debug("optimizer.snapshot.built", out.LogFields{
		"location":     location,
		"rawRecords":   len(records),
		"appointments": len(appointments),
	})

	return snapshot, nil
}
