package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/pkg/dbmetrics"
	"github.com/andmv/LDM-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий конфигурации расписания листингов.
// Рабочие часы, перерывы и выходные хранятся в JSONB-колонках.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

var scheduleColumns = []string{
	"id",
	"listing_id",
	"enabled",
	"timezone",
	"hours",
	"breaks",
	"days_off",
	"slot_interval_minutes",
	"buffer_before_minutes",
	"buffer_after_minutes",
	"reschedule_enabled",
	"reschedule_restrict_enabled",
	"reschedule_cutoff_value",
	"reschedule_cutoff_unit",
	"pending_blocks_slots",
	"created_at",
	"updated_at",
}

// GetByListingID получает конфигурацию расписания листинга
func (r *Repository) GetByListingID(ctx context.Context, listingID int64) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("listing_schedule").
		Where(squirrel.Eq{"listing_id": listingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByListingID - build select query: %v", ErrBuildQuery, err)
	}

	var cfg domain.ScheduleConfig
	var hoursRaw, breaksRaw, daysOffRaw []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.ListingID,
		&cfg.Enabled,
		&cfg.Timezone,
		&hoursRaw,
		&breaksRaw,
		&daysOffRaw,
		&cfg.SlotIntervalMinutes,
		&cfg.BufferBeforeMinutes,
		&cfg.BufferAfterMinutes,
		&cfg.RescheduleEnabled,
		&cfg.RescheduleRestrictEnabled,
		&cfg.RescheduleCutoffValue,
		&cfg.RescheduleCutoffUnit,
		&cfg.PendingBlocksSlots,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByListingID - scan config: %v", ErrScanRow, err)
	}

	if err := decodeJSON(hoursRaw, &cfg.Hours); err != nil {
		return nil, fmt.Errorf("%w: GetByListingID - decode hours: %v", ErrScanRow, err)
	}
	if err := decodeJSON(breaksRaw, &cfg.Breaks); err != nil {
		return nil, fmt.Errorf("%w: GetByListingID - decode breaks: %v", ErrScanRow, err)
	}
	if err := decodeJSON(daysOffRaw, &cfg.DaysOff); err != nil {
		return nil, fmt.Errorf("%w: GetByListingID - decode days_off: %v", ErrScanRow, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}

// Upsert создает или обновляет конфигурацию расписания листинга
func (r *Repository) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	hoursRaw, err := json.Marshal(cfg.Hours)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - marshal hours: %v", ErrEncode, err)
	}
	breaksRaw, err := json.Marshal(cfg.Breaks)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - marshal breaks: %v", ErrEncode, err)
	}
	daysOffRaw, err := json.Marshal(cfg.DaysOff)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - marshal days_off: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert("listing_schedule").
		Columns(
			"listing_id",
			"enabled",
			"timezone",
			"hours",
			"breaks",
			"days_off",
			"slot_interval_minutes",
			"buffer_before_minutes",
			"buffer_after_minutes",
			"reschedule_enabled",
			"reschedule_restrict_enabled",
			"reschedule_cutoff_value",
			"reschedule_cutoff_unit",
			"pending_blocks_slots",
		).
		Values(
			cfg.ListingID,
			cfg.Enabled,
			cfg.Timezone,
			hoursRaw,
			breaksRaw,
			daysOffRaw,
			cfg.SlotIntervalMinutes,
			cfg.BufferBeforeMinutes,
			cfg.BufferAfterMinutes,
			cfg.RescheduleEnabled,
			cfg.RescheduleRestrictEnabled,
			cfg.RescheduleCutoffValue,
			cfg.RescheduleCutoffUnit,
			cfg.PendingBlocksSlots,
		).
		Suffix(`ON CONFLICT (listing_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			timezone = EXCLUDED.timezone,
			hours = EXCLUDED.hours,
			breaks = EXCLUDED.breaks,
			days_off = EXCLUDED.days_off,
			slot_interval_minutes = EXCLUDED.slot_interval_minutes,
			buffer_before_minutes = EXCLUDED.buffer_before_minutes,
			buffer_after_minutes = EXCLUDED.buffer_after_minutes,
			reschedule_enabled = EXCLUDED.reschedule_enabled,
			reschedule_restrict_enabled = EXCLUDED.reschedule_restrict_enabled,
			reschedule_cutoff_value = EXCLUDED.reschedule_cutoff_value,
			reschedule_cutoff_unit = EXCLUDED.reschedule_cutoff_unit,
			pending_blocks_slots = EXCLUDED.pending_blocks_slots,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cfg.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return cfg, nil
}

func decodeJSON(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
