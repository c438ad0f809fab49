package clock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOffsetDisabled is returned when a clock offset write is attempted
// outside development mode. This is a configuration error, never ignored
// silently.
var ErrOffsetDisabled = errors.New("clock offset is disabled outside development mode")

// offsetKey is the dev_settings row holding the simulated time offset.
const offsetKey = "time_offset_ms"

// DevSetting is a key/value row in the dev_settings table.
// The offset is stored in the database rather than process memory so that
// the HTTP server, the CLI and scheduled invocations all observe the same
// simulated time.
type DevSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     int64     `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName sets the table name for the DevSetting model.
func (DevSetting) TableName() string { return "dev_settings" }

// Clock supplies the current time for reconciliation runs.
//
// In development mode Now returns the wall clock shifted by a persisted
// offset, which allows moving simulated time backward and forward. Outside
// development the offset path is hard-disabled: reads return zero without
// touching the store and writes are rejected.
type Clock struct {
	db      *gorm.DB
	devMode bool
}

// New creates a Clock. devMode must come from deployment configuration,
// not from any runtime-mutable source.
func New(db *gorm.DB, devMode bool) *Clock {
	return &Clock{db: db, devMode: devMode}
}

// Now returns the current time including any development offset.
//
// Callers performing multiple time-guarded steps must call Now once and
// reuse the value, so a record cannot be judged "started" by one step and
// "not started" by another within the same run.
func (c *Clock) Now(ctx context.Context) (time.Time, error) {
	offset, err := c.Offset(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(offset), nil
}

// Offset returns the persisted time offset. Outside development it always
// returns zero without reading the store.
func (c *Clock) Offset(ctx context.Context) (time.Duration, error) {
	if !c.devMode {
		return 0, nil
	}

	var row DevSetting
	err := c.db.WithContext(ctx).Where("key = ?", offsetKey).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read time offset: %w", err)
	}

	return time.Duration(row.Value) * time.Millisecond, nil
}

// SetOffset persists a new time offset. Development mode only.
func (c *Clock) SetOffset(ctx context.Context, offset time.Duration) error {
	if !c.devMode {
		return ErrOffsetDisabled
	}

	row := DevSetting{
		Key:       offsetKey,
		Value:     offset.Milliseconds(),
		UpdatedAt: time.Now(),
	}

	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set time offset: %w", err)
	}

	return nil
}

// SetTarget persists the offset that makes Now report the given target time.
func (c *Clock) SetTarget(ctx context.Context, target time.Time) error {
	return c.SetOffset(ctx, time.Until(target))
}

// Reset clears the time offset, returning Now to the wall clock.
func (c *Clock) Reset(ctx context.Context) error {
	return c.SetOffset(ctx, 0)
}
