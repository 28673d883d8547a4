package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, ownerID string) (*Settings, error)
	// Upsert stores the full document and refreshes s.UpdatedAt.
	Upsert(ctx context.Context, s *Settings) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// storedDay is the jsonb shape of one template entry.
type storedDay struct {
	IsEnabled bool          `json:"isEnabled"`
	Slots     []storedRange `json:"slots"`
}

type storedRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func encodeTemplate(t WeeklyTemplate) ([]byte, error) {
	stored := make(map[Weekday]storedDay, len(t))
	for day, da := range t {
		sd := storedDay{IsEnabled: da.IsEnabled, Slots: make([]storedRange, len(da.Slots))}
		for i, r := range da.Slots {
			sd.Slots[i] = storedRange{Start: r.Start, End: r.End}
		}
		stored[day] = sd
	}
	return json.Marshal(stored)
}

func decodeTemplate(raw []byte) (WeeklyTemplate, error) {
	var stored map[Weekday]storedDay
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	t := make(WeeklyTemplate, len(stored))
	for day, sd := range stored {
		da := DayAvailability{IsEnabled: sd.IsEnabled, Slots: make([]TimeRange, len(sd.Slots))}
		for i, r := range sd.Slots {
			da.Slots[i] = TimeRange{Start: r.Start, End: r.End}
		}
		t[day] = da
	}
	return t, nil
}

func (r *pgxRepository) Get(ctx context.Context, ownerID string) (*Settings, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"owner_id", "timezone", "minimum_notice_hours", "buffer_minutes",
		"prevent_overlap", "require_confirmation", "weekly_template", "updated_at",
	).
		From("public.availability_settings").
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get availability query failed: %w", err)
	}

	var s Settings
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.OwnerID, &s.Timezone, &s.MinimumNoticeHours, &s.BufferMinutes,
		&s.PreventOverlap, &s.RequireConfirmation, &raw, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get availability failed: %w", err)
	}

	s.Template, err = decodeTemplate(raw)
	if err != nil {
		return nil, fmt.Errorf("decode weekly template failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) Upsert(ctx context.Context, s *Settings) error {
	raw, err := encodeTemplate(s.Template)
	if err != nil {
		return fmt.Errorf("encode weekly template failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.availability_settings").
		Columns(
			"owner_id", "timezone", "minimum_notice_hours", "buffer_minutes",
			"prevent_overlap", "require_confirmation", "weekly_template",
		).
		Values(
			s.OwnerID, s.Timezone, s.MinimumNoticeHours, s.BufferMinutes,
			s.PreventOverlap, s.RequireConfirmation, raw,
		).
		Suffix(`ON CONFLICT (owner_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			minimum_notice_hours = EXCLUDED.minimum_notice_hours,
			buffer_minutes = EXCLUDED.buffer_minutes,
			prevent_overlap = EXCLUDED.prevent_overlap,
			require_confirmation = EXCLUDED.require_confirmation,
			weekly_template = EXCLUDED.weekly_template,
			updated_at = now()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert availability query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert availability failed: %w", err)
	}
	return nil
}
