package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"conges/internal/auth"
	"conges/internal/domain/calendar"
	"conges/internal/platform/config"
)

// Seed guarantees the reference data a fresh instance needs: the
// current year's public holidays and, when configured, an RH account
// so the approval chain has a final step from the first boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := seedHolidays(ctx, pool, time.Now().Year()); err != nil {
		return err
	}
	return seedRHAccount(ctx, pool, cfg)
}

func seedHolidays(ctx context.Context, pool *pgxpool.Pool, year int) error {
	for _, h := range calendar.FrenchPublicHolidays(year) {
		_, err := pool.Exec(ctx, `
      INSERT INTO holidays (date, label, year)
      VALUES ($1, $2, $3)
      ON CONFLICT (date) DO NOTHING
    `, h.Date, h.Label, year)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedRHAccount(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedRHEmail)
	if email == "" {
		return nil
	}

	var existing int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE email = $1", email).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedRHPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO employees (email, password_hash, first_name, last_name, role, contract_type, seniority_date, active)
    VALUES ($1, $2, 'Service', 'RH', $3, 'cdi', now(), true)
  `, email, hash, "rh")
	return err
}
