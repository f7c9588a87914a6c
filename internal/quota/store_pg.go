package quota

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sentimentiq-backend/internal/tier"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed quota store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, userID string, t tier.Tier) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, userID, t)
	if err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Consume(ctx context.Context, userID string, t tier.Tier, n int) (Usage, error) {
	if n <= 0 {
		return s.Get(ctx, userID, t)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID, t)
	if err != nil {
		return Usage{}, err
	}
	if u.Used+n > u.Limit {
		err = ErrLimitReached
		return Usage{}, err
	}
	u.Used += n
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET used = $1 WHERE user_id = $2`, u.Used, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string, t tier.Tier) (Usage, error) {
	now := time.Now().UTC()
	u := Usage{Tier: string(t), Limit: limitFor(t), Used: 0, ResetsAt: now.Add(window)}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO usage (user_id, tier, limit_amount, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET tier = EXCLUDED.tier, limit_amount = EXCLUDED.limit_amount, used = 0, resets_at = EXCLUDED.resets_at`,
		userID, u.Tier, u.Limit, u.ResetsAt)
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string, t tier.Tier) (Usage, error) {
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT tier, limit_amount, used, resets_at FROM usage WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Tier, &u.Limit, &u.Used, &u.ResetsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			u = defaultUsage(t)
			if _, err = tx.ExecContext(ctx, `
INSERT INTO usage (user_id, tier, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
				userID, u.Tier, u.Limit, u.Used, u.ResetsAt); err != nil {
				return Usage{}, err
			}
			return u, nil
		}
		return Usage{}, err
	}

	now := time.Now().UTC()
	dirty := false
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(window)
		dirty = true
	}
	if u.Tier != string(t) || u.Limit != limitFor(t) {
		u.Tier = string(t)
		u.Limit = limitFor(t)
		dirty = true
	}
	if dirty {
		if _, err = tx.ExecContext(ctx, `
UPDATE usage SET tier = $1, limit_amount = $2, used = $3, resets_at = $4 WHERE user_id = $5`,
			u.Tier, u.Limit, u.Used, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
