package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scubahq/tradevault/internal/domain"
)

// EnsureUser creates the reputation row if missing and refreshes the cached
// username when one is supplied.
func (s *Postgres) EnsureUser(ctx context.Context, userID int64, username string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO user_stats (user_id, username)
        VALUES ($1, NULLIF($2, ''))
        ON CONFLICT (user_id) DO UPDATE SET
            username = COALESCE(NULLIF($2, ''), user_stats.username),
            updated_at = CURRENT_TIMESTAMP`,
		userID, username)
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

// GetStats returns the user's reputation aggregate. Users without a row get
// a zeroed aggregate rather than an error; rows are only written on first
// trade action or rating.
func (s *Postgres) GetStats(ctx context.Context, userID int64) (*domain.Reputation, error) {
	var r domain.Reputation
	var username *string
	err := s.db.QueryRow(ctx, `
        SELECT user_id, username, sales, purchases, total_rating, rating_count, created_at, updated_at
        FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&r.UserID, &username, &r.Sales, &r.Purchases, &r.TotalRating, &r.RatingCount, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.Reputation{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats for %d: %w", userID, err)
	}
	if username != nil {
		r.Username = *username
	}
	return &r, nil
}

// RecordSale bumps the completed-sale counter, creating the row on first use.
func (s *Postgres) RecordSale(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO user_stats (user_id, sales) VALUES ($1, 1)
        ON CONFLICT (user_id) DO UPDATE SET
            sales = user_stats.sales + 1,
            updated_at = CURRENT_TIMESTAMP`,
		userID)
	if err != nil {
		return fmt.Errorf("record sale for %d: %w", userID, err)
	}
	return nil
}

// RecordPurchase bumps the completed-purchase counter.
func (s *Postgres) RecordPurchase(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO user_stats (user_id, purchases) VALUES ($1, 1)
        ON CONFLICT (user_id) DO UPDATE SET
            purchases = user_stats.purchases + 1,
            updated_at = CURRENT_TIMESTAMP`,
		userID)
	if err != nil {
		return fmt.Errorf("record purchase for %d: %w", userID, err)
	}
	return nil
}
