package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scubahq/tradevault/internal/domain"
)

// SubmitPendingVouch upserts one role's rating for a trade and applies it to
// the rated party's aggregate in the same transaction. A first submission
// adds sum and count; a resubmission before the pair completes overwrites the
// entry and adjusts the sum by the delta only, so the count stays honest.
func (s *Postgres) SubmitPendingVouch(ctx context.Context, v *domain.PendingVouch) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("submit vouch: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var prev int
	hadPrev := true
	err = tx.QueryRow(ctx,
		`SELECT rating FROM pending_vouches WHERE trade_id = $1 AND role = $2 FOR UPDATE`,
		v.TradeID, v.Role,
	).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		hadPrev = false
	} else if err != nil {
		return fmt.Errorf("submit vouch: check existing: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO pending_vouches (trade_id, role, rater_id, rated_user_id, rating, comment)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (trade_id, role) DO UPDATE SET
            rater_id = $3,
            rated_user_id = $4,
            rating = $5,
            comment = $6,
            created_at = CURRENT_TIMESTAMP`,
		v.TradeID, v.Role, v.RaterID, v.RatedID, v.Rating, v.Comment)
	if err != nil {
		return fmt.Errorf("submit vouch: upsert: %w", err)
	}

	if hadPrev {
		_, err = tx.Exec(ctx, `
            UPDATE user_stats
            SET total_rating = total_rating + $2, updated_at = CURRENT_TIMESTAMP
            WHERE user_id = $1`,
			v.RatedID, v.Rating-prev)
	} else {
		_, err = tx.Exec(ctx, `
            INSERT INTO user_stats (user_id, total_rating, rating_count) VALUES ($1, $2, 1)
            ON CONFLICT (user_id) DO UPDATE SET
                total_rating = user_stats.total_rating + $2,
                rating_count = user_stats.rating_count + 1,
                updated_at = CURRENT_TIMESTAMP`,
			v.RatedID, v.Rating)
	}
	if err != nil {
		return fmt.Errorf("submit vouch: apply rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("submit vouch: commit: %w", err)
	}
	return nil
}

// GetPendingVouches returns the pending sub-records for a trade keyed by role.
func (s *Postgres) GetPendingVouches(ctx context.Context, tradeID string) (map[domain.Role]*domain.PendingVouch, error) {
	rows, err := s.db.Query(ctx, `
        SELECT trade_id, role, rater_id, rated_user_id, rating, comment, created_at
        FROM pending_vouches WHERE trade_id = $1`,
		tradeID)
	if err != nil {
		return nil, fmt.Errorf("get pending vouches for %s: %w", tradeID, err)
	}
	defer rows.Close()

	out := make(map[domain.Role]*domain.PendingVouch)
	for rows.Next() {
		var v domain.PendingVouch
		if err := rows.Scan(&v.TradeID, &v.Role, &v.RaterID, &v.RatedID, &v.Rating, &v.Comment, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending vouch: %w", err)
		}
		out[v.Role] = &v
	}
	return out, rows.Err()
}

// CompleteVouchPair moves a full pending pair into the permanent vouches
// table and discards the pending rows, all in one transaction. Returns nil
// without error when the pair is incomplete or already published, which makes
// concurrent publish attempts collapse to exactly one winner.
func (s *Postgres) CompleteVouchPair(ctx context.Context, tradeID string) ([]domain.Vouch, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete vouch pair: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
        SELECT trade_id, role, rater_id, rated_user_id, rating, comment, created_at
        FROM pending_vouches WHERE trade_id = $1 FOR UPDATE`,
		tradeID)
	if err != nil {
		return nil, fmt.Errorf("complete vouch pair: select: %w", err)
	}
	var pending []domain.PendingVouch
	for rows.Next() {
		var v domain.PendingVouch
		if err := rows.Scan(&v.TradeID, &v.Role, &v.RaterID, &v.RatedID, &v.Rating, &v.Comment, &v.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("complete vouch pair: scan: %w", err)
		}
		pending = append(pending, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("complete vouch pair: rows: %w", err)
	}

	if len(pending) < 2 {
		return nil, nil
	}

	out := make([]domain.Vouch, 0, len(pending))
	for _, v := range pending {
		var id int64
		err = tx.QueryRow(ctx, `
            INSERT INTO vouches (trade_id, rater_id, rated_user_id, rating, comment, role)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id`,
			v.TradeID, v.RaterID, v.RatedID, v.Rating, v.Comment, v.Role,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("complete vouch pair: insert: %w", err)
		}
		out = append(out, domain.Vouch{
			ID: id, TradeID: v.TradeID, RaterID: v.RaterID, RatedID: v.RatedID,
			Rating: v.Rating, Comment: v.Comment, Role: v.Role, CreatedAt: v.CreatedAt,
		})
	}

	if _, err = tx.Exec(ctx, `DELETE FROM pending_vouches WHERE trade_id = $1`, tradeID); err != nil {
		return nil, fmt.Errorf("complete vouch pair: clear pending: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("complete vouch pair: commit: %w", err)
	}
	return out, nil
}

// HasPublishedVouches reports whether the trade's pair already made it into
// the permanent vouches table.
func (s *Postgres) HasPublishedVouches(ctx context.Context, tradeID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vouches WHERE trade_id = $1)`, tradeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check published vouches for %s: %w", tradeID, err)
	}
	return exists, nil
}

// DeletePendingVouches discards a trade's pending pair wholesale.
func (s *Postgres) DeletePendingVouches(ctx context.Context, tradeID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM pending_vouches WHERE trade_id = $1`, tradeID)
	if err != nil {
		return fmt.Errorf("delete pending vouches for %s: %w", tradeID, err)
	}
	return nil
}

// ListVouchesForUser returns the newest published vouches about a user.
func (s *Postgres) ListVouchesForUser(ctx context.Context, ratedID int64, limit int) ([]domain.Vouch, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, `
        SELECT id, trade_id, rater_id, rated_user_id, rating, comment, role, created_at
        FROM vouches WHERE rated_user_id = $1
        ORDER BY created_at DESC LIMIT $2`,
		ratedID, limit)
	if err != nil {
		return nil, fmt.Errorf("list vouches for %d: %w", ratedID, err)
	}
	defer rows.Close()

	var out []domain.Vouch
	for rows.Next() {
		var v domain.Vouch
		if err := rows.Scan(&v.ID, &v.TradeID, &v.RaterID, &v.RatedID, &v.Rating, &v.Comment, &v.Role, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vouch: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// deleteVouchesWhere removes vouch rows matched by the condition and backs
// their ratings out of the rated users' aggregates.
func (s *Postgres) deleteVouchesWhere(ctx context.Context, cond string, args ...any) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete vouches: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT rated_user_id, rating FROM vouches WHERE `+cond+` FOR UPDATE`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete vouches: select: %w", err)
	}
	type hit struct {
		rated  int64
		rating int
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.rated, &h.rating); err != nil {
			rows.Close()
			return 0, fmt.Errorf("delete vouches: scan: %w", err)
		}
		hits = append(hits, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("delete vouches: rows: %w", err)
	}
	if len(hits) == 0 {
		return 0, nil
	}

	for _, h := range hits {
		_, err = tx.Exec(ctx, `
            UPDATE user_stats
            SET total_rating = total_rating - $2,
                rating_count = rating_count - 1,
                updated_at = CURRENT_TIMESTAMP
            WHERE user_id = $1 AND rating_count > 0`,
			h.rated, h.rating)
		if err != nil {
			return 0, fmt.Errorf("delete vouches: adjust aggregate: %w", err)
		}
	}

	ct, err := tx.Exec(ctx, `DELETE FROM vouches WHERE `+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("delete vouches: delete: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("delete vouches: commit: %w", err)
	}
	return ct.RowsAffected(), nil
}

// DeleteVouchesByTrade removes a trade's published vouches (admin action).
func (s *Postgres) DeleteVouchesByTrade(ctx context.Context, tradeID string) (int64, error) {
	return s.deleteVouchesWhere(ctx, `trade_id = $1`, tradeID)
}

// DeleteVouchesByPair removes vouches a specific rater left about a specific
// user (admin action).
func (s *Postgres) DeleteVouchesByPair(ctx context.Context, raterID, ratedID int64) (int64, error) {
	return s.deleteVouchesWhere(ctx, `rater_id = $1 AND rated_user_id = $2`, raterID, ratedID)
}

// ClearUserVouches zeroes a user's rating aggregate and removes every vouch
// about them, pending or published.
func (s *Postgres) ClearUserVouches(ctx context.Context, userID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("clear vouches: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        UPDATE user_stats
        SET total_rating = 0, rating_count = 0, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("clear vouches: reset aggregate: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM vouches WHERE rated_user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear vouches: delete published: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM pending_vouches WHERE rated_user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear vouches: delete pending: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("clear vouches: commit: %w", err)
	}
	return nil
}

// ResetUser wipes a user's reputation, listings and vouches. Trade history is
// kept for audit.
func (s *Postgres) ResetUser(ctx context.Context, userID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reset user: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	stmts := []string{
		`DELETE FROM user_stats WHERE user_id = $1`,
		`DELETE FROM active_listings WHERE user_id = $1`,
		`DELETE FROM temp_sales WHERE user_id = $1`,
		`DELETE FROM vouches WHERE rater_id = $1 OR rated_user_id = $1`,
		`DELETE FROM pending_vouches WHERE rater_id = $1 OR rated_user_id = $1`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(ctx, q, userID); err != nil {
			return fmt.Errorf("reset user %d: %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reset user: commit: %w", err)
	}
	return nil
}
