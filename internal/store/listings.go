package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scubahq/tradevault/internal/domain"
)

// SavePendingListing upserts the owner's pending sale details. One live row
// per owner; a resubmission replaces the previous one and restarts the clock.
func (s *Postgres) SavePendingListing(ctx context.Context, p *domain.PendingListing) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO temp_sales (user_id, account_type, price, description, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            account_type = $2,
            price = $3,
            description = $4,
            expires_at = $5,
            created_at = CURRENT_TIMESTAMP`,
		p.OwnerID, p.AccountType, p.Price, p.Description, p.ExpiresAt)
	if err != nil {
		return fmt.Errorf("save pending listing for %d: %w", p.OwnerID, err)
	}
	return nil
}

// GetPendingListing returns the owner's pending listing, or nil when absent.
func (s *Postgres) GetPendingListing(ctx context.Context, ownerID int64) (*domain.PendingListing, error) {
	var p domain.PendingListing
	err := s.db.QueryRow(ctx, `
        SELECT user_id, account_type, price, description, created_at, expires_at
        FROM temp_sales WHERE user_id = $1`,
		ownerID,
	).Scan(&p.OwnerID, &p.AccountType, &p.Price, &p.Description, &p.CreatedAt, &p.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending listing for %d: %w", ownerID, err)
	}
	return &p, nil
}

// DeletePendingListing discards the owner's pending listing if present.
func (s *Postgres) DeletePendingListing(ctx context.Context, ownerID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM temp_sales WHERE user_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("delete pending listing for %d: %w", ownerID, err)
	}
	return nil
}

// PromoteListing converts the owner's pending listing into an active one in a
// single transaction. The pending row must still exist; a concurrent or
// repeated promotion fails with ErrNoPendingListing instead of publishing a
// duplicate.
func (s *Postgres) PromoteListing(ctx context.Context, l *domain.ActiveListing) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("promote listing: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM temp_sales WHERE user_id = $1`, l.OwnerID)
	if err != nil {
		return fmt.Errorf("promote listing: clear pending: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNoPendingListing
	}

	images, _ := json.Marshal(l.ImageURLs)
	extras, _ := json.Marshal(l.ExtraMessageIDs)
	_, err = tx.Exec(ctx, `
        INSERT INTO active_listings
            (listing_id, user_id, account_type, price, description, image_urls,
             listing_channel_id, listing_message_id, extra_message_ids, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.OwnerID, l.AccountType, l.Price, l.Description, string(images),
		l.ChannelID, l.MessageID, string(extras), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("promote listing: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("promote listing: commit: %w", err)
	}
	return nil
}

func scanListing(row pgx.Row) (*domain.ActiveListing, error) {
	var l domain.ActiveListing
	var images, extras *string
	err := row.Scan(&l.ID, &l.OwnerID, &l.AccountType, &l.Price, &l.Description,
		&images, &l.ChannelID, &l.MessageID, &extras, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if images != nil {
		_ = json.Unmarshal([]byte(*images), &l.ImageURLs)
	}
	if extras != nil {
		_ = json.Unmarshal([]byte(*extras), &l.ExtraMessageIDs)
	}
	return &l, nil
}

const listingColumns = `listing_id, user_id, account_type, price, description, image_urls,
             listing_channel_id, listing_message_id, extra_message_ids, created_at`

// GetActiveListing fetches a published listing by id.
func (s *Postgres) GetActiveListing(ctx context.Context, listingID string) (*domain.ActiveListing, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM active_listings WHERE listing_id = $1`, listingID)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	return l, nil
}

// UpdateActiveListing applies an edit. The listing id and creation time never
// change.
func (s *Postgres) UpdateActiveListing(ctx context.Context, listingID string, f domain.ListingFields) error {
	l, err := s.GetActiveListing(ctx, listingID)
	if err != nil {
		return err
	}
	if f.AccountType != nil {
		l.AccountType = *f.AccountType
	}
	if f.Price != nil {
		l.Price = *f.Price
	}
	if f.Description != nil {
		l.Description = *f.Description
	}
	if f.ImageURLs != nil {
		l.ImageURLs = f.ImageURLs
	}
	images, _ := json.Marshal(l.ImageURLs)
	_, err = s.db.Exec(ctx, `
        UPDATE active_listings
        SET account_type = $1, price = $2, description = $3, image_urls = $4
        WHERE listing_id = $5`,
		l.AccountType, l.Price, l.Description, string(images), listingID)
	if err != nil {
		return fmt.Errorf("update listing %s: %w", listingID, err)
	}
	return nil
}

// DeleteActiveListing removes a published listing. Removing an already-gone
// listing is a no-op.
func (s *Postgres) DeleteActiveListing(ctx context.Context, listingID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM active_listings WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", listingID, err)
	}
	return nil
}

// CountActiveListings returns how many listings the owner currently has live.
func (s *Postgres) CountActiveListings(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM active_listings WHERE user_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count listings for %d: %w", ownerID, err)
	}
	return n, nil
}

// ListUserListings returns all of the owner's live listings, newest first.
func (s *Postgres) ListUserListings(ctx context.Context, ownerID int64) ([]domain.ActiveListing, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+listingColumns+` FROM active_listings WHERE user_id = $1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list listings for %d: %w", ownerID, err)
	}
	defer rows.Close()

	var out []domain.ActiveListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// SweepExpiredPendingListings removes pending listings past their expiry and
// returns the owners whose submissions were discarded, so they can be told.
func (s *Postgres) SweepExpiredPendingListings(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := s.db.Query(ctx,
		`DELETE FROM temp_sales WHERE expires_at <= $1 RETURNING user_id`, now)
	if err != nil {
		return nil, fmt.Errorf("sweep pending listings: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sweep pending listings: scan: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// SweepOldActiveListings removes listings created at or before the cutoff and
// returns how many went.
func (s *Postgres) SweepOldActiveListings(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM active_listings WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep old listings: %w", err)
	}
	return ct.RowsAffected(), nil
}
