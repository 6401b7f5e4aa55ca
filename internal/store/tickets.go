package store

import (
	"context"
	"fmt"
)

// CreateTicket records a new open support ticket and returns its id.
func (s *Postgres) CreateTicket(ctx context.Context, userID, channelID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
        INSERT INTO support_tickets (user_id, channel_id)
        VALUES ($1, $2)
        RETURNING ticket_id`,
		userID, channelID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create ticket for %d: %w", userID, err)
	}
	return id, nil
}

// HasOpenTicket reports whether the user already has an open ticket.
func (s *Postgres) HasOpenTicket(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM support_tickets WHERE user_id = $1 AND status = 'open'
        )`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open ticket for %d: %w", userID, err)
	}
	return exists, nil
}

// CloseTicket marks the ticket behind the channel as closed.
func (s *Postgres) CloseTicket(ctx context.Context, channelID, closedBy int64) error {
	_, err := s.db.Exec(ctx, `
        UPDATE support_tickets
        SET status = 'closed', closed_at = CURRENT_TIMESTAMP, closed_by = $2
        WHERE channel_id = $1`,
		channelID, closedBy)
	if err != nil {
		return fmt.Errorf("close ticket %d: %w", channelID, err)
	}
	return nil
}

// TicketCounts returns how many tickets are open and how many ever existed.
func (s *Postgres) TicketCounts(ctx context.Context) (open, total int, err error) {
	err = s.db.QueryRow(ctx, `
        SELECT COUNT(*) FILTER (WHERE status = 'open'), COUNT(*)
        FROM support_tickets`,
	).Scan(&open, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("ticket counts: %w", err)
	}
	return open, total, nil
}

// Counts gathers the entity counts for the admin stats endpoint.
func (s *Postgres) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_stats`).Scan(&c.Users); err != nil {
		return c, fmt.Errorf("counts: users: %w", err)
	}
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM active_listings`).Scan(&c.ActiveListings); err != nil {
		return c, fmt.Errorf("counts: listings: %w", err)
	}
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM trade_history`).Scan(&c.Trades); err != nil {
		return c, fmt.Errorf("counts: trades: %w", err)
	}
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM vouches`).Scan(&c.Vouches); err != nil {
		return c, fmt.Errorf("counts: vouches: %w", err)
	}
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM support_tickets WHERE status = 'open'`).Scan(&c.OpenTickets); err != nil {
		return c, fmt.Errorf("counts: tickets: %w", err)
	}
	return c, nil
}
