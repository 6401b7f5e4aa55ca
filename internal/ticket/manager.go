// Package ticket handles support tickets: a private channel per ticket plus a
// durable row for admin bookkeeping.
package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store"
)

// Manager opens and closes support tickets.
type Manager struct {
	store store.Store
	pres  presenter.Presenter
	log   *slog.Logger
}

// NewManager wires a Manager.
func NewManager(st store.Store, pres presenter.Presenter, logger *slog.Logger) *Manager {
	return &Manager{store: st, pres: pres, log: logger}
}

// Open creates a private support channel for the user and records the ticket.
// The channel exists before the row; if the record write fails the channel is
// taken back down so the user is not left with an untracked ticket.
func (m *Manager) Open(ctx context.Context, userID int64) (*domain.Ticket, error) {
	open, err := m.store.HasOpenTicket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("%w: you already have an open ticket", domain.ErrValidation)
	}

	space, err := m.pres.OpenTicketSpace(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open ticket space: %w", err)
	}

	id, err := m.store.CreateTicket(ctx, userID, space.ChannelID)
	if err != nil {
		if cerr := m.pres.CloseSpace(ctx, space); cerr != nil {
			m.log.Warn("failed to close orphaned ticket space", "channel_id", space.ChannelID, "err", cerr)
		}
		return nil, err
	}

	m.log.Info("ticket opened", "ticket_id", id, "user", userID, "channel_id", space.ChannelID)
	return &domain.Ticket{
		ID:        id,
		UserID:    userID,
		ChannelID: space.ChannelID,
		Status:    domain.TicketOpen,
		CreatedAt: time.Now(),
	}, nil
}

// Close marks the ticket closed and tears down its channel. closedBy is the
// staff member or the ticket owner.
func (m *Manager) Close(ctx context.Context, channelID, closedBy int64) error {
	if err := m.store.CloseTicket(ctx, channelID, closedBy); err != nil {
		return err
	}
	if err := m.pres.CloseSpace(ctx, presenter.SpaceHandle{ChannelID: channelID}); err != nil {
		m.log.Warn("failed to close ticket space", "channel_id", channelID, "err", err)
	}
	m.log.Info("ticket closed", "channel_id", channelID, "by", closedBy)
	return nil
}

// Counts returns the open and total ticket counts.
func (m *Manager) Counts(ctx context.Context) (open, total int, err error) {
	return m.store.TicketCounts(ctx)
}
