// Package listing moves a seller from "intent to sell" to a publicly visible
// listing and back out: pending submission, screenshot window, publication,
// edits, cancellation and expiry sweeps.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store"
)

// Notifier delivers out-of-band user notices through the notification queue.
type Notifier interface {
	EnqueueUserNotice(userID int64, message string) error
}

// Config tunes the lifecycle limits.
type Config struct {
	// Quota is the max simultaneous active listings per owner.
	Quota int
	// PendingTTL is the screenshot-submission window.
	PendingTTL time.Duration
	// MaxListingAge is the horizon after which active listings are swept.
	MaxListingAge time.Duration
}

// DefaultConfig matches the bot's production limits.
func DefaultConfig() Config {
	return Config{Quota: 3, PendingTTL: 10 * time.Minute, MaxListingAge: 72 * time.Hour}
}

// Manager is the listing lifecycle manager.
type Manager struct {
	store store.Store
	pres  presenter.Presenter
	notif Notifier
	log   *slog.Logger
	cfg   Config

	now func() time.Time
}

// NewManager wires a Manager. Zero config fields fall back to defaults.
func NewManager(st store.Store, pres presenter.Presenter, notif Notifier, logger *slog.Logger, cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.Quota <= 0 {
		cfg.Quota = def.Quota
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = def.PendingTTL
	}
	if cfg.MaxListingAge <= 0 {
		cfg.MaxListingAge = def.MaxListingAge
	}
	return &Manager{store: st, pres: pres, notif: notif, log: logger, cfg: cfg, now: time.Now}
}

// Begin validates the sale details and opens the screenshot-submission
// window. The owner is told to send 1-3 images before it closes.
func (m *Manager) Begin(ctx context.Context, ownerID int64, username, accountType, price, description string) (*domain.PendingListing, error) {
	if strings.TrimSpace(accountType) == "" {
		return nil, fmt.Errorf("%w: account type is required", domain.ErrValidation)
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}

	n, err := m.store.CountActiveListings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if n >= m.cfg.Quota {
		return nil, fmt.Errorf("%w: you already have %d active listings", domain.ErrQuotaExceeded, n)
	}

	if err := m.store.EnsureUser(ctx, ownerID, username); err != nil {
		return nil, err
	}

	now := m.now()
	p := &domain.PendingListing{
		OwnerID:     ownerID,
		AccountType: accountType,
		Price:       price,
		Description: description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.cfg.PendingTTL),
	}
	if err := m.store.SavePendingListing(ctx, p); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Please send 1-3 screenshots of the account within %d minutes to publish your listing.",
		int(m.cfg.PendingTTL.Minutes()))
	if err := m.notif.EnqueueUserNotice(ownerID, msg); err != nil {
		m.log.Warn("failed to enqueue listing instructions", "owner", ownerID, "err", err)
	}
	return p, nil
}

// SubmitImages promotes the owner's pending listing into a published active
// listing. This is the subsystem's single state transition; once it succeeds
// the pending row is gone, so a second submission fails with
// ErrNoPendingListing rather than publishing twice.
func (m *Manager) SubmitImages(ctx context.Context, ownerID int64, imageURLs []string) (*domain.ActiveListing, error) {
	if len(imageURLs) == 0 {
		return nil, fmt.Errorf("%w: at least one screenshot is required", domain.ErrValidation)
	}
	if len(imageURLs) > 3 {
		return nil, fmt.Errorf("%w: at most 3 screenshots are allowed", domain.ErrTooManyImages)
	}

	p, err := m.store.GetPendingListing(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNoPendingListing
	}
	now := m.now()
	if p.Expired(now) {
		if err := m.store.DeletePendingListing(ctx, ownerID); err != nil {
			m.log.Warn("failed to clear expired pending listing", "owner", ownerID, "err", err)
		}
		return nil, fmt.Errorf("%w: the screenshot window closed, start the listing again", domain.ErrExpired)
	}

	l := &domain.ActiveListing{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		AccountType: p.AccountType,
		Price:       p.Price,
		Description: p.Description,
		ImageURLs:   imageURLs,
		CreatedAt:   now,
	}

	h, err := m.pres.PublishListing(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("publish listing: %w", err)
	}
	l.ChannelID = h.ChannelID
	l.MessageID = h.MessageID
	l.ExtraMessageIDs = h.ExtraMessageIDs

	if err := m.store.PromoteListing(ctx, l); err != nil {
		// Lost a race with expiry or a concurrent submission; take the
		// published representation back down.
		if rerr := m.pres.RetractListing(ctx, h); rerr != nil {
			m.log.Warn("failed to retract orphaned listing", "listing_id", l.ID, "err", rerr)
		}
		return nil, err
	}

	m.log.Info("listing published", "listing_id", l.ID, "owner", ownerID, "price", l.Price)
	return l, nil
}

// Edit applies validated field changes to the requester's own listing. The id
// and creation time never change.
func (m *Manager) Edit(ctx context.Context, listingID string, requesterID int64, f domain.ListingFields) (*domain.ActiveListing, error) {
	l, err := m.store.GetActiveListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the seller can edit this listing", domain.ErrForbidden)
	}
	if f.Price != nil {
		if err := ValidatePrice(*f.Price); err != nil {
			return nil, err
		}
	}
	if f.ImageURLs != nil && len(f.ImageURLs) > 3 {
		return nil, fmt.Errorf("%w: at most 3 screenshots are allowed", domain.ErrTooManyImages)
	}

	if err := m.store.UpdateActiveListing(ctx, listingID, f); err != nil {
		return nil, err
	}
	l, err = m.store.GetActiveListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	h := presenter.ListingHandle{ChannelID: l.ChannelID, MessageID: l.MessageID, ExtraMessageIDs: l.ExtraMessageIDs}
	if err := m.pres.UpdateListing(ctx, h, l); err != nil {
		m.log.Warn("failed to refresh published listing", "listing_id", listingID, "err", err)
	}
	return l, nil
}

// Cancel removes the requester's own listing and retracts its published
// representation.
func (m *Manager) Cancel(ctx context.Context, listingID string, requesterID int64) error {
	l, err := m.store.GetActiveListing(ctx, listingID)
	if err != nil {
		return err
	}
	if l.OwnerID != requesterID {
		return fmt.Errorf("%w: only the seller can cancel this listing", domain.ErrForbidden)
	}

	h := presenter.ListingHandle{ChannelID: l.ChannelID, MessageID: l.MessageID, ExtraMessageIDs: l.ExtraMessageIDs}
	if err := m.pres.RetractListing(ctx, h); err != nil {
		m.log.Warn("failed to retract listing", "listing_id", listingID, "err", err)
	}
	return m.store.DeleteActiveListing(ctx, listingID)
}

// SweepExpired runs the two expiry sweeps: pending listings past their
// screenshot window (owners notified) and active listings past the age
// horizon (discarded silently). Safe to call repeatedly; records already
// removed are simply absent from the next sweep.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) (pendingRemoved, activeRemoved int64, err error) {
	owners, err := m.store.SweepExpiredPendingListings(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	for _, owner := range owners {
		if nerr := m.notif.EnqueueUserNotice(owner, "Your listing expired before any screenshots arrived. Start again when you're ready."); nerr != nil {
			m.log.Warn("failed to notify owner of expired listing", "owner", owner, "err", nerr)
		}
	}

	activeRemoved, err = m.store.SweepOldActiveListings(ctx, now.Add(-m.cfg.MaxListingAge))
	if err != nil {
		return int64(len(owners)), 0, err
	}

	if len(owners) > 0 || activeRemoved > 0 {
		m.log.Info("listing sweep", "pending_removed", len(owners), "active_removed", activeRemoved)
	}
	return int64(len(owners)), activeRemoved, nil
}
