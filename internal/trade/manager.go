// Package trade coordinates the private negotiation between a buyer and a
// listing's owner: a restricted space, a dual-confirmation completion
// protocol, and exactly-once finalization into trade history and ratings.
package trade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store"
)

// RatingRequester kicks off vouch collection for both parties after a trade
// completes.
type RatingRequester interface {
	RequestRatings(ctx context.Context, tradeID string, buyerID, sellerID int64, snap domain.TradeSnapshot) error
}

// Notifier delivers out-of-band user notices.
type Notifier interface {
	EnqueueUserNotice(userID int64, message string) error
}

// Manager owns the live trade sessions.
type Manager struct {
	store   store.Store
	pres    presenter.Presenter
	vouches RatingRequester
	notif   Notifier
	log     *slog.Logger

	overseerRoleID int64
	// grace is how long the terminal announcement stays readable before the
	// negotiation space is destroyed.
	grace time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

// NewManager wires a Manager. grace <= 0 falls back to 5 seconds.
func NewManager(st store.Store, pres presenter.Presenter, vouches RatingRequester, notif Notifier, logger *slog.Logger, overseerRoleID int64, grace time.Duration) *Manager {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Manager{
		store:          st,
		pres:           pres,
		vouches:        vouches,
		notif:          notif,
		log:            logger,
		overseerRoleID: overseerRoleID,
		grace:          grace,
		sessions:       make(map[string]*Session),
		now:            time.Now,
	}
}

// Start spawns a trade session for a buyer acting on a listing: snapshots the
// listing fields, opens a restricted negotiation space for buyer, seller and
// the overseer role, and posts the confirm/cancel controls.
func (m *Manager) Start(ctx context.Context, listingID string, buyerID int64) (*Session, error) {
	l, err := m.store.GetActiveListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if buyerID == l.OwnerID {
		return nil, domain.ErrSelfTrade
	}

	space, err := m.pres.OpenNegotiationSpace(ctx, buyerID, l.OwnerID, m.overseerRoleID)
	if err != nil {
		return nil, fmt.Errorf("open negotiation space: %w", err)
	}
	if err := m.pres.PostControls(ctx, space, presenter.ControlsTrade); err != nil {
		if cerr := m.pres.CloseSpace(ctx, space); cerr != nil {
			m.log.Warn("failed to close space after controls error", "channel_id", space.ChannelID, "err", cerr)
		}
		return nil, fmt.Errorf("post trade controls: %w", err)
	}

	s := &Session{
		ID:       uuid.New().String(),
		BuyerID:  buyerID,
		SellerID: l.OwnerID,
		Snapshot: domain.TradeSnapshot{
			ListingID:   l.ID,
			AccountType: l.AccountType,
			Price:       l.Price,
			Description: l.Description,
		},
		Space:     space,
		Listing:   presenter.ListingHandle{ChannelID: l.ChannelID, MessageID: l.MessageID, ExtraMessageIDs: l.ExtraMessageIDs},
		CreatedAt: m.now(),
		state:     StateNegotiating,
		confirmed: make(map[int64]struct{}),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.log.Info("trade session started",
		"trade_id", s.ID, "buyer", buyerID, "seller", l.OwnerID, "listing_id", listingID)
	return s, nil
}

// Get returns a live session by id.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// authorize applies the shared rule for confirm and cancel: a trade party or
// an overseer, nobody else.
func (m *Manager) authorize(s *Session, actorID int64, overseer bool) error {
	if s.isParty(actorID) {
		return nil
	}
	if overseer {
		return nil
	}
	return fmt.Errorf("%w: you are not part of this trade", domain.ErrUnauthorized)
}

// Confirm marks the actor's side of the trade as complete. Re-confirmation
// by the same actor is a no-op. When both the buyer and the seller have
// confirmed, the trade finalizes exactly once; until then the caller should
// tell the actor they are waiting on the other party. The confirmed-set
// update and the completeness check run under the session lock, so two
// near-simultaneous confirmations cannot both see "waiting".
func (m *Manager) Confirm(ctx context.Context, s *Session, actorID int64, overseer bool) (completed bool, err error) {
	if err := m.authorize(s, actorID, overseer); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNegotiating {
		return false, domain.ErrSessionClosed
	}

	// Only party ids enter the confirmed set; an overseer cannot stand in
	// for a party's confirmation.
	if s.isParty(actorID) {
		s.confirmed[actorID] = struct{}{}
	} else {
		m.log.Info("overseer confirmation", "trade_id", s.ID, "overseer", actorID)
	}

	if !s.bothConfirmed() {
		return false, nil
	}

	// A store failure here must leave the session Negotiating rather than
	// silently completing without a durable record.
	if err := m.finalize(ctx, s); err != nil {
		return false, err
	}
	s.state = StateCompleted
	m.remove(s.ID)

	go m.teardown(s, "Both parties marked the trade as complete. This channel will close shortly.")
	return true, nil
}

// Cancel unilaterally ends the trade. It always wins over partial
// completion: prior confirmations do not matter.
func (m *Manager) Cancel(ctx context.Context, s *Session, actorID int64, overseer bool) error {
	if err := m.authorize(s, actorID, overseer); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != StateNegotiating {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if overseer && !s.isParty(actorID) {
		m.log.Info("overseer cancellation", "trade_id", s.ID, "overseer", actorID)
	}
	s.state = StateCanceled
	s.mu.Unlock()
	m.remove(s.ID)

	for _, party := range []int64{s.BuyerID, s.SellerID} {
		if err := m.notif.EnqueueUserNotice(party, "Your trade was canceled. No vouch request will be sent."); err != nil {
			m.log.Warn("failed to notify party of cancellation", "trade_id", s.ID, "user", party, "err", err)
		}
	}

	m.log.Info("trade session canceled", "trade_id", s.ID, "by", actorID)
	go m.teardown(s, "The trade was canceled. This channel will close shortly.")
	return nil
}

// finalize runs with the session lock held. Step order matters: the durable
// trade-history row is written before any destructive action, so a failure
// partway through leaves a trail for manual reconciliation.
func (m *Manager) finalize(ctx context.Context, s *Session) error {
	if err := m.store.RecordSale(ctx, s.SellerID); err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	if err := m.store.RecordPurchase(ctx, s.BuyerID); err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}

	rec := &domain.TradeRecord{
		TradeID:     s.ID,
		BuyerID:     s.BuyerID,
		SellerID:    s.SellerID,
		AccountType: s.Snapshot.AccountType,
		Price:       s.Snapshot.Price,
		Description: s.Snapshot.Description,
		CompletedAt: m.now(),
		ChannelID:   s.Space.ChannelID,
	}
	if err := m.store.SaveTradeRecord(ctx, rec); err != nil {
		return fmt.Errorf("save trade history: %w", err)
	}

	// History is durable from here on; the remaining steps are cleanup and
	// must not fail the completion.
	if err := m.pres.RetractListing(ctx, s.Listing); err != nil {
		m.log.Warn("failed to retract sold listing", "trade_id", s.ID, "err", err)
	}
	if err := m.store.DeleteActiveListing(ctx, s.Snapshot.ListingID); err != nil {
		m.log.Warn("failed to delete sold listing record", "trade_id", s.ID, "listing_id", s.Snapshot.ListingID, "err", err)
	}

	if err := m.vouches.RequestRatings(ctx, s.ID, s.BuyerID, s.SellerID, s.Snapshot); err != nil {
		m.log.Warn("failed to request ratings", "trade_id", s.ID, "err", err)
	}

	m.log.Info("trade finalized", "trade_id", s.ID, "buyer", s.BuyerID, "seller", s.SellerID)
	return nil
}

// teardown announces the terminal status, waits long enough for both parties
// to read it, then destroys the negotiation space. A space that is already
// gone is logged, not escalated.
func (m *Manager) teardown(s *Session, message string) {
	ctx := context.Background()
	if err := m.pres.AnnounceOutcome(ctx, s.Space, message); err != nil {
		m.log.Warn("failed to announce trade outcome", "trade_id", s.ID, "err", err)
	}
	time.Sleep(m.grace)
	if err := m.pres.CloseSpace(ctx, s.Space); err != nil {
		m.log.Warn("failed to close negotiation space", "trade_id", s.ID, "channel_id", s.Space.ChannelID, "err", err)
	}
}
