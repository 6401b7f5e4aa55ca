// Package store is the persistence layer: user reputation, listings, trade
// history, vouch pairs and support tickets over Postgres.
package store

import (
	"context"
	"time"

	"github.com/scubahq/tradevault/internal/db"
	"github.com/scubahq/tradevault/internal/domain"
)

// Counts is the aggregate snapshot served by the admin stats endpoint.
type Counts struct {
	Users          int `json:"users"`
	ActiveListings int `json:"active_listings"`
	Trades         int `json:"trades"`
	Vouches        int `json:"vouches"`
	OpenTickets    int `json:"open_tickets"`
}

// Store is the durable record interface the managers run against.
type Store interface {
	// Reputation
	EnsureUser(ctx context.Context, userID int64, username string) error
	GetStats(ctx context.Context, userID int64) (*domain.Reputation, error)
	RecordSale(ctx context.Context, userID int64) error
	RecordPurchase(ctx context.Context, userID int64) error

	// Pending listings
	SavePendingListing(ctx context.Context, p *domain.PendingListing) error
	GetPendingListing(ctx context.Context, ownerID int64) (*domain.PendingListing, error)
	DeletePendingListing(ctx context.Context, ownerID int64) error

	// Active listings
	PromoteListing(ctx context.Context, l *domain.ActiveListing) error
	GetActiveListing(ctx context.Context, listingID string) (*domain.ActiveListing, error)
	UpdateActiveListing(ctx context.Context, listingID string, f domain.ListingFields) error
	DeleteActiveListing(ctx context.Context, listingID string) error
	CountActiveListings(ctx context.Context, ownerID int64) (int, error)
	ListUserListings(ctx context.Context, ownerID int64) ([]domain.ActiveListing, error)
	SweepExpiredPendingListings(ctx context.Context, now time.Time) ([]int64, error)
	SweepOldActiveListings(ctx context.Context, cutoff time.Time) (int64, error)

	// Trade history
	SaveTradeRecord(ctx context.Context, r *domain.TradeRecord) error
	GetTradeRecord(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// Vouches
	SubmitPendingVouch(ctx context.Context, v *domain.PendingVouch) error
	GetPendingVouches(ctx context.Context, tradeID string) (map[domain.Role]*domain.PendingVouch, error)
	CompleteVouchPair(ctx context.Context, tradeID string) ([]domain.Vouch, error)
	HasPublishedVouches(ctx context.Context, tradeID string) (bool, error)
	DeletePendingVouches(ctx context.Context, tradeID string) error
	ListVouchesForUser(ctx context.Context, ratedID int64, limit int) ([]domain.Vouch, error)
	DeleteVouchesByTrade(ctx context.Context, tradeID string) (int64, error)
	DeleteVouchesByPair(ctx context.Context, raterID, ratedID int64) (int64, error)
	ClearUserVouches(ctx context.Context, userID int64) error
	ResetUser(ctx context.Context, userID int64) error

	// Tickets
	CreateTicket(ctx context.Context, userID, channelID int64) (int64, error)
	HasOpenTicket(ctx context.Context, userID int64) (bool, error)
	CloseTicket(ctx context.Context, channelID, closedBy int64) error
	TicketCounts(ctx context.Context) (open, total int, err error)

	// Observability
	Counts(ctx context.Context) (Counts, error)
}

// Postgres implements Store over a pgx pool (or a pgxmock pool in tests).
type Postgres struct {
	db db.Querier
}

// New returns a Postgres-backed store.
func New(q db.Querier) *Postgres {
	return &Postgres{db: q}
}

var _ Store = (*Postgres)(nil)
