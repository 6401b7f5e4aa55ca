// Package storetest provides a testify mock of the Store interface for
// manager-level tests.
package storetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/store"
)

// Store is a mock store.Store.
type Store struct {
	mock.Mock
}

var _ store.Store = (*Store)(nil)

func (m *Store) EnsureUser(ctx context.Context, userID int64, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

func (m *Store) GetStats(ctx context.Context, userID int64) (*domain.Reputation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reputation), args.Error(1)
}

func (m *Store) RecordSale(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Store) RecordPurchase(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Store) SavePendingListing(ctx context.Context, p *domain.PendingListing) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *Store) GetPendingListing(ctx context.Context, ownerID int64) (*domain.PendingListing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingListing), args.Error(1)
}

func (m *Store) DeletePendingListing(ctx context.Context, ownerID int64) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *Store) PromoteListing(ctx context.Context, l *domain.ActiveListing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *Store) GetActiveListing(ctx context.Context, listingID string) (*domain.ActiveListing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActiveListing), args.Error(1)
}

func (m *Store) UpdateActiveListing(ctx context.Context, listingID string, f domain.ListingFields) error {
	args := m.Called(ctx, listingID, f)
	return args.Error(0)
}

func (m *Store) DeleteActiveListing(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

func (m *Store) CountActiveListings(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *Store) ListUserListings(ctx context.Context, ownerID int64) ([]domain.ActiveListing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActiveListing), args.Error(1)
}

func (m *Store) SweepExpiredPendingListings(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *Store) SweepOldActiveListings(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) SaveTradeRecord(ctx context.Context, r *domain.TradeRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *Store) GetTradeRecord(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TradeRecord), args.Error(1)
}

func (m *Store) SubmitPendingVouch(ctx context.Context, v *domain.PendingVouch) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *Store) GetPendingVouches(ctx context.Context, tradeID string) (map[domain.Role]*domain.PendingVouch, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Role]*domain.PendingVouch), args.Error(1)
}

func (m *Store) CompleteVouchPair(ctx context.Context, tradeID string) ([]domain.Vouch, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vouch), args.Error(1)
}

func (m *Store) HasPublishedVouches(ctx context.Context, tradeID string) (bool, error) {
	args := m.Called(ctx, tradeID)
	return args.Bool(0), args.Error(1)
}

func (m *Store) DeletePendingVouches(ctx context.Context, tradeID string) error {
	args := m.Called(ctx, tradeID)
	return args.Error(0)
}

func (m *Store) ListVouchesForUser(ctx context.Context, ratedID int64, limit int) ([]domain.Vouch, error) {
	args := m.Called(ctx, ratedID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vouch), args.Error(1)
}

func (m *Store) DeleteVouchesByTrade(ctx context.Context, tradeID string) (int64, error) {
	args := m.Called(ctx, tradeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) DeleteVouchesByPair(ctx context.Context, raterID, ratedID int64) (int64, error) {
	args := m.Called(ctx, raterID, ratedID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) ClearUserVouches(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Store) ResetUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Store) CreateTicket(ctx context.Context, userID, channelID int64) (int64, error) {
	args := m.Called(ctx, userID, channelID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) HasOpenTicket(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *Store) CloseTicket(ctx context.Context, channelID, closedBy int64) error {
	args := m.Called(ctx, channelID, closedBy)
	return args.Error(0)
}

func (m *Store) TicketCounts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *Store) Counts(ctx context.Context) (store.Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.Counts), args.Error(1)
}
