package trade

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store/storetest"
)

const (
	buyerID  = int64(100)
	sellerID = int64(200)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recordingRequester struct {
	requests []string
}

func (r *recordingRequester) RequestRatings(_ context.Context, tradeID string, _, _ int64, _ domain.TradeSnapshot) error {
	r.requests = append(r.requests, tradeID)
	return nil
}

type recordingNotifier struct {
	notices map[int64][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notices: make(map[int64][]string)}
}

func (n *recordingNotifier) EnqueueUserNotice(userID int64, message string) error {
	n.notices[userID] = append(n.notices[userID], message)
	return nil
}

func sampleListing() *domain.ActiveListing {
	return &domain.ActiveListing{
		ID:          "lst-1",
		OwnerID:     sellerID,
		AccountType: "Maxed Main",
		Price:       "$150",
		Description: "desc",
		ChannelID:   555,
		MessageID:   556,
	}
}

func newTestManager(st *storetest.Store) (*Manager, *recordingRequester, *recordingNotifier) {
	req := &recordingRequester{}
	notif := newRecordingNotifier()
	m := NewManager(st, presenter.NewLog(testLogger()), req, notif, testLogger(), 42, time.Millisecond)
	return m, req, notif
}

func startSession(t *testing.T, m *Manager, st *storetest.Store) *Session {
	t.Helper()
	st.On("GetActiveListing", mock.Anything, "lst-1").Return(sampleListing(), nil)
	s, err := m.Start(context.Background(), "lst-1", buyerID)
	require.NoError(t, err)
	return s
}

func TestStartRejectsSelfTrade(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)

	st.On("GetActiveListing", mock.Anything, "lst-1").Return(sampleListing(), nil)

	_, err := m.Start(context.Background(), "lst-1", sellerID)
	assert.ErrorIs(t, err, domain.ErrSelfTrade)
}

func TestStartSnapshotsListing(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)

	s := startSession(t, m, st)
	assert.Equal(t, buyerID, s.BuyerID)
	assert.Equal(t, sellerID, s.SellerID)
	assert.Equal(t, "Maxed Main", s.Snapshot.AccountType)
	assert.Equal(t, StateNegotiating, s.State())

	got, ok := m.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestConfirmSingleSideWaits(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	completed, err := m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.True(t, s.ConfirmedBy(buyerID))
	assert.Equal(t, StateNegotiating, s.State())
	st.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
}

func TestReconfirmSameActorStillWaits(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	for i := 0; i < 3; i++ {
		completed, err := m.Confirm(context.Background(), s, buyerID, false)
		require.NoError(t, err)
		assert.False(t, completed)
	}
	st.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
}

func TestConfirmBothFinalizesOnce(t *testing.T) {
	st := &storetest.Store{}
	m, req, _ := newTestManager(st)
	s := startSession(t, m, st)

	st.On("RecordSale", mock.Anything, sellerID).Return(nil).Once()
	st.On("RecordPurchase", mock.Anything, buyerID).Return(nil).Once()
	st.On("SaveTradeRecord", mock.Anything, mock.MatchedBy(func(r *domain.TradeRecord) bool {
		return r.TradeID == s.ID && r.BuyerID == buyerID && r.SellerID == sellerID
	})).Return(nil).Once()
	st.On("DeleteActiveListing", mock.Anything, "lst-1").Return(nil).Once()

	completed, err := m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)
	assert.False(t, completed)

	completed, err = m.Confirm(context.Background(), s, sellerID, false)
	require.NoError(t, err)
	assert.True(t, completed)

	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, []string{s.ID}, req.requests)

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	st.AssertExpectations(t)
}

func TestConfirmSellerFirstFinalizesOnce(t *testing.T) {
	st := &storetest.Store{}
	m, req, _ := newTestManager(st)
	s := startSession(t, m, st)

	st.On("RecordSale", mock.Anything, sellerID).Return(nil).Once()
	st.On("RecordPurchase", mock.Anything, buyerID).Return(nil).Once()
	st.On("SaveTradeRecord", mock.Anything, mock.MatchedBy(func(r *domain.TradeRecord) bool {
		return r.TradeID == s.ID && r.BuyerID == buyerID && r.SellerID == sellerID
	})).Return(nil).Once()
	st.On("DeleteActiveListing", mock.Anything, "lst-1").Return(nil).Once()

	completed, err := m.Confirm(context.Background(), s, sellerID, false)
	require.NoError(t, err)
	assert.False(t, completed)

	completed, err = m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)
	assert.True(t, completed)

	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, []string{s.ID}, req.requests)
	st.AssertExpectations(t)
}

func TestConfirmAfterCompletionFails(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	st.On("RecordSale", mock.Anything, sellerID).Return(nil)
	st.On("RecordPurchase", mock.Anything, buyerID).Return(nil)
	st.On("SaveTradeRecord", mock.Anything, mock.Anything).Return(nil)
	st.On("DeleteActiveListing", mock.Anything, "lst-1").Return(nil)

	_, err := m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)
	_, err = m.Confirm(context.Background(), s, sellerID, false)
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), s, buyerID, false)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestConfirmRejectsOutsiders(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	_, err := m.Confirm(context.Background(), s, 9999, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = m.Cancel(context.Background(), s, 9999, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOverseerConfirmAloneDoesNotComplete(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	completed, err := m.Confirm(context.Background(), s, 9999, true)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.False(t, s.ConfirmedBy(9999))
	assert.Equal(t, StateNegotiating, s.State())
	st.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
}

func TestOverseerConfirmDoesNotStandInForParty(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	st.On("RecordSale", mock.Anything, sellerID).Return(nil).Once()
	st.On("RecordPurchase", mock.Anything, buyerID).Return(nil).Once()
	st.On("SaveTradeRecord", mock.Anything, mock.Anything).Return(nil).Once()
	st.On("DeleteActiveListing", mock.Anything, "lst-1").Return(nil).Once()

	// An overseer nod plus one party is not enough.
	_, err := m.Confirm(context.Background(), s, 9999, true)
	require.NoError(t, err)
	completed, err := m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, StateNegotiating, s.State())

	// Both real parties still complete the trade.
	completed, err = m.Confirm(context.Background(), s, sellerID, false)
	require.NoError(t, err)
	assert.True(t, completed)
	st.AssertExpectations(t)
}

func TestCancelWinsOverPartialConfirm(t *testing.T) {
	st := &storetest.Store{}
	m, _, notif := newTestManager(st)
	s := startSession(t, m, st)

	_, err := m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)

	err = m.Cancel(context.Background(), s, sellerID, false)
	require.NoError(t, err)
	assert.Equal(t, StateCanceled, s.State())

	// Both parties are told; neither side gets a vouch request.
	assert.Len(t, notif.notices[buyerID], 1)
	assert.Len(t, notif.notices[sellerID], 1)

	_, err = m.Confirm(context.Background(), s, sellerID, false)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	st.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
}

func TestCancelTwiceFails(t *testing.T) {
	st := &storetest.Store{}
	m, _, _ := newTestManager(st)
	s := startSession(t, m, st)

	require.NoError(t, m.Cancel(context.Background(), s, buyerID, false))
	assert.ErrorIs(t, m.Cancel(context.Background(), s, buyerID, false), domain.ErrSessionClosed)
}

func TestFinalizeFailureKeepsSessionOpen(t *testing.T) {
	st := &storetest.Store{}
	m, req, _ := newTestManager(st)
	s := startSession(t, m, st)

	st.On("RecordSale", mock.Anything, sellerID).Return(nil)
	st.On("RecordPurchase", mock.Anything, buyerID).Return(nil)
	st.On("SaveTradeRecord", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	st.On("SaveTradeRecord", mock.Anything, mock.Anything).Return(nil)
	st.On("DeleteActiveListing", mock.Anything, "lst-1").Return(nil)

	_, err := m.Confirm(context.Background(), s, buyerID, false)
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), s, sellerID, false)
	require.Error(t, err)
	assert.Equal(t, StateNegotiating, s.State())
	assert.Empty(t, req.requests)

	// Confirmations survive the failure, so a retry completes the trade.
	completed, err := m.Confirm(context.Background(), s, sellerID, false)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, []string{s.ID}, req.requests)
}
