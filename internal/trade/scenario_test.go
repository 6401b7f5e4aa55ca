package trade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/listing"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store/storetest"
	"github.com/scubahq/tradevault/internal/vouch"
)

type scenarioPrompter struct {
	prompted []int64
}

func (p *scenarioPrompter) EnqueueRatingPrompt(_ string, userID int64, _ domain.Role, _ domain.TradeSnapshot) error {
	p.prompted = append(p.prompted, userID)
	return nil
}

// Walks the whole happy path: a seller lists a Maxed Pure for 250m GP, a buyer
// starts a trade, both confirm, both rate, and the combined vouch publishes.
func TestFullTradeScenario(t *testing.T) {
	ctx := context.Background()
	st := &storetest.Store{}
	pres := presenter.NewLog(testLogger())
	notif := newRecordingNotifier()
	prompts := &scenarioPrompter{}

	listings := listing.NewManager(st, pres, notif, testLogger(), listing.Config{})
	vouches := vouch.NewCollector(st, pres, prompts, testLogger())
	trades := NewManager(st, pres, vouches, notif, testLogger(), 42, time.Millisecond)

	// Seller opens a listing and submits a screenshot.
	st.On("CountActiveListings", mock.Anything, sellerID).Return(0, nil)
	st.On("EnsureUser", mock.Anything, sellerID, "seller").Return(nil)
	st.On("SavePendingListing", mock.Anything, mock.Anything).Return(nil)

	p, err := listings.Begin(ctx, sellerID, "seller", "Main", "250m GP", "Maxed Pure")
	require.NoError(t, err)

	st.On("GetPendingListing", mock.Anything, sellerID).Return(p, nil)
	st.On("PromoteListing", mock.Anything, mock.Anything).Return(nil)

	l, err := listings.SubmitImages(ctx, sellerID, []string{"https://img/pure.png"})
	require.NoError(t, err)
	assert.Equal(t, "250m GP", l.Price)

	// Buyer starts a trade on the published listing.
	st.On("GetActiveListing", mock.Anything, l.ID).Return(l, nil)

	s, err := trades.Start(ctx, l.ID, buyerID)
	require.NoError(t, err)

	// Both parties confirm; the trade finalizes and prompts both for ratings.
	st.On("RecordSale", mock.Anything, sellerID).Return(nil).Once()
	st.On("RecordPurchase", mock.Anything, buyerID).Return(nil).Once()
	st.On("SaveTradeRecord", mock.Anything, mock.Anything).Return(nil).Once()
	st.On("DeleteActiveListing", mock.Anything, l.ID).Return(nil).Once()

	completed, err := trades.Confirm(ctx, s, buyerID, false)
	require.NoError(t, err)
	assert.False(t, completed)

	completed, err = trades.Confirm(ctx, s, sellerID, false)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.ElementsMatch(t, []int64{buyerID, sellerID}, prompts.prompted)

	// Buyer rates first; the pair stays pending.
	st.On("HasPublishedVouches", mock.Anything, s.ID).Return(false, nil)
	st.On("SubmitPendingVouch", mock.Anything, mock.Anything).Return(nil)
	st.On("GetPendingVouches", mock.Anything, s.ID).Return(map[domain.Role]*domain.PendingVouch{
		domain.RoleBuyer: {TradeID: s.ID, Role: domain.RoleBuyer, RaterID: buyerID, RatedID: sellerID, Rating: 5},
	}, nil).Once()

	published, err := vouches.SubmitRating(ctx, s.ID, domain.RoleBuyer, buyerID, sellerID, 5, "smooth trade")
	require.NoError(t, err)
	assert.False(t, published)

	// Seller rates; the pair completes and publishes exactly once.
	st.On("GetPendingVouches", mock.Anything, s.ID).Return(map[domain.Role]*domain.PendingVouch{
		domain.RoleBuyer:  {TradeID: s.ID, Role: domain.RoleBuyer, RaterID: buyerID, RatedID: sellerID, Rating: 5},
		domain.RoleSeller: {TradeID: s.ID, Role: domain.RoleSeller, RaterID: sellerID, RatedID: buyerID, Rating: 4},
	}, nil).Once()
	st.On("CompleteVouchPair", mock.Anything, s.ID).Return([]domain.Vouch{
		{ID: 1, TradeID: s.ID, Role: domain.RoleBuyer, RaterID: buyerID, RatedID: sellerID, Rating: 5},
		{ID: 2, TradeID: s.ID, Role: domain.RoleSeller, RaterID: sellerID, RatedID: buyerID, Rating: 4},
	}, nil).Once()
	st.On("GetTradeRecord", mock.Anything, s.ID).Return(&domain.TradeRecord{
		TradeID: s.ID, BuyerID: buyerID, SellerID: sellerID,
		AccountType: "Main", Price: "250m GP", Description: "Maxed Pure",
	}, nil)

	published, err = vouches.SubmitRating(ctx, s.ID, domain.RoleSeller, sellerID, buyerID, 4, "fast payment")
	require.NoError(t, err)
	assert.True(t, published)

	st.AssertExpectations(t)
}
