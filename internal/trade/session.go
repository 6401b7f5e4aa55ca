package trade

import (
	"sync"
	"time"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
)

// State is the trade session lifecycle tag. Negotiating is initial; both
// terminal states lead to teardown of the negotiation space.
type State string

const (
	StateNegotiating State = "negotiating"
	StateCompleted   State = "completed"
	StateCanceled    State = "canceled"
)

// Session is the working state of one buyer/seller negotiation. It is not
// durable; the durable output of a completed session is its trade-history
// row. All mutation happens under mu so that two near-simultaneous
// confirmations cannot both conclude "waiting".
type Session struct {
	ID       string
	BuyerID  int64
	SellerID int64
	// Snapshot freezes the listing fields at trade start; later edits to the
	// listing do not alter an in-flight trade.
	Snapshot  domain.TradeSnapshot
	Space     presenter.SpaceHandle
	Listing   presenter.ListingHandle
	CreatedAt time.Time

	mu        sync.Mutex
	state     State
	confirmed map[int64]struct{}
}

// State returns the current lifecycle tag.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConfirmedBy reports whether the given party has confirmed completion.
func (s *Session) ConfirmedBy(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.confirmed[userID]
	return ok
}

// isParty reports whether the actor is the buyer or the seller.
func (s *Session) isParty(actorID int64) bool {
	return actorID == s.BuyerID || actorID == s.SellerID
}

// bothConfirmed must be called with mu held.
func (s *Session) bothConfirmed() bool {
	_, buyer := s.confirmed[s.BuyerID]
	_, seller := s.confirmed[s.SellerID]
	return buyer && seller
}
