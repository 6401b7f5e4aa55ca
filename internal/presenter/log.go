package presenter

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/scubahq/tradevault/internal/domain"
)

// Log is a Presenter that only logs. It stands in for the platform adapter
// in local runs and tests, handing out synthetic channel/message ids.
type Log struct {
	log    *slog.Logger
	nextID atomic.Int64
}

// NewLog returns a logging presenter.
func NewLog(logger *slog.Logger) *Log {
	l := &Log{log: logger}
	l.nextID.Store(1000)
	return l
}

var _ Presenter = (*Log)(nil)

func (p *Log) id() int64 { return p.nextID.Add(1) }

func (p *Log) PublishListing(_ context.Context, l *domain.ActiveListing) (ListingHandle, error) {
	h := ListingHandle{ChannelID: p.id(), MessageID: p.id()}
	for range l.ImageURLs[1:] {
		h.ExtraMessageIDs = append(h.ExtraMessageIDs, p.id())
	}
	p.log.Info("publish listing",
		"listing_id", l.ID, "owner", l.OwnerID, "account_type", l.AccountType,
		"price", l.Price, "images", len(l.ImageURLs))
	return h, nil
}

func (p *Log) UpdateListing(_ context.Context, h ListingHandle, l *domain.ActiveListing) error {
	p.log.Info("update listing", "listing_id", l.ID, "message_id", h.MessageID)
	return nil
}

func (p *Log) RetractListing(_ context.Context, h ListingHandle) error {
	p.log.Info("retract listing", "channel_id", h.ChannelID, "message_id", h.MessageID)
	return nil
}

func (p *Log) OpenNegotiationSpace(_ context.Context, buyerID, sellerID, overseerRoleID int64) (SpaceHandle, error) {
	h := SpaceHandle{ChannelID: p.id()}
	p.log.Info("open negotiation space",
		"channel_id", h.ChannelID, "buyer", buyerID, "seller", sellerID, "overseer_role", overseerRoleID)
	return h, nil
}

func (p *Log) PostControls(_ context.Context, h SpaceHandle, kind string) error {
	p.log.Info("post controls", "channel_id", h.ChannelID, "kind", kind)
	return nil
}

func (p *Log) AnnounceOutcome(_ context.Context, h SpaceHandle, message string) error {
	p.log.Info("announce outcome", "channel_id", h.ChannelID, "message", message)
	return nil
}

func (p *Log) CloseSpace(_ context.Context, h SpaceHandle) error {
	p.log.Info("close space", "channel_id", h.ChannelID)
	return nil
}

func (p *Log) OpenTicketSpace(_ context.Context, userID int64) (SpaceHandle, error) {
	h := SpaceHandle{ChannelID: p.id()}
	p.log.Info("open ticket space", "channel_id", h.ChannelID, "user", userID)
	return h, nil
}

func (p *Log) NotifyUser(_ context.Context, userID int64, message string) error {
	p.log.Info("notify user", "user", userID, "message", message)
	return nil
}

func (p *Log) PromptRating(_ context.Context, userID int64, tradeID string, role domain.Role, snap domain.TradeSnapshot) error {
	p.log.Info("prompt rating", "user", userID, "trade_id", tradeID, "role", role, "account_type", snap.AccountType)
	return nil
}

func (p *Log) PublishVouch(_ context.Context, v domain.CombinedVouch) error {
	p.log.Info("publish vouch",
		"trade_id", v.TradeID,
		"buyer_rating", v.Buyer.Rating, "seller_rating", v.Seller.Rating,
		"account_type", v.Snapshot.AccountType, "price", v.Snapshot.Price)
	return nil
}
