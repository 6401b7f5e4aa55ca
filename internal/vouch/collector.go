// Package vouch gathers one rating per trade party, holds partial state
// until both sides respond, then publishes the paired review exactly once.
package vouch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store"
)

// Prompter schedules rating prompts with their own expiry; a party who never
// answers simply leaves the pair incomplete forever.
type Prompter interface {
	EnqueueRatingPrompt(tradeID string, userID int64, role domain.Role, snap domain.TradeSnapshot) error
}

// Collector pairs up two-sided trade ratings.
type Collector struct {
	store   store.Store
	pres    presenter.Presenter
	prompts Prompter
	log     *slog.Logger
}

// NewCollector wires a Collector.
func NewCollector(st store.Store, pres presenter.Presenter, prompts Prompter, logger *slog.Logger) *Collector {
	return &Collector{store: st, pres: pres, prompts: prompts, log: logger}
}

// SubmitRating upserts one role's rating for a trade. The rating lands on the
// rated party's reputation immediately, not at pair completion, so aggregates
// reflect ratings even if the counterpart never answers. A resubmission by
// the same role before the pair completes overwrites the earlier entry.
// Returns whether this submission completed and published the pair.
func (c *Collector) SubmitRating(ctx context.Context, tradeID string, role domain.Role, raterID, ratedID int64, stars int, comment string) (published bool, err error) {
	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown trade role %q", domain.ErrValidation, role)
	}
	if stars < 1 || stars > 5 {
		return false, domain.ErrInvalidRating
	}

	// A rating that arrives after the pair published must not recreate a
	// pending row or touch the aggregate a second time.
	done, err := c.store.HasPublishedVouches(ctx, tradeID)
	if err != nil {
		return false, err
	}
	if done {
		return false, fmt.Errorf("%w: ratings for this trade are already published", domain.ErrValidation)
	}

	v := &domain.PendingVouch{
		TradeID: tradeID,
		Role:    role,
		RaterID: raterID,
		RatedID: ratedID,
		Rating:  stars,
		Comment: comment,
	}
	if err := c.store.SubmitPendingVouch(ctx, v); err != nil {
		return false, err
	}

	pending, err := c.store.GetPendingVouches(ctx, tradeID)
	if err != nil {
		return false, err
	}
	if pending[domain.RoleBuyer] == nil || pending[domain.RoleSeller] == nil {
		return false, nil
	}
	return c.publish(ctx, tradeID)
}

// publish moves the completed pair into permanent vouch rows and emits the
// combined public record. The pending pair is discarded in the same store
// transaction that writes the permanent rows, so a pair can only ever
// publish once; a losing concurrent caller gets nothing to do.
func (c *Collector) publish(ctx context.Context, tradeID string) (bool, error) {
	vouches, err := c.store.CompleteVouchPair(ctx, tradeID)
	if err != nil {
		return false, err
	}
	if len(vouches) == 0 {
		return false, nil
	}

	combined := domain.CombinedVouch{TradeID: tradeID}
	for _, v := range vouches {
		switch v.Role {
		case domain.RoleBuyer:
			combined.Buyer = domain.PendingVouch{
				TradeID: v.TradeID, Role: v.Role, RaterID: v.RaterID,
				RatedID: v.RatedID, Rating: v.Rating, Comment: v.Comment,
			}
		case domain.RoleSeller:
			combined.Seller = domain.PendingVouch{
				TradeID: v.TradeID, Role: v.Role, RaterID: v.RaterID,
				RatedID: v.RatedID, Rating: v.Rating, Comment: v.Comment,
			}
		}
	}

	rec, err := c.store.GetTradeRecord(ctx, tradeID)
	switch {
	case err == nil:
		combined.Snapshot = domain.TradeSnapshot{
			AccountType: rec.AccountType,
			Price:       rec.Price,
			Description: rec.Description,
		}
	case errors.Is(err, domain.ErrNotFound):
		c.log.Warn("no trade history for published vouch", "trade_id", tradeID)
	default:
		c.log.Warn("failed to load trade history for vouch", "trade_id", tradeID, "err", err)
	}

	// The permanent rows are the durable truth; a failed public post is
	// logged but does not undo the publication.
	if err := c.pres.PublishVouch(ctx, combined); err != nil {
		c.log.Error("failed to post combined vouch", "trade_id", tradeID, "err", err)
	}

	c.log.Info("vouch pair published",
		"trade_id", tradeID,
		"buyer_rating", combined.Buyer.Rating,
		"seller_rating", combined.Seller.Rating)
	return true, nil
}

// RequestRatings prompts both trade parties for a 1-5 rating of the other
// side. Prompts expire on their own; an ignored prompt is not an error.
func (c *Collector) RequestRatings(ctx context.Context, tradeID string, buyerID, sellerID int64, snap domain.TradeSnapshot) error {
	if err := c.prompts.EnqueueRatingPrompt(tradeID, buyerID, domain.RoleBuyer, snap); err != nil {
		c.log.Warn("failed to enqueue buyer rating prompt", "trade_id", tradeID, "err", err)
	}
	if err := c.prompts.EnqueueRatingPrompt(tradeID, sellerID, domain.RoleSeller, snap); err != nil {
		c.log.Warn("failed to enqueue seller rating prompt", "trade_id", tradeID, "err", err)
	}
	return nil
}

// RemoveByTrade deletes a trade's published vouches and backs them out of the
// rated users' aggregates.
func (c *Collector) RemoveByTrade(ctx context.Context, tradeID string) (int64, error) {
	return c.store.DeleteVouchesByTrade(ctx, tradeID)
}

// RemoveByPair deletes vouches a rater left about a specific user.
func (c *Collector) RemoveByPair(ctx context.Context, raterID, ratedID int64) (int64, error) {
	return c.store.DeleteVouchesByPair(ctx, raterID, ratedID)
}

// ClearUser zeroes a user's rating aggregate and removes every vouch about
// them.
func (c *Collector) ClearUser(ctx context.Context, userID int64) error {
	return c.store.ClearUserVouches(ctx, userID)
}
