// Package presenter is the boundary to the chat platform. The core never
// touches gateway primitives; it publishes listings, opens negotiation
// spaces and notifies users through this interface, and the bot process
// plugs in the real client.
package presenter

import (
	"context"

	"github.com/scubahq/tradevault/internal/domain"
)

// ListingHandle identifies a listing's published representation.
type ListingHandle struct {
	ChannelID       int64   `json:"channel_id"`
	MessageID       int64   `json:"message_id"`
	ExtraMessageIDs []int64 `json:"extra_message_ids,omitempty"`
}

// SpaceHandle identifies a private channel opened for a trade or ticket.
type SpaceHandle struct {
	ChannelID int64 `json:"channel_id"`
}

// Control kinds posted into a negotiation space.
const (
	ControlsTrade = "trade"
)

// Presenter is implemented by the platform adapter.
type Presenter interface {
	// PublishListing renders the listing with its images and returns where it
	// ended up.
	PublishListing(ctx context.Context, l *domain.ActiveListing) (ListingHandle, error)
	// UpdateListing re-renders an already-published listing.
	UpdateListing(ctx context.Context, h ListingHandle, l *domain.ActiveListing) error
	// RetractListing deletes the published representation. Retracting an
	// already-gone listing must not be an error.
	RetractListing(ctx context.Context, h ListingHandle) error

	// OpenNegotiationSpace creates a private channel visible to the two
	// parties and the overseer role.
	OpenNegotiationSpace(ctx context.Context, buyerID, sellerID, overseerRoleID int64) (SpaceHandle, error)
	// PostControls posts the confirm/cancel controls into a space.
	PostControls(ctx context.Context, h SpaceHandle, kind string) error
	// AnnounceOutcome posts the terminal status message and disables controls.
	AnnounceOutcome(ctx context.Context, h SpaceHandle, message string) error
	// CloseSpace tears the channel down. Closing an already-gone space must
	// not be an error.
	CloseSpace(ctx context.Context, h SpaceHandle) error

	// OpenTicketSpace creates a private support channel for the user.
	OpenTicketSpace(ctx context.Context, userID int64) (SpaceHandle, error)

	// NotifyUser sends a direct message.
	NotifyUser(ctx context.Context, userID int64, message string) error
	// PromptRating asks a trade party for a 1-5 rating of the other side.
	PromptRating(ctx context.Context, userID int64, tradeID string, role domain.Role, snap domain.TradeSnapshot) error
	// PublishVouch posts the combined two-sided review publicly.
	PublishVouch(ctx context.Context, v domain.CombinedVouch) error
}
