package domain

import "time"

// Role tags which side of a trade a party was on.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Counterpart returns the opposite role.
func (r Role) Counterpart() Role {
	if r == RoleBuyer {
		return RoleSeller
	}
	return RoleBuyer
}

// Reputation is a user's running trade statistics. Rows are created lazily
// on first stats query or first trade action.
type Reputation struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Sales       int       `json:"sales"`
	Purchases   int       `json:"purchases"`
	TotalRating int       `json:"total_rating"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AverageRating returns the mean rating rounded to one decimal. ok is false
// when the user has never been rated; callers must not present 0 as a real
// average in that case.
func (r *Reputation) AverageRating() (avg float64, ok bool) {
	if r.RatingCount == 0 {
		return 0, false
	}
	avg = float64(r.TotalRating) / float64(r.RatingCount)
	return float64(int(avg*10+0.5)) / 10, true
}

// PendingListing is a seller's submitted sale details awaiting screenshots.
// At most one live row per owner.
type PendingListing struct {
	OwnerID     int64     `json:"owner_id"`
	AccountType string    `json:"account_type"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the image-submission window has closed.
func (p *PendingListing) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// ActiveListing is a published, buyable listing.
type ActiveListing struct {
	ID              string    `json:"listing_id"`
	OwnerID         int64     `json:"owner_id"`
	AccountType     string    `json:"account_type"`
	Price           string    `json:"price"`
	Description     string    `json:"description"`
	ImageURLs       []string  `json:"image_urls"`
	ChannelID       int64     `json:"channel_id"`
	MessageID       int64     `json:"message_id"`
	ExtraMessageIDs []int64   `json:"extra_message_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListingFields carries an edit; nil fields are left unchanged.
type ListingFields struct {
	AccountType *string  `json:"account_type,omitempty"`
	Price       *string  `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

// TradeSnapshot freezes the listing fields at trade start so later edits do
// not retroactively alter an in-flight trade.
type TradeSnapshot struct {
	ListingID   string `json:"listing_id"`
	AccountType string `json:"account_type"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// TradeRecord is the append-only history row written when a trade completes.
type TradeRecord struct {
	TradeID     string    `json:"trade_id"`
	BuyerID     int64     `json:"buyer_id"`
	SellerID    int64     `json:"seller_id"`
	AccountType string    `json:"account_type"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	CompletedAt time.Time `json:"completed_at"`
	ChannelID   int64     `json:"channel_id"`
}

// PendingVouch is one side of a trade's rating pair, held until both sides
// arrive or forever if the counterpart never rates.
type PendingVouch struct {
	TradeID   string    `json:"trade_id"`
	Role      Role      `json:"role"`
	RaterID   int64     `json:"rater_id"`
	RatedID   int64     `json:"rated_user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Vouch is a permanent published rating.
type Vouch struct {
	ID        int64     `json:"id"`
	TradeID   string    `json:"trade_id"`
	RaterID   int64     `json:"rater_id"`
	RatedID   int64     `json:"rated_user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// CombinedVouch is the public record emitted once both sides of a trade have
// rated each other.
type CombinedVouch struct {
	TradeID  string        `json:"trade_id"`
	Snapshot TradeSnapshot `json:"snapshot"`
	Buyer    PendingVouch  `json:"buyer"`
	Seller   PendingVouch  `json:"seller"`
}

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

// Ticket is a support ticket backed by a private channel.
type Ticket struct {
	ID        int64        `json:"ticket_id"`
	UserID    int64        `json:"user_id"`
	ChannelID int64        `json:"channel_id"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	ClosedAt  *time.Time   `json:"closed_at,omitempty"`
	ClosedBy  *int64       `json:"closed_by,omitempty"`
}
