package notify

import (
	"time"

	"github.com/scubahq/tradevault/internal/domain"
)

// Task type names routed through the asynq mux.
const (
	TaskUserNotice   = "notify:user"
	TaskRatingPrompt = "notify:rating_prompt"
)

// UserNoticePayload is a direct message to a single user.
type UserNoticePayload struct {
	UserID  int64     `json:"user_id"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// RatingPromptPayload asks one trade party to rate the other. The prompt
// carries the snapshot so the handler never needs a store round trip.
type RatingPromptPayload struct {
	TradeID  string               `json:"trade_id"`
	UserID   int64                `json:"user_id"`
	Role     domain.Role          `json:"role"`
	Snapshot domain.TradeSnapshot `json:"snapshot"`
	SentAt   time.Time            `json:"sent_at"`
}
