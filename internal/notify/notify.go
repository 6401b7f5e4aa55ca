// Package notify is the Redis-backed delivery queue for user notices and
// rating prompts. Enqueueing never blocks the caller on the chat platform;
// the asynq server drains tasks through the presenter in the background.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/presenter"
)

// PromptTTL bounds how long a rating prompt stays deliverable. A prompt past
// its deadline is dropped, never retried; the unanswered rating simply leaves
// the vouch pair incomplete.
const PromptTTL = 5 * time.Minute

// Queue owns the asynq client and server pair.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	pres   presenter.Presenter
	log    *slog.Logger
}

// New connects to Redis and starts the background worker.
func New(redisAddr string, pres presenter.Presenter, logger *slog.Logger) *Queue {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	q := &Queue{
		client: asynq.NewClient(opts),
		pres:   pres,
		log:    logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskUserNotice, q.handleUserNotice)
	mux.HandleFunc(TaskRatingPrompt, q.handleRatingPrompt)

	q.server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"notices": 10,
			"prompts": 5,
		},
	})
	go func() {
		if err := q.server.Run(mux); err != nil {
			logger.Error("notify worker stopped", "err", err)
		}
	}()

	logger.Info("notify queue started", "redis_addr", redisAddr)
	return q
}

// EnqueueUserNotice schedules a direct message to the user.
func (q *Queue) EnqueueUserNotice(userID int64, message string) error {
	p := UserNoticePayload{UserID: userID, Message: message, SentAt: time.Now()}
	b, _ := json.Marshal(p)
	task := asynq.NewTask(TaskUserNotice, b)
	if _, err := q.client.Enqueue(task, asynq.Queue("notices")); err != nil {
		return fmt.Errorf("enqueue user notice: %w", err)
	}
	return nil
}

// EnqueueRatingPrompt schedules a rating prompt that expires after PromptTTL.
func (q *Queue) EnqueueRatingPrompt(tradeID string, userID int64, role domain.Role, snap domain.TradeSnapshot) error {
	p := RatingPromptPayload{TradeID: tradeID, UserID: userID, Role: role, Snapshot: snap, SentAt: time.Now()}
	b, _ := json.Marshal(p)
	task := asynq.NewTask(TaskRatingPrompt, b)
	if _, err := q.client.Enqueue(task,
		asynq.Queue("prompts"),
		asynq.Deadline(time.Now().Add(PromptTTL)),
	); err != nil {
		return fmt.Errorf("enqueue rating prompt: %w", err)
	}
	return nil
}

func (q *Queue) handleUserNotice(ctx context.Context, t *asynq.Task) error {
	var p UserNoticePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := q.pres.NotifyUser(ctx, p.UserID, p.Message); err != nil {
		q.log.Error("user notice delivery failed", "user", p.UserID, "err", err)
		return err
	}
	q.log.Info("user notice delivered", "user", p.UserID)
	return nil
}

func (q *Queue) handleRatingPrompt(ctx context.Context, t *asynq.Task) error {
	var p RatingPromptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := q.pres.PromptRating(ctx, p.UserID, p.TradeID, p.Role, p.Snapshot); err != nil {
		q.log.Error("rating prompt delivery failed", "trade_id", p.TradeID, "user", p.UserID, "err", err)
		return err
	}
	q.log.Info("rating prompt delivered", "trade_id", p.TradeID, "user", p.UserID, "role", p.Role)
	return nil
}

// Close releases the client and stops the worker.
func (q *Queue) Close() {
	if q.client != nil {
		_ = q.client.Close()
	}
	if q.server != nil {
		q.server.Shutdown()
	}
}
