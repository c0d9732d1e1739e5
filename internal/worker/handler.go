package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sociable/internal/model"
)

// PostPublisher abstracts the publish operation so the worker doesn't depend
// on the repository layer directly.
type PostPublisher interface {
	// Publish marks the post as published. Returns model.ErrPostNotFound
	// if the post no longer exists.
	Publish(ctx context.Context, postID int64) error
}

// ScheduleQueue is the read side of the deferred-publication queue.
type ScheduleQueue interface {
	// Due returns post IDs whose publish time is at or before now.
	Due(ctx context.Context, now time.Time, limit int64) ([]int64, error)
	// Remove drops a processed entry.
	Remove(ctx context.Context, postID int64) error
}

// Handler publishes due posts picked off the schedule queue.
type Handler struct {
	publisher PostPublisher
	queue     ScheduleQueue
}

// NewHandler creates a new publication handler.
func NewHandler(publisher PostPublisher, queue ScheduleQueue) *Handler {
	return &Handler{
		publisher: publisher,
		queue:     queue,
	}
}

// ProcessDue publishes every post due at the given instant and removes the
// handled entries from the queue. A post that has disappeared since it was
// scheduled is logged and dropped; nothing retries it. Transient publish
// failures keep the entry queued so the next poll picks it up again.
func (h *Handler) ProcessDue(ctx context.Context, now time.Time, limit int64) (published int, err error) {
	due, err := h.queue.Due(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("read due posts: %w", err)
	}

	if len(due) == 0 {
		return 0, nil
	}

	log.Printf("[Worker] ProcessDue: %d posts due", len(due))

	for _, postID := range due {
		startTime := time.Now()

		err := h.publisher.Publish(ctx, postID)
		switch {
		case err == nil:
			log.Printf("[Worker] Published post=%d duration=%v", postID, time.Since(startTime))
			published++
		case errors.Is(err, model.ErrPostNotFound):
			// The post was deleted while waiting in the queue. Drop the
			// entry; there is nothing left to publish.
			log.Printf("[Worker] Publish FAILED: post=%d no longer exists, dropping", postID)
		default:
			log.Printf("[Worker] Publish FAILED: post=%d err=%v (will retry)", postID, err)
			continue
		}

		if err := h.queue.Remove(ctx, postID); err != nil {
			log.Printf("[Worker] Remove FAILED: post=%d err=%v", postID, err)
		}
	}

	return published, nil
}
