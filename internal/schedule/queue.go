package schedule

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScheduleKey is the sorted set holding post IDs scored by their publish time.
const ScheduleKey = "schedule:posts"

// Scheduler is the write side of the deferred-publication queue. Services
// depend on this narrow interface so tests can stub it.
type Scheduler interface {
	// Schedule records that postID should be published at the given time.
	// Re-scheduling an already queued post just moves its score.
	Schedule(ctx context.Context, postID int64, at time.Time) error
	// Cancel drops a pending entry. Cancelling an absent entry is a no-op.
	Cancel(ctx context.Context, postID int64) error
}

// Queue implements the deferred-publication queue on a Redis sorted set.
// The score is the unix publish time, so "everything due" is a single
// ZRANGEBYSCORE up to now.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Schedule adds or moves a post in the queue.
func (q *Queue) Schedule(ctx context.Context, postID int64, at time.Time) error {
	startTime := time.Now()

	err := q.client.ZAdd(ctx, ScheduleKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: strconv.FormatInt(postID, 10),
	}).Err()
	if err != nil {
		log.Printf("[Schedule] Schedule FAILED: post=%d at=%s err=%v", postID, at.Format(time.RFC3339), err)
		return fmt.Errorf("schedule post: %w", err)
	}

	log.Printf("[Schedule] Schedule OK: post=%d at=%s duration=%v",
		postID, at.Format(time.RFC3339), time.Since(startTime))
	return nil
}

// Cancel removes a pending entry.
func (q *Queue) Cancel(ctx context.Context, postID int64) error {
	removed, err := q.client.ZRem(ctx, ScheduleKey, strconv.FormatInt(postID, 10)).Result()
	if err != nil {
		log.Printf("[Schedule] Cancel FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("cancel scheduled post: %w", err)
	}

	log.Printf("[Schedule] Cancel OK: post=%d removed=%d", postID, removed)
	return nil
}

// Due returns up to limit post IDs whose publish time is at or before now,
// oldest first. Entries stay in the queue until Remove is called, so a
// failed publish run is retried on the next poll.
func (q *Queue) Due(ctx context.Context, now time.Time, limit int64) ([]int64, error) {
	results, err := q.client.ZRangeByScore(ctx, ScheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		log.Printf("[Schedule] Due FAILED: err=%v", err)
		return nil, fmt.Errorf("list due posts: %w", err)
	}

	postIDs := make([]int64, 0, len(results))
	for _, member := range results {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			log.Printf("[Schedule] Due parse error: member=%q err=%v", member, err)
			return nil, fmt.Errorf("parse post id: %w", err)
		}
		postIDs = append(postIDs, id)
	}

	return postIDs, nil
}

// Remove drops a processed entry from the queue.
func (q *Queue) Remove(ctx context.Context, postID int64) error {
	err := q.client.ZRem(ctx, ScheduleKey, strconv.FormatInt(postID, 10)).Err()
	if err != nil {
		log.Printf("[Schedule] Remove FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("remove scheduled post: %w", err)
	}
	return nil
}

// Size returns the number of pending entries.
func (q *Queue) Size(ctx context.Context) (int64, error) {
	size, err := q.client.ZCard(ctx, ScheduleKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get schedule size: %w", err)
	}
	return size, nil
}
