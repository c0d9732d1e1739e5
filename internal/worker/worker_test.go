package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"sociable/internal/model"
)

type mockPublisher struct {
	publishFn func(ctx context.Context, postID int64) error

	publishCalls []int64
}

func (m *mockPublisher) Publish(ctx context.Context, postID int64) error {
	m.publishCalls = append(m.publishCalls, postID)
	if m.publishFn != nil {
		return m.publishFn(ctx, postID)
	}
	return nil
}

type mockQueue struct {
	due []int64

	removeCalls []int64
}

func (m *mockQueue) Due(ctx context.Context, now time.Time, limit int64) ([]int64, error) {
	return m.due, nil
}

func (m *mockQueue) Remove(ctx context.Context, postID int64) error {
	m.removeCalls = append(m.removeCalls, postID)
	return nil
}

func TestHandler_ProcessDue_PublishesAndRemoves(t *testing.T) {
	publisher := &mockPublisher{}
	queue := &mockQueue{due: []int64{3, 7, 11}}
	h := NewHandler(publisher, queue)

	published, err := h.ProcessDue(context.Background(), time.Now(), 100)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if published != 3 {
		t.Errorf("published = %d, want 3", published)
	}
	if len(publisher.publishCalls) != 3 {
		t.Errorf("Publish called %d times, want 3", len(publisher.publishCalls))
	}
	if len(queue.removeCalls) != 3 {
		t.Errorf("Remove called %d times, want 3", len(queue.removeCalls))
	}
}

func TestHandler_ProcessDue_MissingPostDropped(t *testing.T) {
	// A post deleted while waiting in the queue is dropped without retry;
	// the failure only surfaces in logs.
	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, postID int64) error {
			if postID == 7 {
				return model.ErrPostNotFound
			}
			return nil
		},
	}
	queue := &mockQueue{due: []int64{3, 7}}
	h := NewHandler(publisher, queue)

	published, err := h.ProcessDue(context.Background(), time.Now(), 100)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}
	// Both entries leave the queue: one published, one dangling
	if len(queue.removeCalls) != 2 {
		t.Errorf("Remove called %d times, want 2", len(queue.removeCalls))
	}
}

func TestHandler_ProcessDue_TransientErrorKeepsEntry(t *testing.T) {
	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, postID int64) error {
			return errors.New("db unavailable")
		},
	}
	queue := &mockQueue{due: []int64{5}}
	h := NewHandler(publisher, queue)

	published, err := h.ProcessDue(context.Background(), time.Now(), 100)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if published != 0 {
		t.Errorf("published = %d, want 0", published)
	}
	// The entry stays queued so the next poll retries it
	if len(queue.removeCalls) != 0 {
		t.Errorf("Remove called %d times, want 0", len(queue.removeCalls))
	}
}

func TestHandler_ProcessDue_EmptyQueue(t *testing.T) {
	publisher := &mockPublisher{}
	queue := &mockQueue{}
	h := NewHandler(publisher, queue)

	published, err := h.ProcessDue(context.Background(), time.Now(), 100)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if published != 0 || len(publisher.publishCalls) != 0 {
		t.Error("nothing should be published from an empty queue")
	}
}
