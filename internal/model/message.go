package model

import (
	"errors"
	"time"
)

// Message is a direct message between two profiles. There is no delivery
// or read tracking, only a flat newest-first history.
type Message struct {
	ID          int64     `db:"id" json:"id"`
	SenderID    int64     `db:"sender_id" json:"-"`
	RecipientID int64     `db:"recipient_id" json:"-"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Joined fields
	Sender    *ProfileSummary `json:"sender,omitempty"`
	Recipient *ProfileSummary `json:"recipient,omitempty"`
}

// CreateMessageRequest is the request body for sending a message. The
// sender is always the authenticated actor.
type CreateMessageRequest struct {
	RecipientID int64  `json:"recipient"`
	Content     string `json:"content"`
}

// Message errors
var (
	ErrMessageNotFound       = errors.New("message not found")
	ErrNotMessageParticipant = errors.New("not a participant of this message")
	ErrMessageContentMissing = errors.New("message content is required")
)
