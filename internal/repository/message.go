package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociable/internal/model"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

type messageRow struct {
	model.Message
	SenderNickname    string  `db:"sender_nickname"`
	SenderPhotoURL    *string `db:"sender_photo_url"`
	RecipientNickname string  `db:"recipient_nickname"`
	RecipientPhotoURL *string `db:"recipient_photo_url"`
}

const messageSelectColumns = `
	m.id, m.sender_id, m.recipient_id, m.content, m.created_at,
	s.nickname AS sender_nickname, s.photo_url AS sender_photo_url,
	r.nickname AS recipient_nickname, r.photo_url AS recipient_photo_url
`

func (row *messageRow) toMessage() *model.Message {
	msg := row.Message
	msg.Sender = &model.ProfileSummary{
		ID:       msg.SenderID,
		Nickname: row.SenderNickname,
		PhotoURL: row.SenderPhotoURL,
	}
	msg.Recipient = &model.ProfileSummary{
		ID:       msg.RecipientID,
		Nickname: row.RecipientNickname,
		PhotoURL: row.RecipientPhotoURL,
	}
	return &msg
}

// Create inserts a new message.
func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, recipient_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, m.SenderID, m.RecipientID, m.Content).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return model.ErrProfileNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	query := `
		SELECT ` + messageSelectColumns + `
		FROM messages m
		JOIN profiles s ON s.id = m.sender_id
		JOIN profiles r ON r.id = m.recipient_id
		WHERE m.id = $1
	`
	var row messageRow
	err := r.db.GetContext(ctx, &row, query, messageID)
	if err == sql.ErrNoRows {
		return nil, model.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return row.toMessage(), nil
}

// ListForProfile returns messages where the profile is sender or recipient,
// newest first.
func (r *messageRepository) ListForProfile(ctx context.Context, profileID int64) ([]model.Message, error) {
	query := `
		SELECT ` + messageSelectColumns + `
		FROM messages m
		JOIN profiles s ON s.id = m.sender_id
		JOIN profiles r ON r.id = m.recipient_id
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.created_at DESC, m.id DESC
	`

	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]model.Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, *rows[i].toMessage())
	}
	return messages, nil
}
