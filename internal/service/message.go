package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sociable/internal/model"
	"sociable/internal/repository"
)

// MessageService handles direct messages between profiles.
type MessageService struct {
	messageRepo repository.MessageRepository
	profileRepo repository.ProfileRepository
}

func NewMessageService(messageRepo repository.MessageRepository, profileRepo repository.ProfileRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
	}
}

// Send creates a message from the caller's profile to the recipient.
func (s *MessageService) Send(ctx context.Context, accountID int64, req *model.CreateMessageRequest) (*model.Message, error) {
	sender, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrMessageContentMissing
	}

	recipient, err := s.profileRepo.GetByID(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Content:     content,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	message.Sender = &model.ProfileSummary{ID: sender.ID, Nickname: sender.Nickname, PhotoURL: sender.PhotoURL}
	message.Recipient = &model.ProfileSummary{ID: recipient.ID, Nickname: recipient.Nickname, PhotoURL: recipient.PhotoURL}

	log.Printf("[Message] Sent message=%d sender=%d recipient=%d", message.ID, sender.ID, recipient.ID)
	return message, nil
}

// Get returns a single message. Only the sender or recipient may read it.
func (s *MessageService) Get(ctx context.Context, accountID, messageID int64) (*model.Message, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.SenderID != viewer.ID && message.RecipientID != viewer.ID {
		return nil, fmt.Errorf("message %d: %w", messageID, model.ErrNotMessageParticipant)
	}

	return message, nil
}

// List returns the caller's message history, sent and received, newest first.
func (s *MessageService) List(ctx context.Context, accountID int64) ([]model.Message, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListForProfile(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return messages, nil
}
