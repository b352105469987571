// internal/app/services/chat/chat.go

// Package chat is direct messaging between users.
package chat

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxContentLen bounds a message after sanitizing.
const MaxContentLen = 2000

// Service sends and reads messages.
type Service struct {
	st     store.Store
	notify notify.Sender
	log    *zap.Logger
	now    func() time.Time
}

// New returns a Service.
func New(st store.Store, sender notify.Sender, logger *zap.Logger) *Service {
	return &Service{st: st, notify: sender, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

// SendInput is a message body posted over HTTP or the socket.
type SendInput struct {
	ReceiverID string `json:"receiverId" validate:"required" label:"Recipient"`
	Content    string `json:"content" validate:"required" label:"Message"`
}

// Contact is one conversation in the contact list.
type Contact struct {
	User        ContactUser        `json:"user"`
	LastMessage models.ChatMessage `json:"lastMessage"`
	UnreadCount int                `json:"unreadCount"`
}

// ContactUser is the public part of a counterpart's profile.
type ContactUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	BusinessName string `json:"businessName,omitempty"`
}

// Send persists a message and pushes it to both parties.
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string) (models.ChatMessage, error) {
	content = htmlsanitize.PlainText(content)
	switch {
	case content == "":
		return models.ChatMessage{}, respond.BadRequest("Message cannot be empty")
	case utf8.RuneCountInString(content) > MaxContentLen:
		return models.ChatMessage{}, respond.BadRequest("Message is too long")
	case receiverID == "":
		return models.ChatMessage{}, respond.BadRequest("Recipient is required")
	case receiverID == senderID:
		return models.ChatMessage{}, respond.BadRequest("You cannot message yourself")
	}

	if _, err := s.st.GetUser(ctx, receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.ChatMessage{}, respond.NotFound("Recipient not found")
		}
		return models.ChatMessage{}, err
	}

	m := models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.st.CreateMessage(ctx, &m); err != nil {
		return models.ChatMessage{}, err
	}

	ev := notify.Event{Type: notify.TypeNewMessage, Data: m}
	s.notify.SendToUser(senderID, ev)
	s.notify.SendToUser(receiverID, ev)
	return m, nil
}

// Conversation returns the messages between a and b, oldest first.
func (s *Service) Conversation(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	msgs, err := s.st.ListConversation(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

// Contacts lists everyone userID has exchanged messages with, most recent
// conversation first.
func (s *Service) Contacts(ctx context.Context, userID string) ([]Contact, error) {
	msgs, err := s.st.ListMessagesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var order []string
	last := make(map[string]models.ChatMessage)
	unread := make(map[string]int)
	for _, m := range msgs {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		if _, ok := last[other]; !ok {
			last[other] = m
			order = append(order, other)
		}
		if m.ReceiverID == userID && !m.Read {
			unread[other]++
		}
	}

	out := []Contact{}
	if len(order) == 0 {
		return out, nil
	}
	users, err := s.st.GetUsers(ctx, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range order {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, Contact{
			User: ContactUser{
				ID:           u.ID,
				Username:     u.Username,
				FullName:     u.FullName,
				Role:         u.Role,
				BusinessName: u.BusinessName,
			},
			LastMessage: last[id],
			UnreadCount: unread[id],
		})
	}
	return out, nil
}

// MarkRead marks everything counterpart sent to reader as read and pushes
// the reader's new unread total.
func (s *Service) MarkRead(ctx context.Context, readerID, counterpartID string) (int64, error) {
	n, err := s.st.MarkRead(ctx, readerID, counterpartID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if total, err := s.st.CountUnread(ctx, readerID); err == nil {
			s.notify.SendToUser(readerID, notify.Event{
				Type: notify.TypeUnreadMessages,
				Data: map[string]int64{"count": total},
			})
		} else {
			s.log.Warn("count unread after mark read", zap.String("user_id", readerID), zap.Error(err))
		}
	}
	return n, nil
}

// Unread returns how many messages userID has not read.
func (s *Service) Unread(ctx context.Context, userID string) (int64, error) {
	return s.st.CountUnread(ctx, userID)
}
