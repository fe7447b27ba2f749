package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"fleet-backend/internal/access"
	"fleet-backend/internal/events"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/google/uuid"
)

// MessageNotifier receives every stored message; the WebSocket hub implements it
type MessageNotifier interface {
	Publish(msg *models.ChatMessage)
}

type ChatService struct {
	Messages store.MessageStore
	Users    store.UserStore
	Notifier MessageNotifier
	Events   events.Publisher
	Clock    timeutil.Clock
}

func NewChatService(messages store.MessageStore, users store.UserStore, notifier MessageNotifier, pub events.Publisher) *ChatService {
	return &ChatService{
		Messages: messages,
		Users:    users,
		Notifier: notifier,
		Events:   pub,
	}
}

// Send appends a message from sender. The stored copy is pushed to live clients.
func (s *ChatService) Send(ctx context.Context, sender *models.User, req *models.SendMessageRequest) (*models.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, invalidf("message text is required")
	}
	if req.ReceiverID == "" || req.ReceiverID == sender.ID {
		return nil, invalidf("receiver_id must name another user")
	}
	if _, err := s.Users.Get(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidf("unknown receiver")
		}
		return nil, err
	}
	contacts, err := s.Contacts(ctx, sender)
	if err != nil {
		return nil, err
	}
	if !hasContact(contacts, req.ReceiverID) {
		return nil, fmt.Errorf("%w: receiver is not one of your contacts", ErrForbidden)
	}
	return s.deliver(ctx, sender.ID, req.ReceiverID, text)
}

func hasContact(contacts []models.Contact, id string) bool {
	for _, c := range contacts {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *ChatService) deliver(ctx context.Context, senderID, receiverID, text string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  clockNow(s.Clock),
	}
	if err := s.Messages.Append(ctx, msg); err != nil {
		return nil, err
	}

	metrics.ChatMessages.Inc()
	if s.Notifier != nil {
		s.Notifier.Publish(msg)
	}
	publish(s.Events, events.TopicChatMessage, "chat.message", msg.ID, senderID, msg.Timestamp, map[string]string{
		"receiver_id": receiverID,
	})
	return msg, nil
}

// Conversation returns the messages between a and b in either direction, oldest first
func (s *ChatService) Conversation(ctx context.Context, a, b string) ([]*models.ChatMessage, error) {
	all, err := s.Messages.List(ctx)
	if err != nil {
		return nil, err
	}
	return Conversation(all, a, b), nil
}

// Conversation filters msgs to the unordered pair (a, b) and sorts by timestamp.
// Messages with equal timestamps keep their append order.
func Conversation(msgs []*models.ChatMessage, a, b string) []*models.ChatMessage {
	out := make([]*models.ChatMessage, 0)
	for _, m := range msgs {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Contacts lists who user can chat with
func (s *ChatService) Contacts(ctx context.Context, user *models.User) ([]models.Contact, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	var picked []*models.User
	switch user.Role {
	case models.RoleSuperAdmin:
		picked = access.Managers(users)
	case models.RoleManager:
		picked = append(access.DriversOf(user.ID, users), access.SubManagersOf(user.ID, users)...)
	default:
		if user.AssignedManagerID == "" {
			break
		}
		for _, u := range users {
			if u.ID == user.AssignedManagerID {
				picked = append(picked, u)
			}
		}
		for _, u := range users {
			if u.ID != user.ID && u.AssignedManagerID == user.AssignedManagerID {
				picked = append(picked, u)
			}
		}
	}
	return contacts(picked), nil
}

// Directory is the phone list: drivers see their manager and the active
// sub-managers, sub-managers see the active drivers.
func (s *ChatService) Directory(ctx context.Context, user *models.User) ([]models.Contact, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	manager := user.AssignedManagerID

	var picked []*models.User
	switch user.Role {
	case models.RoleDriver:
		for _, u := range users {
			if u.ID == manager {
				picked = append(picked, u)
			}
		}
		if manager != "" {
			picked = append(picked, active(access.SubManagersOf(manager, users))...)
		}
	case models.RoleSubManager, models.RoleUjalaManager:
		if manager != "" {
			picked = active(access.DriversOf(manager, users))
		}
	default:
		return s.Contacts(ctx, user)
	}
	return contacts(picked), nil
}

func active(users []*models.User) []*models.User {
	out := users[:0:0]
	for _, u := range users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out
}

func contacts(users []*models.User) []models.Contact {
	out := make([]models.Contact, 0, len(users))
	for _, u := range users {
		out = append(out, models.Contact{
			ID:       u.ID,
			Name:     u.Name,
			Role:     u.Role,
			Phone:    u.Phone,
			PhotoURL: u.PhotoURL,
		})
	}
	return out
}
