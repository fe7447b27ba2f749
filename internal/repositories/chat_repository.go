package repositories

import (
	"context"

	"fleet-backend/internal/models"
)

// ChatRepository is append-only: there is no update or delete
type ChatRepository struct {
	DB DB
}

func NewChatRepository(db DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) Append(ctx context.Context, m *models.ChatMessage) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO chat_messages(id, sender_id, receiver_id, body, sent_at) VALUES($1, $2, $3, $4, $5)`,
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.Timestamp)
	return mapErr(err)
}

func (r *ChatRepository) List(ctx context.Context) ([]*models.ChatMessage, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, sender_id, receiver_id, body, sent_at FROM chat_messages ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
