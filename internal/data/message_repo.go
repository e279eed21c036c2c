package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wavechat/wavechat-api/internal/data/pgxutil"
	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// MessageRepo provides database operations for chat messages.
type MessageRepo struct {
	DB *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{DB: db}
}

const messageSelect = `
	SELECT m.id, m.chat_id, m.user_id, m.text, m.created_at,
	       u.id, u.name, u.irc_nickname
	FROM messages m
	JOIN users u ON u.id = m.user_id`

// Create persists a message and returns it with the sender identity embedded.
func (r *MessageRepo) Create(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error) {
	if req == nil {
		return nil, errors.New("create message request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *model.Message
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var id string
		if err := conn.QueryRow(ctx, `
			INSERT INTO messages (id, chat_id, user_id, text, created_at)
			VALUES ($1, $2, $3, $4, now())
			RETURNING id`,
			uuid.NewString(), req.ChatID, req.UserID, req.Text,
		).Scan(&id); err != nil {
			return err
		}

		row := conn.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id)
		msg, err := scanMessage(row)
		if err != nil {
			return err
		}
		out = msg
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return out, nil
}

// ListByChat retrieves all messages for a chat ordered by creation time
// ascending, each with the minimal sender identity embedded.
func (r *MessageRepo) ListByChat(ctx context.Context, chatID string) ([]*model.Message, error) {
	var out []*model.Message
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, messageSelect+`
			WHERE m.chat_id = $1
			ORDER BY m.created_at ASC`,
			chatID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			msg, scanErr := scanMessage(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, msg)
		}
		return rows.Err()
	}); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanMessage.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var msg model.Message
	if err := row.Scan(
		&msg.ID, &msg.ChatID, &msg.UserID, &msg.Text, &msg.CreatedAt,
		&msg.Sender.ID, &msg.Sender.Name, &msg.Sender.IRCNickname,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}
