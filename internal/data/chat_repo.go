package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wavechat/wavechat-api/internal/data/pgxutil"
	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// ChatRepo provides database operations for chats and their memberships.
type ChatRepo struct {
	DB *sql.DB
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{DB: db}
}

const chatColumns = `id, title, irc_channel_name, owner_id, created_at, updated_at`

// Create inserts a chat together with its owner membership row in one
// transaction: a chat is never visible without its OWNER member.
func (r *ChatRepo) Create(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	if chat == nil {
		return nil, errors.New("chat is required")
	}

	var out model.Chat
	if err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO chats (id, title, irc_channel_name, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			RETURNING `+chatColumns,
			chat.ID, chat.Title, chat.IRCChannelName, chat.OwnerID,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Chat])
		rows.Close()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO chat_members (chat_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, now())`,
			out.ID, out.OwnerID, model.ChatRoleOwner,
		)
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// GetByID retrieves a chat by ID.
func (r *ChatRepo) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	return r.getByQuery(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id)
}

// GetByChannelName retrieves a chat by its stable IRC channel name.
func (r *ChatRepo) GetByChannelName(ctx context.Context, channel string) (*model.Chat, error) {
	return r.getByQuery(ctx, `SELECT `+chatColumns+` FROM chats WHERE irc_channel_name = $1`, channel)
}

// ListForUser retrieves the chats a user is a member of, with member counts,
// newest first.
func (r *ChatRepo) ListForUser(ctx context.Context, userID string) ([]*model.ChatWithMemberCount, error) {
	var rowsOut []model.ChatWithMemberCount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT c.id, c.title, c.irc_channel_name, c.owner_id, c.created_at, c.updated_at,
			       (SELECT count(*) FROM chat_members m2 WHERE m2.chat_id = c.id) AS member_count
			FROM chats c
			JOIN chat_members m ON m.chat_id = c.id
			WHERE m.user_id = $1
			ORDER BY c.created_at DESC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ChatWithMemberCount])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list chats for user: %w", err)
	}

	res := make([]*model.ChatWithMemberCount, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// ListChannelNames returns the IRC channel names of every known chat. The
// bridge uses this to restore channel membership after a reconnect.
func (r *ChatRepo) ListChannelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT irc_channel_name FROM chats ORDER BY created_at`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if scanErr := rows.Scan(&name); scanErr != nil {
				return scanErr
			}
			names = append(names, name)
		}
		return rows.Err()
	}); err != nil {
		return nil, fmt.Errorf("list channel names: %w", err)
	}
	return names, nil
}

// AddMembers inserts membership rows for the given users, skipping rows that
// already exist. Returns the number of rows actually inserted.
func (r *ChatRepo) AddMembers(ctx context.Context, chatID string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var added int64
	if err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		for _, userID := range userIDs {
			ct, err := tx.Exec(ctx, `
				INSERT INTO chat_members (chat_id, user_id, role, joined_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (chat_id, user_id) DO NOTHING`,
				chatID, userID, model.ChatRoleMember,
			)
			if err != nil {
				return err
			}
			added += ct.RowsAffected()
		}
		return nil
	}); err != nil {
		return 0, fmt.Errorf("add chat members: %w", err)
	}
	return added, nil
}

// GetMember retrieves a membership row.
func (r *ChatRepo) GetMember(ctx context.Context, chatID, userID string) (*model.ChatMember, error) {
	var member model.ChatMember
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			SELECT chat_id, user_id, role, joined_at
			FROM chat_members
			WHERE chat_id = $1 AND user_id = $2`,
			chatID, userID,
		)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		member, qErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ChatMember])
		return qErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatMemberNotFound
		}
		return nil, fmt.Errorf("get chat member: %w", err)
	}
	return &member, nil
}

func (r *ChatRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.Chat, error) {
	var chat model.Chat
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, q, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		chat, qErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Chat])
		return qErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrChatChannelExists
	}
	return err
}
