package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wavechat/wavechat-api/internal/data/pgxutil"
	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// UserRepo provides database operations for users.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `id, email, name, password_hash, role, irc_nickname,
	is_verified, is_two_factor_enabled, created_at, updated_at`

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	var passwordHash *string
	if req.PasswordHash != "" {
		passwordHash = &req.PasswordHash
	}

	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (id, email, name, password_hash, role, is_verified, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			RETURNING `+userColumns,
			uuid.NewString(),
			req.Email,
			req.Name,
			passwordHash,
			req.Role,
			req.IsVerified,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByQuery(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email (matched lowercase).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByQuery(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
}

// GetByIRCNickname retrieves a user by exact IRC nickname match. No fuzzy
// matching: the stored nickname is the only identity mapping the bridge has.
func (r *UserRepo) GetByIRCNickname(ctx context.Context, nick string) (*model.User, error) {
	return r.getByQuery(ctx, `SELECT `+userColumns+` FROM users WHERE irc_nickname = $1`, nick)
}

// FilterExistingIDs returns the subset of ids that exist, preserving request order.
func (r *UserRepo) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make(map[string]struct{}, len(ids))
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT id FROM users WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if scanErr := rows.Scan(&id); scanErr != nil {
				return scanErr
			}
			found[id] = struct{}{}
		}
		return rows.Err()
	}); err != nil {
		return nil, fmt.Errorf("filter existing user ids: %w", err)
	}

	out := make([]string, 0, len(found))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Update applies a partial update and returns the updated user.
func (r *UserRepo) Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := r.buildUpdateClause(req)
	if setClause == "" {
		return r.GetByID(ctx, id)
	}

	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		args = append(args, id)
		query := "UPDATE users SET " + setClause +
			fmt.Sprintf(", updated_at = now() WHERE id = $%d RETURNING ", len(args)) + userColumns
		rows, qErr := conn.Query(ctx, query, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for a partial user update.
func (r *UserRepo) buildUpdateClause(req model.UpdateUserRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", nextIdx()))
		args = append(args, strings.ToLower(strings.TrimSpace(*req.Email)))
	}
	if req.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *req.Role)
	}
	if req.IRCNickname != nil {
		if strings.TrimSpace(*req.IRCNickname) == "" {
			setParts = append(setParts, "irc_nickname = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("irc_nickname = $%d", nextIdx()))
			args = append(args, strings.TrimSpace(*req.IRCNickname))
		}
	}
	if req.IsVerified != nil {
		setParts = append(setParts, fmt.Sprintf("is_verified = $%d", nextIdx()))
		args = append(args, *req.IsVerified)
	}
	if req.IsTwoFactorEnabled != nil {
		setParts = append(setParts, fmt.Sprintf("is_two_factor_enabled = $%d", nextIdx()))
		args = append(args, *req.IsTwoFactorEnabled)
	}
	if req.PasswordHash != nil {
		setParts = append(setParts, fmt.Sprintf("password_hash = $%d", nextIdx()))
		args = append(args, *req.PasswordHash)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	return strings.Join(setParts, ", "), args
}

// getByQuery executes a single-row user query.
func (r *UserRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, q, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		user, qErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return qErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrUserEmailExists
		case strings.Contains(pgErr.ConstraintName, "irc_nickname"):
			return ErrIRCNicknameExists
		case strings.Contains(pgErr.ConstraintName, "name"):
			return ErrUserNameExists
		}
	}
	return err
}
