package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wavechat/wavechat-api/internal/data/pgxutil"
	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// TokenRepo provides database operations for single-use tokens.
type TokenRepo struct {
	DB *sql.DB
}

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{DB: db}
}

const tokenColumns = `id, email, token, type, expires_at, created_at`

// Replace deletes any prior token for (email, type) and inserts a new one in
// a single transaction, upholding the at-most-one-live-token invariant.
func (r *TokenRepo) Replace(
	ctx context.Context,
	params model.Token,
) (*model.Token, error) {
	if params.Email == "" || params.Token == "" || !params.Type.Valid() {
		return nil, errors.New("token email, value, and type are required")
	}

	var out model.Token
	if err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM tokens WHERE email = $1 AND type = $2`,
			params.Email, params.Type,
		); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO tokens (id, email, token, type, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			RETURNING `+tokenColumns,
			uuid.NewString(),
			params.Email,
			params.Token,
			params.Type,
			params.ExpiresAt.UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Token])
		return err
	}); err != nil {
		return nil, fmt.Errorf("replace token: %w", err)
	}
	return &out, nil
}

// GetByValue retrieves a token by its opaque value and type.
func (r *TokenRepo) GetByValue(ctx context.Context, value string, typ model.TokenType) (*model.Token, error) {
	return r.getByQuery(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE token = $1 AND type = $2`,
		value, typ,
	)
}

// GetByEmail retrieves the live token for (email, type), if any.
func (r *TokenRepo) GetByEmail(ctx context.Context, email string, typ model.TokenType) (*model.Token, error) {
	return r.getByQuery(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE email = $1 AND type = $2`,
		email, typ,
	)
}

// Delete removes a token by ID. Returns false when no row was deleted.
func (r *TokenRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, execErr := conn.Exec(ctx, `DELETE FROM tokens WHERE id = $1`, id)
		if execErr != nil {
			return execErr
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	return affected > 0, nil
}

func (r *TokenRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.Token, error) {
	var token model.Token
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, q, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		token, qErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Token])
		return qErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &token, nil
}

// NewTokenParams builds a model.Token for Replace with the given lifetime.
func NewTokenParams(email, value string, typ model.TokenType, ttl time.Duration) model.Token {
	return model.Token{
		Email:     email,
		Token:     value,
		Type:      typ,
		ExpiresAt: time.Now().Add(ttl),
	}
}
