package postgres

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaTemplate string

// Open connects a pool and pings it.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errorModel.StoreUnavailable("connect", fmt.Errorf("failed to create connection pool: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errorModel.StoreUnavailable("connect", fmt.Errorf("failed to ping database: %w", err))
	}
	return pool, nil
}

// Schema renders the DDL for an embedding dimension.
func Schema(dimension int) string {
	return strings.ReplaceAll(schemaTemplate, "{{dimension}}", strconv.Itoa(dimension))
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return errorModel.Configuration("migrate", fmt.Errorf("invalid embedding dimension %d", dimension))
	}
	if _, err := pool.Exec(ctx, Schema(dimension)); err != nil {
		return errorModel.StoreUnavailable("migrate", err)
	}
	return nil
}

// Transact runs fn inside a transaction and commits when it returns nil.
func Transact(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx rollback failed: %v (original err: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LockID derives a stable advisory lock key from parts.
func LockID(parts ...string) int64 {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
	}
	hash := h.Sum(nil)

	var id int64
	for i := range 8 {
		id = (id << 8) | int64(hash[i])
	}
	return id
}

// AdvisoryXactLock blocks until the transaction holds the lock. It is released on commit or rollback.
func AdvisoryXactLock(ctx context.Context, tx pgx.Tx, lockID int64) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockID); err != nil {
		return fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	return nil
}

// Unavailable wraps connection and query failures as StoreUnavailable. Context
// cancellation is passed through untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return errorModel.StoreUnavailable(op, err)
}

// IsForeignKeyViolation reports a 23503 error, raised when a chunk's document is gone.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
