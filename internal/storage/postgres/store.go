// Package postgres implements storage.Gateway on PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/storage"
)

const codeAttempts = 3

// Store is the sqlx-backed persistence gateway. Every method acquires a pooled
// connection for a single statement or a single short transaction.
type Store struct {
	db      *sqlx.DB
	newCode func() string
}

var _ storage.Gateway = (*Store)(nil)

// New wraps an open sqlx pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, newCode: domain.NewCode}
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// withCode runs fn with fresh codes until it stops hitting unique violations.
func (s *Store) withCode(op string, fn func(code string) error) error {
	var err error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		err = fn(s.newCode())
		if !isUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("%s: code collision after %d attempts: %w", op, codeAttempts, err)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func observe(ctx context.Context, op string, start time.Time, err error) {
	status := "ok"
	var de *domain.Error
	switch {
	case err == nil:
	case errors.As(err, &de):
		status = "skip"
	default:
		status = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("operation", op),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	if status == "fail" {
		logger.Error(ctx, "db", "db.query", attrs...)
		return
	}
	logger.Debug(ctx, "db", "db.query", attrs...)
}
