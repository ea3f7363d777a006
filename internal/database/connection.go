package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fastrail/booking-backend/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// NewConnection opens the Postgres pool through the configured driver.
// "pgx" goes through pgx/v5 stdlib; "postgres" uses lib/pq.
func NewConnection(cfg config.DatabaseConfig, logger *logrus.Logger) (*sqlx.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	logger.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"url":    maskPassword(cfg.URL),
	}).Info("Connecting to database")

	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case "postgres":
		db, err = sqlx.Connect("postgres", cfg.URL)
	default:
		pgxConfig, perr := pgx.ParseConfig(cfg.URL)
		if perr != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", perr)
		}

		// Prepared statements break behind transaction-mode poolers
		if cfg.SimpleProtocol {
			pgxConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		}

		connStr := stdlib.RegisterConnConfig(pgxConfig)
		db, err = sqlx.Connect("pgx", connStr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation
// raised by either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}

	return false
}

// ConstraintName returns the violated constraint, if the driver reported one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

func maskPassword(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
