package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"studybud/internal/storage/pgxlog"
)

var (
	ErrUserExists      = errors.New("user already exists")
	ErrEmailExists     = errors.New("email already in use")
	ErrUserNotExist    = errors.New("user does not exist")
	ErrRoomNotExist    = errors.New("room does not exist")
	ErrMessageNotExist = errors.New("message does not exist")
	ErrTopicBlankName  = errors.New("topic name is blank")
)

//go:embed schema.sql
var schema string

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store defines fields used in db interaction processes
type Store struct {
	logger *zap.SugaredLogger
	db     *pgxpool.Pool
}

// New sets provided zap.Logger via pgxlog to pgxpool.Pool and returns instance of Store struct
func New(ctx context.Context, logger *zap.SugaredLogger, cfg Config, opts ...Option) (*Store, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	config.ConnConfig.Logger = pgxlog.NewLogger(logger.Desugar())
	config.ConnConfig.LogLevel = pgx.LogLevelWarn

	for _, opt := range opts {
		opt.apply(config)
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ConnectConfig: %w", err)
	}

	return &Store{
		logger: logger,
		db:     pool,
	}, nil
}

// Migrate creates missing tables and indexes
func (s *Store) Migrate(ctx context.Context) error {
	s.logger.Debug("Applying schema")

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}

// Close closes all connections in the pool
func (s *Store) Close() {
	s.db.Close()
}

// inTx runs f inside a transaction which is committed when f returns nil
func (s *Store) inTx(ctx context.Context, f func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	// error handling can be omitted for rollback according docs
	// see https://pkg.go.dev/github.com/jackc/pgx/v4?tab=doc#hdr-Transactions or any source comment on Rollback
	defer tx.Rollback(context.Background())

	if err := f(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// containsPattern builds an ILIKE pattern matching q anywhere in a value.
// Wildcards typed by the user are matched literally.
func containsPattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func nullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: s, Status: pgtype.Present}
}

func textValue(t pgtype.Text) string {
	if t.Status != pgtype.Present {
		return ""
	}
	return t.String
}
