package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"refcontest/entity"
	"refcontest/internal/config"
	"refcontest/internal/contest"
	"refcontest/internal/database/migrations"
	"refcontest/lib/sl"
)

// SQLStore keeps the contest in a SQL database; SQLite and MySQL share one implementation.
type SQLStore struct {
	queries
	db         *sql.DB
	dialect    dialect
	statements map[string]*sql.Stmt
	mu         sync.Mutex
	closeOnce  sync.Once
	log        *slog.Logger
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens the database file at path, creating it and the schema when missing.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	// every transaction takes the write lock at BEGIN, so two registrations never interleave
	dsn := "file:" + filepath.Clean(path) +
		"?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect, log)
}

// OpenMySQL connects to MySQL, waiting for the server to come up.
func OpenMySQL(ctx context.Context, conf config.MySQLConfig, log *slog.Logger) (*SQLStore, error) {
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		conf.UserName, conf.Password, conf.HostName, conf.Port, conf.Database)
	db, err := sql.Open("mysql", connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try to ping three times with a 30-second interval; wait for a database to start
	for i := 0; i < 3; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if i == 2 {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(30 * time.Second):
		}
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	return newSQLStore(ctx, db, mysqlDialect, log)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, log *slog.Logger) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", d.name, err)
	}
	if err := applyMigrations(ctx, db, d, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s := &SQLStore{
		db:         db,
		dialect:    d,
		statements: make(map[string]*sql.Stmt),
		log:        log.With(sl.Module("database.sql"), slog.String("dialect", d.name)),
	}
	s.queries = queries{s: s}
	if err := s.prepareAll(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() {
	s.closeOnce.Do(func() {
		s.closeStmt()
		if err := s.db.Close(); err != nil {
			s.log.Warn("close database", sl.Err(err))
		}
	})
}

// Atomically runs fn inside one transaction, rolling back when fn fails.
func (s *SQLStore) Atomically(ctx context.Context, fn func(ctx context.Context, tx contest.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err = fn(ctx, queries{s: s, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Warn("rollback", sl.Err(rbErr))
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// IncrementReferrals outside of Atomically still reads back the count it wrote.
func (s *SQLStore) IncrementReferrals(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.Atomically(ctx, func(ctx context.Context, tx contest.Tx) error {
		var err error
		count, err = tx.IncrementReferrals(ctx, userID)
		return err
	})
	return count, err
}

func (s *SQLStore) TopParticipants(ctx context.Context, n int) ([]*entity.Participant, error) {
	stmt, err := s.prepareStmt(ctx, stmtTopParticipants)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("query top: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	participants := make([]*entity.Participant, 0, n)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("after scanning rows: %w", err)
	}
	return participants, nil
}

func (s *SQLStore) RankOf(ctx context.Context, userID int64) (int, error) {
	p, err := s.GetParticipant(ctx, userID)
	if err != nil || p == nil {
		return 0, err
	}
	stmt, err := s.prepareStmt(ctx, stmtCountAhead)
	if err != nil {
		return 0, err
	}
	var ahead int
	err = stmt.QueryRowContext(ctx, p.ReferralCount, p.ReferralCount, p.Seq).Scan(&ahead)
	if err != nil {
		return 0, fmt.Errorf("count ahead: %w", err)
	}
	return ahead + 1, nil
}

func (s *SQLStore) CountParticipants(ctx context.Context) (int, error) {
	stmt, err := s.prepareStmt(ctx, stmtCountParticipants)
	if err != nil {
		return 0, err
	}
	var n int
	if err = stmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

func (s *SQLStore) LoadState(ctx context.Context) (*entity.ContestState, error) {
	stmt, err := s.prepareStmt(ctx, stmtLoadState)
	if err != nil {
		return nil, err
	}
	var status string
	var endedAt sql.NullInt64
	if err = stmt.QueryRowContext(ctx).Scan(&status, &endedAt); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	state := &entity.ContestState{Status: entity.ContestStatus(status)}
	if endedAt.Valid {
		at := fromMillis(endedAt.Int64)
		state.EndedAt = &at
	}
	return state, nil
}

func (s *SQLStore) CompareAndEnd(ctx context.Context, at time.Time) (bool, error) {
	stmt, err := s.prepareStmt(ctx, stmtEndContest)
	if err != nil {
		return false, err
	}
	res, err := stmt.ExecContext(ctx, string(entity.StatusEnded), toMillis(at), string(entity.StatusActive))
	if err != nil {
		return false, fmt.Errorf("end contest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*entity.Participant, error) {
	var p entity.Participant
	var joined int64
	if err := row.Scan(&p.Seq, &p.UserID, &p.DisplayName, &p.Handle, &p.ReferralCount, &joined); err != nil {
		return nil, err
	}
	p.JoinedAt = fromMillis(joined)
	return &p, nil
}
