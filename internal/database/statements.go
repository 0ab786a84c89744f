package database

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	stmtUpsertParticipant  = "upsertParticipant"
	stmtGetParticipant     = "getParticipant"
	stmtIncrementReferrals = "incrementReferrals"
	stmtReferralCount      = "referralCount"
	stmtInsertEdge         = "insertEdge"
	stmtReferrerOf         = "referrerOf"
	stmtTopParticipants    = "topParticipants"
	stmtCountAhead         = "countAhead"
	stmtCountParticipants  = "countParticipants"
	stmtLoadState          = "loadState"
	stmtEndContest         = "endContest"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name                 string
	createMigrationTable string
	recordMigration      string
	queries              map[string]string
}

var common = map[string]string{
	stmtGetParticipant: `SELECT seq, user_id, display_name, handle, referral_count, joined_at
		FROM participants WHERE user_id = ?`,
	stmtIncrementReferrals: `UPDATE participants SET referral_count = referral_count + 1 WHERE user_id = ?`,
	stmtReferralCount:      `SELECT referral_count FROM participants WHERE user_id = ?`,
	stmtReferrerOf:         `SELECT referrer_user_id FROM referral_edges WHERE referred_user_id = ?`,
	// seq is the insertion order; it breaks ties between equal counts
	stmtTopParticipants: `SELECT seq, user_id, display_name, handle, referral_count, joined_at
		FROM participants
		ORDER BY referral_count DESC, seq ASC
		LIMIT ?`,
	stmtCountAhead: `SELECT COUNT(*) FROM participants
		WHERE referral_count > ?
		   OR (referral_count = ? AND seq < ?)`,
	stmtCountParticipants: `SELECT COUNT(*) FROM participants`,
	stmtLoadState:         `SELECT status, ended_at FROM contest_state WHERE id = 1`,
	stmtEndContest:        `UPDATE contest_state SET status = ?, ended_at = ? WHERE id = 1 AND status = ?`,
}

var sqliteDialect = dialect{
	name: "sqlite",
	createMigrationTable: `CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`,
	recordMigration: `INSERT OR IGNORE INTO ` + migrationTable + ` (name, applied_at) VALUES (?, ?)`,
	queries: with(common, map[string]string{
		stmtUpsertParticipant: `INSERT INTO participants (user_id, display_name, handle, referral_count, joined_at)
			VALUES (?, ?, ?, 0, ?)
			ON CONFLICT (user_id) DO NOTHING`,
		stmtInsertEdge: `INSERT INTO referral_edges (referred_user_id, referrer_user_id, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (referred_user_id) DO NOTHING`,
	}),
}

var mysqlDialect = dialect{
	name: "mysql",
	createMigrationTable: `CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
		name VARCHAR(255) NOT NULL PRIMARY KEY,
		applied_at BIGINT NOT NULL
	) ENGINE = InnoDB`,
	recordMigration: `INSERT IGNORE INTO ` + migrationTable + ` (name, applied_at) VALUES (?, ?)`,
	queries: with(common, map[string]string{
		stmtUpsertParticipant: `INSERT INTO participants (user_id, display_name, handle, referral_count, joined_at)
			VALUES (?, ?, ?, 0, ?)
			ON DUPLICATE KEY UPDATE user_id = user_id`,
		stmtInsertEdge: `INSERT INTO referral_edges (referred_user_id, referrer_user_id, created_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE referred_user_id = referred_user_id`,
	}),
}

func with(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// prepareAll prepares every statement of the dialect up front.
// With a single SQLite connection a lazy prepare inside a transaction would wait forever.
func (s *SQLStore) prepareAll(ctx context.Context) error {
	for name := range s.dialect.queries {
		if _, err := s.prepareStmt(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) prepareStmt(ctx context.Context, name string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}
	query, ok := s.dialect.queries[name]
	if !ok {
		return nil, fmt.Errorf("unknown statement [%s]", name)
	}
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}
	s.statements[name] = stmt
	return stmt, nil
}

func (s *SQLStore) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}
