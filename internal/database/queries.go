package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"refcontest/entity"
)

// queries runs the participant and ledger statements either directly on the pool
// or, when tx is set, inside that transaction.
type queries struct {
	s  *SQLStore
	tx *sql.Tx
}

func (q queries) stmt(ctx context.Context, name string) (*sql.Stmt, error) {
	stmt, err := q.s.prepareStmt(ctx, name)
	if err != nil {
		return nil, err
	}
	if q.tx != nil {
		return q.tx.StmtContext(ctx, stmt), nil
	}
	return stmt, nil
}

func (q queries) UpsertParticipant(ctx context.Context, p *entity.Participant) (bool, error) {
	stmt, err := q.stmt(ctx, stmtUpsertParticipant)
	if err != nil {
		return false, err
	}
	res, err := stmt.ExecContext(ctx, p.UserID, p.DisplayName, p.Handle, toMillis(p.JoinedAt))
	if err != nil {
		return false, fmt.Errorf("insert participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (q queries) GetParticipant(ctx context.Context, userID int64) (*entity.Participant, error) {
	stmt, err := q.stmt(ctx, stmtGetParticipant)
	if err != nil {
		return nil, err
	}
	p, err := scanParticipant(stmt.QueryRowContext(ctx, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select participant: %w", err)
	}
	return p, nil
}

func (q queries) IncrementReferrals(ctx context.Context, userID int64) (int, error) {
	stmt, err := q.stmt(ctx, stmtIncrementReferrals)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("increment referrals: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return 0, fmt.Errorf("increment referrals: participant %d not found", userID)
	}

	stmt, err = q.stmt(ctx, stmtReferralCount)
	if err != nil {
		return 0, err
	}
	var count int
	if err = stmt.QueryRowContext(ctx, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("read referral count: %w", err)
	}
	return count, nil
}

func (q queries) AttributeReferral(ctx context.Context, edge *entity.ReferralEdge) (bool, error) {
	if edge.ReferredUserID == edge.ReferrerUserID {
		return false, nil
	}
	stmt, err := q.stmt(ctx, stmtInsertEdge)
	if err != nil {
		return false, err
	}
	res, err := stmt.ExecContext(ctx, edge.ReferredUserID, edge.ReferrerUserID, toMillis(edge.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("insert referral edge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (q queries) ReferrerOf(ctx context.Context, referredID int64) (int64, error) {
	stmt, err := q.stmt(ctx, stmtReferrerOf)
	if err != nil {
		return 0, err
	}
	var referrer int64
	if err = stmt.QueryRowContext(ctx, referredID).Scan(&referrer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select referrer: %w", err)
	}
	return referrer, nil
}
