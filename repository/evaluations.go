package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vnsignal/models"
	"vnsignal/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StoredEvaluation is an evaluation with persistence identity. The engine
// output itself is timestamp-free; id and created_at are assigned on insert.
type StoredEvaluation struct {
	ID uuid.UUID `json:"id"`
	models.Evaluation
	CreatedAt time.Time `json:"created_at"`
}

// SaveEvaluation persists one evaluation, assigning it a fresh id.
func (r *Repository) SaveEvaluation(ctx context.Context, eval *models.Evaluation) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "evaluations")

	reasonsJSON, err := json.Marshal(eval.Reasons)
	if err != nil {
		metrics.RecordDBError("insert", "evaluations")
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}

	var consensusJSON []byte
	if eval.Consensus != nil {
		consensusJSON, err = json.Marshal(eval.Consensus)
		if err != nil {
			metrics.RecordDBError("insert", "evaluations")
			return fmt.Errorf("failed to marshal consensus: %w", err)
		}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO evaluations (id, symbol, horizon, signal, confidence, reasons,
			net_score, total_weight, current_price, buy_price, cut_loss_price, consensus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, uuid.New(), eval.Symbol, eval.Horizon, eval.Signal, eval.Confidence, reasonsJSON,
		eval.NetScore, eval.TotalWeight, eval.CurrentPrice, eval.BuyPrice, eval.CutLossPrice,
		consensusJSON, time.Now())

	if err != nil {
		metrics.RecordDBError("insert", "evaluations")
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	return nil
}

// GetEvaluations returns stored evaluations, newest first. An empty symbol
// returns evaluations across all symbols.
func (r *Repository) GetEvaluations(ctx context.Context, symbol string, limit int) ([]StoredEvaluation, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "evaluations")

	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error

	if symbol == "" {
		rows, err = r.db.Query(ctx, `
			SELECT id, symbol, horizon, signal, confidence, reasons,
				   net_score, total_weight, current_price, buy_price, cut_loss_price,
				   consensus, created_at
			FROM evaluations
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, symbol, horizon, signal, confidence, reasons,
				   net_score, total_weight, current_price, buy_price, cut_loss_price,
				   consensus, created_at
			FROM evaluations
			WHERE symbol = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, symbol, limit)
	}

	if err != nil {
		metrics.RecordDBError("select", "evaluations")
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []StoredEvaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			metrics.RecordDBError("select", "evaluations")
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evals = append(evals, *eval)
	}

	return evals, nil
}

// GetLatestEvaluation returns the most recent stored evaluation for one
// symbol and horizon, or nil when none exists.
func (r *Repository) GetLatestEvaluation(ctx context.Context, symbol string, horizon models.Horizon) (*StoredEvaluation, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx, `
		SELECT id, symbol, horizon, signal, confidence, reasons,
			   net_score, total_weight, current_price, buy_price, cut_loss_price,
			   consensus, created_at
		FROM evaluations
		WHERE symbol = $1 AND horizon = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, symbol, horizon)

	eval, err := scanEvaluation(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation: %w", err)
	}

	return eval, nil
}

// scanEvaluation scans an evaluation row into a StoredEvaluation struct
func scanEvaluation(row pgx.Row) (*StoredEvaluation, error) {
	var eval StoredEvaluation
	var reasonsJSON, consensusJSON []byte

	err := row.Scan(&eval.ID, &eval.Symbol, &eval.Horizon, &eval.Signal, &eval.Confidence, &reasonsJSON,
		&eval.NetScore, &eval.TotalWeight, &eval.CurrentPrice, &eval.BuyPrice, &eval.CutLossPrice,
		&consensusJSON, &eval.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(reasonsJSON) > 0 {
		if err := json.Unmarshal(reasonsJSON, &eval.Reasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
		}
	}

	if len(consensusJSON) > 0 {
		var consensus models.Consensus
		if err := json.Unmarshal(consensusJSON, &consensus); err != nil {
			return nil, fmt.Errorf("failed to unmarshal consensus: %w", err)
		}
		eval.Consensus = &consensus
	}

	return &eval, nil
}

// DeleteEvaluationsBefore removes evaluations older than the cutoff, used by
// the scheduler's retention sweep.
func (r *Repository) DeleteEvaluationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("delete", "evaluations")

	result, err := r.db.Exec(ctx, `DELETE FROM evaluations WHERE created_at < $1`, cutoff)
	if err != nil {
		metrics.RecordDBError("delete", "evaluations")
		return 0, fmt.Errorf("failed to delete old evaluations: %w", err)
	}
	return result.RowsAffected(), nil
}
