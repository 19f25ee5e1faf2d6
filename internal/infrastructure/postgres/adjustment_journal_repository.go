package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

var (
	_ repository.AdjustmentJournal = (*AdjustmentJournalRepo)(nil)
	_ ports.AdjustmentSink         = (*AdjustmentJournalRepo)(nil)
)

// DefaultJournalLimit filas devueltas cuando el llamador no indica límite.
const DefaultJournalLimit = 100

// AdjustmentJournalRepo espejo SQL de la hoja Logs. La hoja sigue siendo el
// registro oficial; esta tabla solo facilita consultas.
type AdjustmentJournalRepo struct {
	q Querier
}

// NewAdjustmentJournalRepository construye el adaptador. Acepta pool o tx (Querier).
func NewAdjustmentJournalRepository(q Querier) *AdjustmentJournalRepo {
	return &AdjustmentJournalRepo{q: q}
}

func (r *AdjustmentJournalRepo) Name() string { return "postgres" }

// Record implementa AdjustmentSink.
func (r *AdjustmentJournalRepo) Record(ctx context.Context, rec entity.LogRecord) error {
	return r.Append(ctx, rec)
}

// Append inserta el registro con un ID nuevo.
func (r *AdjustmentJournalRepo) Append(ctx context.Context, rec entity.LogRecord) error {
	query := `
		INSERT INTO adjustment_journal (id, occurred_at, part_ref, delta, quantity_before, quantity_after, user_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		uuid.New(), rec.Timestamp.UTC(), rec.PartRef, rec.Delta,
		rec.QuantityBefore, rec.QuantityAfter, rec.User,
	)
	if err != nil {
		return fmt.Errorf("insert adjustment journal: %w", err)
	}
	return nil
}

// ListByPartRef devuelve los registros más recientes primero; partRef vacío lista todos.
func (r *AdjustmentJournalRepo) ListByPartRef(ctx context.Context, partRef string, limit int) ([]entity.LogRecord, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	query := `
		SELECT occurred_at, part_ref, delta, quantity_before, quantity_after, user_name
		FROM adjustment_journal
		WHERE ($1 = '' OR part_ref = $1)
		ORDER BY occurred_at DESC, recorded_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, partRef, limit)
	if err != nil {
		return nil, fmt.Errorf("list adjustment journal: %w", err)
	}
	defer rows.Close()

	var out []entity.LogRecord
	for rows.Next() {
		var rec entity.LogRecord
		if err := rows.Scan(&rec.Timestamp, &rec.PartRef, &rec.Delta,
			&rec.QuantityBefore, &rec.QuantityAfter, &rec.User); err != nil {
			return nil, fmt.Errorf("scan adjustment journal: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adjustment journal: %w", err)
	}
	return out, nil
}
