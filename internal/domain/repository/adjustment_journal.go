package repository

import (
	"context"

	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

// AdjustmentJournal espejo append-only de los ajustes fuera del documento.
// El documento sigue siendo la fuente de verdad; el diario es solo consulta.
type AdjustmentJournal interface {
	Append(ctx context.Context, rec entity.LogRecord) error
	ListByPartRef(ctx context.Context, partRef string, limit int) ([]entity.LogRecord, error)
}
