package ports

import (
	"context"

	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

// AdjustmentSink destino secundario de un ajuste ya persistido (diario SQL, eventos).
// Se invoca solo después de que la subida del documento tuvo éxito; sus errores
// se registran en el log y nunca afectan la respuesta.
type AdjustmentSink interface {
	Name() string
	Record(ctx context.Context, rec entity.LogRecord) error
}
