package inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/jhoicas/warehouse-tracker/internal/application/inventory")

// Options parámetros comunes a los casos de uso de inventario.
type Options struct {
	Ref     entity.DocumentRef
	Columns entity.ItemColumns
}

// documentLoader descarga y decodifica el documento completo. Cada petición
// trabaja con su propia copia; no se cachea nada entre peticiones.
type documentLoader struct {
	store repository.DocumentStore
	codec ports.DocumentCodec
	ref   entity.DocumentRef
}

func (l documentLoader) load(ctx context.Context) (*entity.Document, error) {
	data, err := l.store.Download(ctx, l.ref)
	if err != nil {
		return nil, fmt.Errorf("descargar documento: %w", err)
	}
	doc, err := l.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decodificar documento: %w", err)
	}
	return doc, nil
}
