package inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

// ListItemsQuery filtros del listado. Ambos son opcionales y se combinan.
type ListItemsQuery struct {
	Threshold inventory.Threshold
	Search    string
}

// ListItemsUseCase lista y busca ítems leyendo el documento en vivo.
type ListItemsUseCase struct {
	loader documentLoader
	cols   entity.ItemColumns
}

// NewListItemsUseCase construye el caso de uso.
func NewListItemsUseCase(store repository.DocumentStore, codec ports.DocumentCodec, opts Options) *ListItemsUseCase {
	return &ListItemsUseCase{
		loader: documentLoader{store: store, codec: codec, ref: opts.Ref},
		cols:   opts.Columns,
	}
}

// List descarga el documento y devuelve las filas que pasan el filtro, sin modificarlas.
// Sin filtros devuelve todas las filas decodificadas.
func (uc *ListItemsUseCase) List(ctx context.Context, q ListItemsQuery) ([]*entity.Row, error) {
	if q.Threshold == "" {
		q.Threshold = inventory.ThresholdNone
	}
	ctx, span := tracer.Start(ctx, "inventory.ListItems", trace.WithAttributes(
		attribute.String("threshold", string(q.Threshold)),
	))
	defer span.End()

	doc, err := uc.loader.load(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	rows := doc.Items.Filter(func(r *entity.Row) bool {
		return q.Threshold.Matches(r, uc.cols) && inventory.MatchesSearch(r, uc.cols, q.Search)
	})
	span.SetAttributes(attribute.Int("items", len(rows)))
	return rows, nil
}

// Get devuelve el ítem con la referencia exacta o domain.ErrNotFound.
func (uc *ListItemsUseCase) Get(ctx context.Context, partRef string) (*entity.Row, error) {
	ctx, span := tracer.Start(ctx, "inventory.GetItem", trace.WithAttributes(
		attribute.String("part_ref", partRef),
	))
	defer span.End()

	doc, err := uc.loader.load(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	row, _ := doc.Items.Find(uc.cols.PartRef, partRef)
	if row == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, partRef)
	}
	return row, nil
}
