package inventory

import (
	"context"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

// ListLogsUseCase expone la hoja Logs del documento en orden de inserción.
type ListLogsUseCase struct {
	loader documentLoader
}

// NewListLogsUseCase construye el caso de uso.
func NewListLogsUseCase(store repository.DocumentStore, codec ports.DocumentCodec, opts Options) *ListLogsUseCase {
	return &ListLogsUseCase{loader: documentLoader{store: store, codec: codec, ref: opts.Ref}}
}

// List devuelve los registros de auditoría; partRef vacío devuelve todos.
func (uc *ListLogsUseCase) List(ctx context.Context, partRef string) ([]*entity.Row, error) {
	doc, err := uc.loader.load(ctx)
	if err != nil {
		return nil, err
	}
	if partRef == "" {
		return doc.Logs.Filter(func(*entity.Row) bool { return true }), nil
	}
	return doc.Logs.Filter(func(r *entity.Row) bool {
		v, _ := r.Get(entity.LogColumnPartRef)
		return entity.CellText(v) == partRef
	}), nil
}
