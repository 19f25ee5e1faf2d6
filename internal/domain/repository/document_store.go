package repository

import (
	"context"

	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

// DocumentStore puerto del almacén remoto: descarga y sobrescritura completa del documento.
// No existen escrituras parciales ni de tipo append; Upload reemplaza el documento entero.
type DocumentStore interface {
	Download(ctx context.Context, ref entity.DocumentRef) ([]byte, error)
	Upload(ctx context.Context, ref entity.DocumentRef, data []byte) error
}

// DocumentInspector capacidad opcional de consultar metadatos sin descargar.
type DocumentInspector interface {
	Stat(ctx context.Context, ref entity.DocumentRef) (*entity.DocumentInfo, error)
}
