package ports

import "github.com/jhoicas/warehouse-tracker/internal/domain/entity"

// DocumentCodec traduce entre el binario del documento y el par de tablas (Items, Logs).
// Decode elimina las columnas sintéticas de encabezados vacíos; Encode escribe
// siempre dos hojas, Items primero y Logs después.
type DocumentCodec interface {
	Decode(data []byte) (*entity.Document, error)
	Encode(doc *entity.Document) ([]byte, error)
}
