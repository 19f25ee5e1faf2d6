package entity

import (
	"fmt"
	"time"
)

// Document par ordenado (Items, Logs) serializado como un único binario remoto.
// No tiene versión ni token de concurrencia: se asume un único escritor.
type Document struct {
	Items *Table
	Logs  *Table
}

// NewDocument construye el documento; logs nil equivale a una tabla de logs vacía.
func NewDocument(items, logs *Table) *Document {
	if items == nil {
		items = NewTable()
	}
	if logs == nil {
		logs = NewLogTable()
	}
	return &Document{Items: items, Logs: logs}
}

// DocumentRef identifica el documento remoto por ruta o por ID (el ID tiene prioridad).
type DocumentRef struct {
	Path string
	ID   string
}

func (r DocumentRef) String() string {
	if r.ID != "" {
		return fmt.Sprintf("id:%s", r.ID)
	}
	return r.Path
}

// DocumentInfo metadatos del documento remoto (comando validate).
type DocumentInfo struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified"`
	ETag       string    `json:"etag,omitempty"`
}
