package entity

import "time"

// Columnas fijas de la hoja Logs, en el orden en que se escriben.
const (
	LogColumnTimestamp      = "timestamp"
	LogColumnPartRef        = "partRef"
	LogColumnDelta          = "delta"
	LogColumnQuantityBefore = "quantityBefore"
	LogColumnQuantityAfter  = "quantityAfter"
	LogColumnUser           = "user"
)

// LogTimestampLayout ISO-8601 en UTC con milisegundos (2024-05-01T10:20:30.123Z).
const LogTimestampLayout = "2006-01-02T15:04:05.000Z"

// LogColumns encabezado fijo de la hoja Logs.
func LogColumns() []string {
	return []string{
		LogColumnTimestamp,
		LogColumnPartRef,
		LogColumnDelta,
		LogColumnQuantityBefore,
		LogColumnQuantityAfter,
		LogColumnUser,
	}
}

// NewLogTable tabla de logs vacía con el encabezado fijo.
func NewLogTable() *Table {
	return NewTable(LogColumns()...)
}

// LogRecord registro inmutable de un ajuste de cantidad. Solo se agrega, nunca se modifica.
type LogRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	PartRef        string    `json:"partRef"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantityBefore"`
	QuantityAfter  int64     `json:"quantityAfter"`
	User           string    `json:"user"`
}

// Values representación como fila de la hoja Logs.
func (r LogRecord) Values() map[string]any {
	return map[string]any{
		LogColumnTimestamp:      r.Timestamp.UTC().Format(LogTimestampLayout),
		LogColumnPartRef:        r.PartRef,
		LogColumnDelta:          r.Delta,
		LogColumnQuantityBefore: r.QuantityBefore,
		LogColumnQuantityAfter:  r.QuantityAfter,
		LogColumnUser:           r.User,
	}
}
