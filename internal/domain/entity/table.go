package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Schema conjunto ordenado de nombres de columna vivos de una tabla.
// Se construye al decodificar y viaja hasta la codificación: los encabezados
// escritos son siempre los de la tabla en memoria, nunca los del archivo original.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema crea un esquema con las columnas indicadas (duplicados ignorados).
func NewSchema(names ...string) *Schema {
	s := &Schema{index: make(map[string]int, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add agrega la columna al final si no existe. Devuelve true si la agregó.
func (s *Schema) Add(name string) bool {
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	return true
}

// Has indica si la columna forma parte del esquema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names devuelve una copia de las columnas en orden.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Schema) Len() int { return len(s.names) }

// Row fila de una tabla. Los valores posibles son nil, string, float64 o bool.
type Row struct {
	schema *Schema
	values map[string]any
}

// Get devuelve el valor de la columna; ok es false si la columna no existe en el esquema.
func (r *Row) Get(column string) (any, bool) {
	if !r.schema.Has(column) {
		return nil, false
	}
	return r.values[column], true
}

// Set asigna el valor normalizado; si la columna no existe se agrega al esquema de la tabla.
func (r *Row) Set(column string, v any) {
	r.schema.Add(column)
	r.values[column] = NormalizeValue(v)
}

// Values devuelve una copia con todas las columnas del esquema (nil si vacías).
func (r *Row) Values() map[string]any {
	out := make(map[string]any, r.schema.Len())
	for _, n := range r.schema.names {
		out[n] = r.values[n]
	}
	return out
}

// MarshalJSON serializa la fila respetando el orden del esquema.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.schema.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[n])
		if err != nil {
			return nil, fmt.Errorf("columna %q: %w", n, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table tabla lógica (Items o Logs): esquema explícito más filas.
type Table struct {
	schema *Schema
	rows   []*Row
}

// NewTable crea una tabla vacía con las columnas indicadas.
func NewTable(columns ...string) *Table {
	return &Table{schema: NewSchema(columns...)}
}

func (t *Table) Schema() *Schema { return t.schema }

// Columns atajo para Schema().Names().
func (t *Table) Columns() []string { return t.schema.Names() }

// Rows devuelve las filas en orden (el slice es una copia; las filas no).
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *Table) Len() int { return len(t.rows) }

// Append agrega una fila. Las claves desconocidas se incorporan al esquema
// en orden alfabético para que el resultado sea determinista.
func (t *Table) Append(values map[string]any) *Row {
	var extra []string
	for k := range values {
		if !t.schema.Has(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		t.schema.Add(k)
	}
	row := &Row{schema: t.schema, values: make(map[string]any, len(values))}
	for k, v := range values {
		row.values[k] = NormalizeValue(v)
	}
	t.rows = append(t.rows, row)
	return row
}

// Find devuelve la primera fila cuya columna es exactamente igual a value
// (sin normalizar mayúsculas ni espacios) y la cantidad total de coincidencias.
func (t *Table) Find(column, value string) (*Row, int) {
	var first *Row
	matches := 0
	for _, r := range t.rows {
		v := r.values[column]
		if v != nil && CellText(v) == value {
			if first == nil {
				first = r
			}
			matches++
		}
	}
	return first, matches
}

// Filter devuelve las filas que cumplen fn, en orden.
func (t *Table) Filter(fn func(*Row) bool) []*Row {
	out := make([]*Row, 0, len(t.rows))
	for _, r := range t.rows {
		if fn(r) {
			out = append(out, r)
		}
	}
	return out
}

// NormalizeValue lleva un valor a la representación de celda:
// enteros y float32 a float64, cadenas vacías a nil, time.Time a RFC 3339.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return x
	case bool:
		return x
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// CellText representación textual de un valor de celda ("5", "2.5", "true"; "" si vacío).
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
