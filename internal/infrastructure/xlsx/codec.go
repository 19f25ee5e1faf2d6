package xlsx

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

var _ ports.DocumentCodec = (*Codec)(nil)

// Nombres de hoja por defecto.
const (
	DefaultItemsSheet = "Sheet1"
	DefaultLogsSheet  = "Logs"
)

// placeholderPrefix prefijo de las columnas sintéticas que generan las hojas
// exportadas con encabezados en blanco ("__EMPTY", "__EMPTY_1", ...).
const placeholderPrefix = "__EMPTY"

// Codec traduce el libro .xlsx a (Items, Logs) y viceversa usando excelize.
type Codec struct {
	itemsSheet string
	logsSheet  string
}

// NewCodec construye el codec; nombres vacíos toman los valores por defecto.
func NewCodec(itemsSheet, logsSheet string) *Codec {
	if itemsSheet == "" {
		itemsSheet = DefaultItemsSheet
	}
	if logsSheet == "" {
		logsSheet = DefaultLogsSheet
	}
	return &Codec{itemsSheet: itemsSheet, logsSheet: logsSheet}
}

// Decode lee la hoja de ítems (la configurada o, si no existe, la primera que no
// sea la de logs) y la hoja de logs (ausente = tabla vacía).
// Las columnas con encabezado vacío o sintético se descartan junto con sus datos.
func (c *Codec) Decode(data []byte) (*entity.Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: abrir libro: %v", domain.ErrDecodeFailure, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: el libro no tiene hojas", domain.ErrDecodeFailure)
	}

	// La hoja de logs nunca se lee como Items.
	itemsSheet := c.pickItemsSheet(sheets)
	if itemsSheet == "" {
		return nil, fmt.Errorf("%w: el libro solo contiene la hoja %q", domain.ErrDecodeFailure, c.logsSheet)
	}
	items, err := readTable(f, itemsSheet, nil)
	if err != nil {
		return nil, err
	}

	logs := entity.NewLogTable()
	if contains(sheets, c.logsSheet) {
		logs, err = readTable(f, c.logsSheet, entity.LogColumns())
		if err != nil {
			return nil, err
		}
	}
	return entity.NewDocument(items, logs), nil
}

// Encode genera un libro nuevo con exactamente dos hojas: Items primero, con los
// encabezados del esquema vivo, y Logs después, con el encabezado fijo seguido de
// cualquier columna adicional ya presente.
func (c *Codec) Encode(doc *entity.Document) ([]byte, error) {
	if doc == nil || doc.Items == nil {
		return nil, fmt.Errorf("codificar: documento sin tabla de ítems")
	}
	logs := doc.Logs
	if logs == nil {
		logs = entity.NewLogTable()
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if def := f.GetSheetName(0); def != c.itemsSheet {
		if err := f.SetSheetName(def, c.itemsSheet); err != nil {
			return nil, fmt.Errorf("codificar: hoja %q: %w", c.itemsSheet, err)
		}
	}
	if _, err := f.NewSheet(c.logsSheet); err != nil {
		return nil, fmt.Errorf("codificar: hoja %q: %w", c.logsSheet, err)
	}
	f.SetActiveSheet(0)

	if err := writeTable(f, c.itemsSheet, doc.Items.Columns(), doc.Items.Rows()); err != nil {
		return nil, err
	}
	if err := writeTable(f, c.logsSheet, logHeader(logs), logs.Rows()); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("codificar: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Codec) pickItemsSheet(sheets []string) string {
	if contains(sheets, c.itemsSheet) {
		return c.itemsSheet
	}
	for _, s := range sheets {
		if s != c.logsSheet {
			return s
		}
	}
	return ""
}

// readTable convierte la hoja en tabla: la primera fila no vacía son los
// encabezados (el rango usado puede empezar en B3), luego una fila por cada
// fila de datos no vacía. base fija columnas iniciales del esquema.
func readTable(f *excelize.File, sheet string, base []string) (*entity.Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: leer hoja %q: %v", domain.ErrDecodeFailure, sheet, err)
	}

	table := entity.NewTable(base...)
	head := firstNonEmptyRow(rows)
	if head < 0 {
		return table, nil
	}
	headers := headerNames(rows[head])
	for _, h := range headers {
		if h != "" {
			table.Schema().Add(h)
		}
	}

	for r := head + 1; r < len(rows); r++ {
		values := make(map[string]any, len(headers))
		blank := true
		for ci, h := range headers {
			if h == "" {
				continue
			}
			var v any
			if ci < len(rows[r]) {
				v, err = cellValue(f, sheet, ci+1, r+1, rows[r][ci])
				if err != nil {
					return nil, err
				}
			}
			if v != nil {
				blank = false
			}
			values[h] = v
		}
		if !blank {
			table.Append(values)
		}
	}
	return table, nil
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}

// headerNames devuelve el nombre de cada columna; "" marca un encabezado
// sintético que se descarta. Los duplicados se renombran Nombre_1, Nombre_2...
func headerNames(cells []string) []string {
	out := make([]string, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, raw := range cells {
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, placeholderPrefix) {
			continue
		}
		name := raw
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", raw, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// cellValue tipa el valor crudo: texto, booleano o número; vacío es nil.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, fmt.Errorf("%w: celda (%d,%d): %v", domain.ErrDecodeFailure, col, row, err)
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("%w: tipo de %s!%s: %v", domain.ErrDecodeFailure, sheet, cell, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return raw, nil
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n, nil
	}
	return raw, nil
}

func writeTable(f *excelize.File, sheet string, header []string, rows []*entity.Row) error {
	for ci, h := range header {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return fmt.Errorf("codificar %s: %w", sheet, err)
		}
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return fmt.Errorf("codificar %s!%s: %w", sheet, cell, err)
		}
	}
	for ri, row := range rows {
		values := row.Values()
		for ci, h := range header {
			v := values[h]
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return fmt.Errorf("codificar %s: %w", sheet, err)
			}
			if err := setCell(f, sheet, cell, v); err != nil {
				return fmt.Errorf("codificar %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet, cell string, v any) error {
	switch x := v.(type) {
	case string:
		return f.SetCellStr(sheet, cell, x)
	case float64:
		return f.SetCellFloat(sheet, cell, x, -1, 64)
	case bool:
		return f.SetCellBool(sheet, cell, x)
	default:
		return f.SetCellStr(sheet, cell, entity.CellText(x))
	}
}

// logHeader encabezado fijo más las columnas extra de la tabla, en su orden.
func logHeader(t *entity.Table) []string {
	header := entity.LogColumns()
	fixed := make(map[string]bool, len(header))
	for _, h := range header {
		fixed[h] = true
	}
	for _, c := range t.Columns() {
		if !fixed[c] {
			header = append(header, c)
		}
	}
	return header
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
