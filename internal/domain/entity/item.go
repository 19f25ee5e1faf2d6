package entity

import "fmt"

// Nombres de columna por defecto de la tabla Items.
const (
	DefaultPartRefColumn     = "Part Reference"
	DefaultDescriptionColumn = "Description"
	DefaultQuantityColumn    = "Quantity"
	DefaultMinLevelColumn    = "Min Level"
	DefaultMaxLevelColumn    = "Max Level"
)

// ItemColumns nombres de las columnas con significado para el inventario.
// El resto de columnas de la hoja se conserva tal cual.
type ItemColumns struct {
	PartRef     string
	Description string
	Quantity    string
	MinLevel    string
	MaxLevel    string
}

// DefaultItemColumns columnas estándar de la hoja de inventario.
func DefaultItemColumns() ItemColumns {
	return ItemColumns{
		PartRef:     DefaultPartRefColumn,
		Description: DefaultDescriptionColumn,
		Quantity:    DefaultQuantityColumn,
		MinLevel:    DefaultMinLevelColumn,
		MaxLevel:    DefaultMaxLevelColumn,
	}
}

// Validate exige nombres no vacíos y distintos entre sí.
func (c ItemColumns) Validate() error {
	named := map[string]string{
		"part_ref":    c.PartRef,
		"description": c.Description,
		"quantity":    c.Quantity,
		"min_level":   c.MinLevel,
		"max_level":   c.MaxLevel,
	}
	seen := make(map[string]string, len(named))
	for field, col := range named {
		if col == "" {
			return fmt.Errorf("columna %s vacía", field)
		}
		if other, dup := seen[col]; dup {
			return fmt.Errorf("columna %q asignada a %s y %s", col, other, field)
		}
		seen[col] = field
	}
	return nil
}

// PartRefOf devuelve la referencia de la fila como texto ("" si no tiene).
func (c ItemColumns) PartRefOf(row *Row) string {
	v, _ := row.Get(c.PartRef)
	return CellText(v)
}
