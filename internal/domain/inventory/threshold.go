package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

// Threshold filtro de alertas de stock.
type Threshold string

const (
	ThresholdNone Threshold = "none"
	ThresholdLow  Threshold = "low"  // Quantity < Min Level
	ThresholdHigh Threshold = "high" // Quantity > Max Level
)

// ParseThreshold acepta "", "none", "low" o "high" (sin distinguir mayúsculas).
func ParseThreshold(s string) (Threshold, error) {
	switch Threshold(strings.ToLower(strings.TrimSpace(s))) {
	case "", ThresholdNone:
		return ThresholdNone, nil
	case ThresholdLow:
		return ThresholdLow, nil
	case ThresholdHigh:
		return ThresholdHigh, nil
	}
	return "", fmt.Errorf("%w: threshold %q", domain.ErrInvalidInput, s)
}

// Matches indica si la fila entra en el filtro. Las comparaciones son numéricas;
// con NaN (celda ausente o no numérica) el resultado es siempre false.
func (t Threshold) Matches(row *entity.Row, cols entity.ItemColumns) bool {
	if t == ThresholdNone {
		return true
	}
	qv, _ := row.Get(cols.Quantity)
	q := Numeric(qv)
	switch t {
	case ThresholdLow:
		mv, _ := row.Get(cols.MinLevel)
		return q < Numeric(mv)
	case ThresholdHigh:
		mv, _ := row.Get(cols.MaxLevel)
		return q > Numeric(mv)
	}
	return false
}

// MatchesSearch búsqueda por subcadena de la referencia, sin distinguir mayúsculas.
// Un término vacío coincide con todo.
func MatchesSearch(row *entity.Row, cols entity.ItemColumns, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(cols.PartRefOf(row)), term)
}
