package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
)

// MaxSafeQuantity mayor entero representable sin pérdida en una celda numérica (2^53 - 1).
const MaxSafeQuantity int64 = 1<<53 - 1

// Numeric convierte un valor de celda a número para comparaciones.
// Ausente, vacío o no numérico devuelve NaN, que no satisface ninguna comparación.
func Numeric(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsInf(f, 0) {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// IntegerQuantity interpreta la cantidad actual de un ítem.
// Una celda vacía cuenta como 0; texto no numérico o valores con decimales
// devuelven domain.ErrInvalidQuantity.
func IntegerQuantity(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	f := Numeric(v)
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidQuantity, v)
	}
	if f != math.Trunc(f) || math.Abs(f) > float64(MaxSafeQuantity) {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidQuantity, v)
	}
	return int64(f), nil
}

// ApplyDelta suma delta a la cantidad previa. No hay piso en cero ni techo en el
// máximo: quedar por debajo o por encima es justamente lo que reportan las alertas.
func ApplyDelta(before, delta int64) (int64, error) {
	if delta > MaxSafeQuantity || delta < -MaxSafeQuantity {
		return 0, fmt.Errorf("%w: delta fuera de rango", domain.ErrInvalidInput)
	}
	after := before + delta
	if after > MaxSafeQuantity || after < -MaxSafeQuantity {
		return 0, fmt.Errorf("%w: cantidad resultante fuera de rango", domain.ErrInvalidInput)
	}
	return after, nil
}
