package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("Item not found")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrInvalidQuantity  = errors.New("cantidad no numérica o no entera")
	ErrAuthFailure      = errors.New("autenticación fallida")
	ErrStoreUnavailable = errors.New("almacén de documentos no disponible")
	ErrDecodeFailure    = errors.New("documento ilegible")
)
