package ports

import "context"

// TokenProvider entrega un bearer token válido para el almacén remoto.
// Es un objeto de larga vida inyectado al construir los adaptadores (no estado global);
// renueva el token cuando expira y falla con domain.ErrAuthFailure si no puede obtenerlo.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
