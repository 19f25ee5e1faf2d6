package dto

// ErrorResponse cuerpo de error HTTP. Error lleva el mensaje legible; Code es estable para clientes.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Backend string `json:"backend"`
}
