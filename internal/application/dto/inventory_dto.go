package dto

// AdjustRequest body para POST /items/{partRef}/adjust.
// Delta es puntero para distinguir "ausente" de cero.
type AdjustRequest struct {
	Delta *int64 `json:"delta"`
	User  string `json:"user"`
}

// AdjustResponse resultado de un ajuste: la cantidad nueva del ítem.
type AdjustResponse struct {
	PartRef  string `json:"partRef"`
	Quantity int64  `json:"quantity"`
}
