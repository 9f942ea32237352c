package dto

// ErrorResponse es la respuesta de error de toda la API
type ErrorResponse struct {
	OK      bool              `json:"ok"`
	Code    string            `json:"code"`
	Kind    string            `json:"kind,omitempty"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code, kind, message string) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewValidationResponse crea la respuesta para errores de validación por campo
func NewValidationResponse(fields map[string]string) ErrorResponse {
	return ErrorResponse{
		Code:    "INVALID_REQUEST",
		Kind:    "VALIDATION_ERROR",
		Message: "datos inválidos",
		Fields:  fields,
	}
}

// OKResponse es la respuesta mínima de una operación exitosa
type OKResponse struct {
	OK bool `json:"ok"`
}

// Ok devuelve una respuesta exitosa sin datos
func Ok() OKResponse {
	return OKResponse{OK: true}
}

// List evita serializar listas vacías como null
func List[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// HealthResponse es la respuesta del chequeo de salud
type HealthResponse struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}
