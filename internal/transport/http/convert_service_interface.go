package http

import (
	"context"

	"xmlsheet/internal/services"
)

// ConvertServiceInterface defines the conversion operations the handler
// depends on. Kept narrow so tests can substitute a stub.
type ConvertServiceInterface interface {
	Convert(ctx context.Context, xmlText string) (*services.ConvertResponse, error)
}
