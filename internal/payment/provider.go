// Package payment reads payment confirmations and payment methods from the
// payment provider.
package payment

import (
	"context"

	"github.com/farellandr/tixflow/internal/domain"
)

// Provider is the read-only view of the payment provider used by the order
// workflow. Both calls are safe to repeat for the same id.
type Provider interface {
	GetConfirmation(ctx context.Context, id string) (*domain.PaymentConfirmation, error)
	GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error)
}
