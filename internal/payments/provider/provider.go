package provider

import (
	"context"

	"agrirent/pkg/model"
)

// Order is what a gateway hands back when an order is opened on its side.
type Order struct {
	ID       string
	Amount   float64
	Currency string
}

// Provider is the capability a payment gateway must offer. Implementations
// are constructed with credentials and injected; errors come back as
// AppErrors so services can pass them through.
type Provider interface {
	Method() model.PaymentMethod
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error)
	VerifyOrCapture(ctx context.Context, proof *model.PaymentProof) (transactionID string, err error)
	Refund(ctx context.Context, transactionID string, amount float64, reason string) (refundID string, err error)
}

// Registry maps a payment method to its configured provider.
type Registry map[model.PaymentMethod]Provider

func (r Registry) Lookup(method model.PaymentMethod) (Provider, bool) {
	p, ok := r[method]
	return p, ok
}
