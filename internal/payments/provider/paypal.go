package provider

import (
	"context"
	"fmt"

	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/model"

	"github.com/plutov/paypal/v4"
)

// PayPalProvider drives the Orders v2 API. There is no client-side
// signature; confirmation captures the order server-side and inspects the
// capture status.
type PayPalProvider struct {
	client *paypal.Client
}

func NewPayPalProvider(clientID, secret, apiBase string) (*PayPalProvider, error) {
	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("failed to construct PayPal client: %w", err)
	}

	if _, err := client.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to obtain PayPal access token: %w", err)
	}

	return &PayPalProvider{client: client}, nil
}

func (p *PayPalProvider) Method() model.PaymentMethod {
	return model.MethodPayPal
}

func (p *PayPalProvider) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: receipt,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    fmt.Sprintf("%.2f", amount),
			},
		},
	}

	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return nil, apperrors.Upstream("PayPal order creation failed", err)
	}

	return &Order{ID: order.ID, Amount: amount, Currency: currency}, nil
}

func (p *PayPalProvider) VerifyOrCapture(ctx context.Context, proof *model.PaymentProof) (string, error) {
	capture, err := p.client.CaptureOrder(ctx, proof.ProviderOrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", apperrors.Upstream("PayPal capture failed", err)
	}

	if capture.Status != "COMPLETED" {
		return "", apperrors.PaymentVerification(fmt.Sprintf("PayPal capture status is %s", capture.Status))
	}

	for _, unit := range capture.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, c := range unit.Payments.Captures {
			if c.ID != "" {
				return c.ID, nil
			}
		}
	}

	return "", apperrors.PaymentVerification("PayPal capture completed without a capture id")
}

func (p *PayPalProvider) Refund(ctx context.Context, transactionID string, amount float64, reason string) (string, error) {
	refund, err := p.client.RefundCapture(ctx, transactionID, paypal.RefundCaptureRequest{
		NoteToPayer: reason,
	})
	if err != nil {
		return "", apperrors.Upstream("PayPal refund failed", err)
	}

	return refund.ID, nil
}
