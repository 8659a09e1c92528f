package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"

	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/model"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayProvider opens orders and refunds through the Razorpay REST API.
// Verification is local: Razorpay signs `orderID|paymentID` with the key
// secret and the client forwards the signature.
type RazorpayProvider struct {
	client    *razorpay.Client
	keySecret string
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

func (p *RazorpayProvider) Method() model.PaymentMethod {
	return model.MethodRazorpay
}

func (p *RazorpayProvider) CreateOrder(_ context.Context, amount float64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   toMinorUnits(amount),
		"currency": currency,
		"receipt":  receipt,
	}

	order, err := p.client.Order.Create(data, nil)
	if err != nil {
		return nil, apperrors.Upstream("Razorpay order creation failed", err)
	}

	id, ok := order["id"].(string)
	if !ok || id == "" {
		return nil, apperrors.Upstream("Razorpay returned an order without an id", nil)
	}

	return &Order{ID: id, Amount: amount, Currency: currency}, nil
}

func (p *RazorpayProvider) VerifyOrCapture(_ context.Context, proof *model.PaymentProof) (string, error) {
	if proof.ProviderPaymentID == "" || proof.Signature == "" {
		return "", apperrors.PaymentVerification("Razorpay proof requires a payment id and signature")
	}

	mac := hmac.New(sha256.New, []byte(p.keySecret))
	mac.Write([]byte(proof.ProviderOrderID + "|" + proof.ProviderPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		return "", apperrors.PaymentVerification("Razorpay signature does not match the order")
	}

	return proof.ProviderPaymentID, nil
}

func (p *RazorpayProvider) Refund(_ context.Context, transactionID string, amount float64, reason string) (string, error) {
	data := map[string]interface{}{}
	if reason != "" {
		data["notes"] = map[string]interface{}{"reason": reason}
	}

	refund, err := p.client.Payment.Refund(transactionID, toMinorUnits(amount), data, nil)
	if err != nil {
		return "", apperrors.Upstream("Razorpay refund failed", err)
	}

	id, ok := refund["id"].(string)
	if !ok || id == "" {
		return "", apperrors.Upstream("Razorpay returned a refund without an id", nil)
	}

	return id, nil
}

// toMinorUnits converts to the gateway's integer paise representation.
func toMinorUnits(amount float64) int {
	return int(math.Round(amount * 100))
}
