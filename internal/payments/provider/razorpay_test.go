package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	apperrors "agrirent/pkg/errors"
	"agrirent/pkg/model"
)

func signProof(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayVerify_ValidSignature(t *testing.T) {
	secret := "test_secret"
	p := NewRazorpayProvider("test_key", secret)

	proof := &model.PaymentProof{
		ProviderOrderID:   "order_123",
		ProviderPaymentID: "pay_456",
		Signature:         signProof(secret, "order_123", "pay_456"),
	}

	txnID, err := p.VerifyOrCapture(context.Background(), proof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txnID != "pay_456" {
		t.Errorf("expected transaction id pay_456, got %s", txnID)
	}
}

func TestRazorpayVerify_TamperedSignature(t *testing.T) {
	secret := "test_secret"
	p := NewRazorpayProvider("test_key", secret)

	tests := []struct {
		name  string
		proof *model.PaymentProof
	}{
		{
			"wrong secret",
			&model.PaymentProof{
				ProviderOrderID:   "order_123",
				ProviderPaymentID: "pay_456",
				Signature:         signProof("other_secret", "order_123", "pay_456"),
			},
		},
		{
			"signature for another payment",
			&model.PaymentProof{
				ProviderOrderID:   "order_123",
				ProviderPaymentID: "pay_456",
				Signature:         signProof(secret, "order_123", "pay_789"),
			},
		},
		{
			"missing payment id",
			&model.PaymentProof{
				ProviderOrderID: "order_123",
				Signature:       signProof(secret, "order_123", ""),
			},
		},
		{
			"missing signature",
			&model.PaymentProof{
				ProviderOrderID:   "order_123",
				ProviderPaymentID: "pay_456",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.VerifyOrCapture(context.Background(), tt.proof)
			if err == nil {
				t.Fatal("expected a verification error")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodePaymentVerification {
				t.Errorf("expected code %s, got %s", apperrors.CodePaymentVerification, appErr.Code)
			}
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int
	}{
		{500, 50000},
		{99.99, 9999},
		{0.1, 10},
		{1234.56, 123456},
	}

	for _, tt := range tests {
		if got := toMinorUnits(tt.amount); got != tt.want {
			t.Errorf("toMinorUnits(%.2f) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}
