package adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentGateway is the Anti-Corruption Layer over the external payment
// provider used for mobile and card payments. The engine only ever sees
// a charge reference and a redirect URL; gateway protocol details stay on
// the other side of this interface.
type PaymentGateway interface {
	// CreateCharge authorizes a charge and returns the provider's charge
	// reference plus the URL the guest is redirected to.
	CreateCharge(ctx context.Context, amount int64, orderRef, customerEmail string) (chargeID, redirectURL string, err error)

	// CaptureCharge settles a previously authorized charge.
	CaptureCharge(ctx context.Context, chargeID string) error

	// CancelCharge voids an unsettled charge.
	CancelCharge(ctx context.Context, chargeID string) error

	// RefundCharge refunds a settled charge.
	RefundCharge(ctx context.Context, chargeID string, amount int64) error
}

// MockGateway is a development/testing implementation of PaymentGateway.
type MockGateway struct {
	logger *zap.Logger
}

// NewMockGateway creates a mock gateway for development.
func NewMockGateway(logger *zap.Logger) *MockGateway {
	return &MockGateway{logger: logger}
}

// CreateCharge simulates authorizing a charge.
func (m *MockGateway) CreateCharge(ctx context.Context, amount int64, orderRef, customerEmail string) (string, string, error) {
	chargeID := fmt.Sprintf("ch_mock_%s", uuid.New().String()[:8])
	redirectURL := fmt.Sprintf("https://pay.example.test/checkout/%s", chargeID)

	m.logger.Info("[MOCK GATEWAY] charge created",
		zap.String("charge_id", chargeID),
		zap.Int64("amount", amount),
		zap.String("order_ref", orderRef),
		zap.String("customer_email", customerEmail),
	)
	return chargeID, redirectURL, nil
}

// CaptureCharge simulates settling a charge.
func (m *MockGateway) CaptureCharge(ctx context.Context, chargeID string) error {
	m.logger.Info("[MOCK GATEWAY] charge captured", zap.String("charge_id", chargeID))
	return nil
}

// CancelCharge simulates voiding a charge.
func (m *MockGateway) CancelCharge(ctx context.Context, chargeID string) error {
	m.logger.Info("[MOCK GATEWAY] charge canceled", zap.String("charge_id", chargeID))
	return nil
}

// RefundCharge simulates refunding a charge.
func (m *MockGateway) RefundCharge(ctx context.Context, chargeID string, amount int64) error {
	m.logger.Info("[MOCK GATEWAY] refund created",
		zap.String("charge_id", chargeID),
		zap.Int64("amount", amount),
	)
	return nil
}
