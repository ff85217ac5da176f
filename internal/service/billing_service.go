package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog"

	"petconnect/internal/model"
)

var (
	ErrUnknownPlan = errors.New("invalid plan")
	// ErrBillingNotConfigured is returned when payment credentials are
	// absent. Order creation fails closed rather than pretending success.
	ErrBillingNotConfigured = errors.New("payment gateway is not configured")
)

// planPrice is the fixed price table, amounts in INR.
type planPrice struct {
	Label  string
	Amount int64
}

var planPrices = map[model.Plan]planPrice{
	model.PlanBasic:   {Label: "Basic Plan", Amount: 399},
	model.PlanPremium: {Label: "Premium Plan", Amount: 999},
}

// BillingService bridges plan purchases to the payment gateway.
type BillingService interface {
	// CreateOrder opens a payment order for the given plan. The returned
	// receipt is the raw gateway order payload.
	CreateOrder(ctx context.Context, userID string, plan model.Plan) (map[string]interface{}, error)
	// HandleWebhook acknowledges gateway notifications. It does not yet
	// verify the payload signature or apply the plan change.
	HandleWebhook(ctx context.Context, payload []byte) error
}

type billingService struct {
	// client is nil when payment credentials are absent from the
	// environment; it is an explicit optional dependency, not global state.
	client *razorpay.Client
	logger zerolog.Logger
}

// NewBillingService creates a BillingService. Pass a nil client when the
// gateway is not configured.
func NewBillingService(client *razorpay.Client, logger zerolog.Logger) BillingService {
	return &billingService{
		client: client,
		logger: logger.With().Str("service", "BillingService").Logger(),
	}
}

// orderPayload builds the gateway order request. The gateway caps receipts at
// 40 characters, so the receipt is a timestamp token and the user and plan
// travel in notes.
func orderPayload(userID string, plan model.Plan, price planPrice) map[string]interface{} {
	return map[string]interface{}{
		"amount":   price.Amount * 100, // paise
		"currency": "INR",
		"receipt":  fmt.Sprintf("rcptid_%d", time.Now().UnixMilli()),
		"notes": map[string]interface{}{
			"user_id": userID,
			"plan":    string(plan),
		},
	}
}

func (s *billingService) CreateOrder(ctx context.Context, userID string, plan model.Plan) (map[string]interface{}, error) {
	if s.client == nil {
		return nil, ErrBillingNotConfigured
	}
	price, ok := planPrices[plan]
	if !ok {
		return nil, ErrUnknownPlan
	}

	order, err := s.client.Order.Create(orderPayload(userID, plan, price), nil)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("plan", string(plan)).Msg("order creation failed")
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("plan", string(plan)).Msg("payment order created")
	return order, nil
}

// TODO: verify the X-Razorpay-Signature header and apply the plan upgrade
// from the order notes before acknowledging.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte) error {
	s.logger.Info().Int("payload_bytes", len(payload)).Msg("payment webhook received")
	return nil
}
