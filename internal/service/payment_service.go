package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// PaymentService 支付
type PaymentService struct {
	client *apiclient.Client
}

// NewPaymentService 创建支付服务
func NewPaymentService(client *apiclient.Client) *PaymentService {
	return &PaymentService{client: client}
}

// CreateIntent 为订单创建支付意图
func (s *PaymentService) CreateIntent(ctx context.Context, in validation.CreatePaymentIntentInput) (PaymentIntent, error) {
	ctx = withOp(ctx, "payment.create_intent")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return PaymentIntent{}, err
	}
	return apiclient.Do[PaymentIntent](ctx, s.client, http.MethodPost, "/payments/intent", in)
}

// Confirm 确认支付
func (s *PaymentService) Confirm(ctx context.Context, in validation.ConfirmPaymentInput) (Payment, error) {
	ctx = withOp(ctx, "payment.confirm")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Payment{}, err
	}
	return apiclient.Do[Payment](ctx, s.client, http.MethodPost, "/payments/confirm", in)
}
