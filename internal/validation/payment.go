package validation

// CreatePaymentIntentInput 创建支付意图
type CreatePaymentIntentInput struct {
	OrderID string `json:"orderId" validate:"required,objectid"`
	Method  string `json:"method" validate:"required,oneof=card paypal"`
}

// ConfirmPaymentInput 确认支付
type ConfirmPaymentInput struct {
	OrderID         string `json:"orderId" validate:"required,objectid"`
	PaymentIntentID string `json:"paymentIntentId" validate:"required,max=255"`
}
