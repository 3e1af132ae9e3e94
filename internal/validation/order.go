package validation

import "net/url"

// OrderStatuses 订单状态
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled", "returned"}

// ShippingAddress 收货地址
type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required,max=100"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// OrderItemInput 下单条目
type OrderItemInput struct {
	VariantID string `json:"variantId" validate:"required,objectid"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=99"`
}

// CreateOrderInput 结账下单
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"required,min=1,max=50,dive"`
	ShippingAddress ShippingAddress  `json:"shippingAddress" validate:"required"`
	PaymentMethod   string           `json:"paymentMethod" validate:"required,oneof=card paypal cod"`
	CouponCode      string           `json:"couponCode,omitempty" validate:"omitempty,min=3,max=32,alphanum"`
	Notes           string           `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ListOrdersInput 订单分页查询
type ListOrdersInput struct {
	Page   int    `json:"page" validate:"gte=1"`
	Limit  int    `json:"limit" validate:"gte=1,lte=100"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=pending processing shipped delivered cancelled returned"`
}

func (in *ListOrdersInput) ApplyDefaults() { defaultPaging(&in.Page, &in.Limit) }

// Query 转换为查询参数
func (in ListOrdersInput) Query() url.Values {
	q := pagingQuery(in.Page, in.Limit)
	setIfNotEmpty(q, "status", in.Status)
	return q
}

// CancelOrderInput 取消订单
type CancelOrderInput struct {
	OrderID string `json:"orderId" validate:"required,objectid"`
	Reason  string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// UpdateOrderStatusInput 管理员更新订单状态
type UpdateOrderStatusInput struct {
	OrderID string `json:"orderId" validate:"required,objectid"`
	Status  string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled returned"`
	Note    string `json:"note,omitempty" validate:"omitempty,max=500"`
}
