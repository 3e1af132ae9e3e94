package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// HeaderIdempotencyKey 结账请求的幂等键，重试不会重复下单
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderService 订单
type OrderService struct {
	client *apiclient.Client
}

// NewOrderService 创建订单服务
func NewOrderService(client *apiclient.Client) *OrderService {
	return &OrderService{client: client}
}

// Create 结账下单
func (s *OrderService) Create(ctx context.Context, in validation.CreateOrderInput) (Order, error) {
	ctx = withOp(ctx, "order.create")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Order{}, err
	}
	return apiclient.Do[Order](ctx, s.client, http.MethodPost, "/orders", in,
		apiclient.WithHeader(HeaderIdempotencyKey, uuid.NewString()))
}

// List 我的订单
func (s *OrderService) List(ctx context.Context, in validation.ListOrdersInput) (apiclient.Page[Order], error) {
	ctx = withOp(ctx, "order.list")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[Order]{}, err
	}
	return apiclient.DoList[Order](ctx, s.client, http.MethodGet, "/orders", nil, apiclient.WithQuery(in.Query()))
}

// Get 订单详情
func (s *OrderService) Get(ctx context.Context, id string) (Order, error) {
	ctx = withOp(ctx, "order.get")
	if err := validation.ValidateID(ctx, "orderId", id); err != nil {
		return Order{}, err
	}
	return apiclient.Do[Order](ctx, s.client, http.MethodGet, "/orders/"+id, nil)
}

// Cancel 取消订单
func (s *OrderService) Cancel(ctx context.Context, in validation.CancelOrderInput) (Order, error) {
	ctx = withOp(ctx, "order.cancel")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Order{}, err
	}
	body := map[string]string{}
	if in.Reason != "" {
		body["reason"] = in.Reason
	}
	return apiclient.Do[Order](ctx, s.client, http.MethodPost, "/orders/"+in.OrderID+"/cancel", body)
}

// UpdateStatus 管理员更新订单状态
func (s *OrderService) UpdateStatus(ctx context.Context, in validation.UpdateOrderStatusInput) (Order, error) {
	ctx = withOp(ctx, "order.update_status")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Order{}, err
	}
	body := struct {
		Status string `json:"status"`
		Note   string `json:"note,omitempty"`
	}{in.Status, in.Note}
	return apiclient.Do[Order](ctx, s.client, http.MethodPatch, "/admin/orders/"+in.OrderID+"/status", body)
}
