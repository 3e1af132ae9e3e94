package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// ShippingService 发货与物流
type ShippingService struct {
	client *apiclient.Client
}

// NewShippingService 创建物流服务
func NewShippingService(client *apiclient.Client) *ShippingService {
	return &ShippingService{client: client}
}

// CreateShipment 管理员创建发货单
func (s *ShippingService) CreateShipment(ctx context.Context, in validation.CreateShipmentInput) (Shipment, error) {
	ctx = withOp(ctx, "shipping.create")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Shipment{}, err
	}
	return apiclient.Do[Shipment](ctx, s.client, http.MethodPost, "/admin/shipments", in)
}

// UpdateTracking 管理员追加物流节点
func (s *ShippingService) UpdateTracking(ctx context.Context, in validation.UpdateTrackingInput) (Shipment, error) {
	ctx = withOp(ctx, "shipping.update_tracking")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Shipment{}, err
	}
	body := struct {
		Status      string `json:"status"`
		Location    string `json:"location,omitempty"`
		TrackingURL string `json:"trackingUrl,omitempty"`
		OccurredAt  string `json:"occurredAt,omitempty"`
	}{in.Status, in.Location, in.TrackingURL, in.OccurredAt}
	return apiclient.Do[Shipment](ctx, s.client, http.MethodPatch, "/admin/shipments/"+in.ShipmentID+"/tracking", body)
}

// Track 订单物流
func (s *ShippingService) Track(ctx context.Context, orderID string) (Shipment, error) {
	ctx = withOp(ctx, "shipping.track")
	if err := validation.ValidateID(ctx, "orderId", orderID); err != nil {
		return Shipment{}, err
	}
	return apiclient.Do[Shipment](ctx, s.client, http.MethodGet, "/orders/"+orderID+"/tracking", nil)
}
