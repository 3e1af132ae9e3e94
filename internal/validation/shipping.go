package validation

// CreateShipmentInput 管理员创建发货单
type CreateShipmentInput struct {
	OrderID           string `json:"orderId" validate:"required,objectid"`
	Carrier           string `json:"carrier" validate:"required,oneof=ups fedex dhl usps other"`
	TrackingNumber    string `json:"trackingNumber" validate:"required,min=5,max=64"`
	TrackingURL       string `json:"trackingUrl,omitempty" validate:"omitempty,url"`
	EstimatedDelivery string `json:"estimatedDelivery,omitempty" validate:"omitempty,isodatetime"`
}

// UpdateTrackingInput 更新物流状态
type UpdateTrackingInput struct {
	ShipmentID  string `json:"shipmentId" validate:"required,objectid"`
	Status      string `json:"status" validate:"required,oneof=label_created in_transit out_for_delivery delivered exception"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=100"`
	TrackingURL string `json:"trackingUrl,omitempty" validate:"omitempty,url"`
	OccurredAt  string `json:"occurredAt,omitempty" validate:"omitempty,isodatetime"`
}
