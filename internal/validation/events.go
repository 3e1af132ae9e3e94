package validation

// NotificationPayload 实时通知事件
type NotificationPayload struct {
	ID        string `json:"id,omitempty" validate:"omitempty,objectid"`
	Type      string `json:"type" validate:"required,max=50"`
	Title     string `json:"title" validate:"required,max=200"`
	Message   string `json:"message" validate:"required,max=1000"`
	Link      string `json:"link,omitempty" validate:"omitempty,max=500"`
	CreatedAt string `json:"createdAt,omitempty" validate:"omitempty,isodatetime"`
}

// LowStockPayload 低库存事件；库存与阈值用指针区分缺失与 0
type LowStockPayload struct {
	ProductID    string `json:"productId" validate:"required,objectid"`
	VariantID    string `json:"variantId,omitempty" validate:"omitempty,objectid"`
	ProductName  string `json:"productName" validate:"required,max=200"`
	SKU          string `json:"sku" validate:"required,sku"`
	CurrentStock *int   `json:"currentStock" validate:"required,gte=0"`
	Threshold    *int   `json:"threshold" validate:"required,gte=0"`
}
