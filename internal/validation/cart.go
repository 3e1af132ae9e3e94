package validation

// AddToCartInput 加入购物车
type AddToCartInput struct {
	VariantID string `json:"variantId" validate:"required,objectid"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=99"`
}

// UpdateCartItemInput 修改购物车条目数量
type UpdateCartItemInput struct {
	ItemID   string `json:"itemId" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"gt=0,lte=99"`
}

// RemoveCartItemInput 移除购物车条目
type RemoveCartItemInput struct {
	ItemID string `json:"itemId" validate:"required,objectid"`
}
