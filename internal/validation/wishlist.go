package validation

// WishlistItemInput 收藏夹条目
type WishlistItemInput struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	VariantID string `json:"variantId,omitempty" validate:"omitempty,objectid"`
}
