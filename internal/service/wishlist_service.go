package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// WishlistService 收藏夹
type WishlistService struct {
	client *apiclient.Client
}

// NewWishlistService 创建收藏夹服务
func NewWishlistService(client *apiclient.Client) *WishlistService {
	return &WishlistService{client: client}
}

// Get 我的收藏
func (s *WishlistService) Get(ctx context.Context) (Wishlist, error) {
	ctx = withOp(ctx, "wishlist.get")
	return apiclient.Do[Wishlist](ctx, s.client, http.MethodGet, "/wishlist", nil)
}

// Add 收藏商品
func (s *WishlistService) Add(ctx context.Context, in validation.WishlistItemInput) (Wishlist, error) {
	ctx = withOp(ctx, "wishlist.add")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Wishlist{}, err
	}
	return apiclient.Do[Wishlist](ctx, s.client, http.MethodPost, "/wishlist", in)
}

// Remove 取消收藏
func (s *WishlistService) Remove(ctx context.Context, productID string) (Wishlist, error) {
	ctx = withOp(ctx, "wishlist.remove")
	if err := validation.ValidateID(ctx, "productId", productID); err != nil {
		return Wishlist{}, err
	}
	return apiclient.Do[Wishlist](ctx, s.client, http.MethodDelete, "/wishlist/"+productID, nil)
}
