package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// CartService 购物车
type CartService struct {
	client *apiclient.Client
}

// NewCartService 创建购物车服务
func NewCartService(client *apiclient.Client) *CartService {
	return &CartService{client: client}
}

// Get 当前购物车
func (s *CartService) Get(ctx context.Context) (Cart, error) {
	ctx = withOp(ctx, "cart.get")
	return apiclient.Do[Cart](ctx, s.client, http.MethodGet, "/cart", nil)
}

// AddItem 加入购物车
func (s *CartService) AddItem(ctx context.Context, in validation.AddToCartInput) (Cart, error) {
	ctx = withOp(ctx, "cart.add")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Cart{}, err
	}
	return apiclient.Do[Cart](ctx, s.client, http.MethodPost, "/cart/items", in)
}

// UpdateItem 修改条目数量
func (s *CartService) UpdateItem(ctx context.Context, in validation.UpdateCartItemInput) (Cart, error) {
	ctx = withOp(ctx, "cart.update")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Cart{}, err
	}
	body := map[string]int{"quantity": in.Quantity}
	return apiclient.Do[Cart](ctx, s.client, http.MethodPut, "/cart/items/"+in.ItemID, body)
}

// RemoveItem 移除条目
func (s *CartService) RemoveItem(ctx context.Context, in validation.RemoveCartItemInput) (Cart, error) {
	ctx = withOp(ctx, "cart.remove")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Cart{}, err
	}
	return apiclient.Do[Cart](ctx, s.client, http.MethodDelete, "/cart/items/"+in.ItemID, nil)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context) (string, error) {
	ctx = withOp(ctx, "cart.clear")
	return apiclient.DoMessage(ctx, s.client, http.MethodDelete, "/cart", nil)
}
