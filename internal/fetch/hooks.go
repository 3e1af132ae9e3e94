package fetch

import (
	"context"

	"shopfront/internal/apiclient"
	"shopfront/internal/service"
	"shopfront/internal/validation"
)

// NoParams 不需要参数的 hook
type NoParams struct{}

// NewCompareHook 商品对比。少于两个商品时直接返回空结果，不发请求。
func NewCompareHook(products *service.ProductService, opts Options) *Hook[[]string, []service.Product] {
	return NewHook("compare", func(ctx context.Context, ids []string) ([]service.Product, error) {
		if len(ids) < 2 {
			return []service.Product{}, nil
		}
		return products.Compare(ctx, ids)
	}, opts)
}

// NewProductsHook 商品列表
func NewProductsHook(products *service.ProductService, opts Options) *Hook[validation.ListProductsInput, apiclient.Page[service.Product]] {
	return NewHook("products", products.List, opts)
}

// NewProductHook 商品详情
func NewProductHook(products *service.ProductService, opts Options) *Hook[string, service.Product] {
	return NewHook("product", products.Get, opts)
}

// NewOrdersHook 我的订单
func NewOrdersHook(orders *service.OrderService, opts Options) *Hook[validation.ListOrdersInput, apiclient.Page[service.Order]] {
	return NewHook("orders", orders.List, opts)
}

// NewOrderHook 订单详情
func NewOrderHook(orders *service.OrderService, opts Options) *Hook[string, service.Order] {
	return NewHook("order", orders.Get, opts)
}

// NewCartHook 购物车
func NewCartHook(cart *service.CartService, opts Options) *Hook[NoParams, service.Cart] {
	return NewHook("cart", func(ctx context.Context, _ NoParams) (service.Cart, error) {
		return cart.Get(ctx)
	}, opts)
}

// NewLowStockHook 管理端低库存列表
func NewLowStockHook(inventory *service.InventoryService, opts Options) *Hook[validation.PageInput, apiclient.Page[service.InventoryItem]] {
	return NewHook("low_stock", inventory.LowStock, opts)
}

// NewWishlistHook 收藏夹
func NewWishlistHook(wishlist *service.WishlistService, opts Options) *Hook[NoParams, service.Wishlist] {
	return NewHook("wishlist", func(ctx context.Context, _ NoParams) (service.Wishlist, error) {
		return wishlist.Get(ctx)
	}, opts)
}

// NewReviewsHook 商品评价
func NewReviewsHook(reviews *service.ReviewService, opts Options) *Hook[validation.ListReviewsInput, apiclient.Page[service.Review]] {
	return NewHook("reviews", reviews.ListForProduct, opts)
}
