package service

import "shopfront/internal/apiclient"

// Container 服务容器：所有服务共享同一个 API 客户端（令牌、合并队列、熔断器）
type Container struct {
	Client *apiclient.Client

	Auth      *AuthService
	Products  *ProductService
	Cart      *CartService
	Orders    *OrderService
	Payments  *PaymentService
	Coupons   *CouponService
	Inventory *InventoryService
	Shipping  *ShippingService
	Wishlist  *WishlistService
	Reviews   *ReviewService
	Returns   *ReturnService
	Warranty  *WarrantyService
	Chat      *ChatService
}

// NewContainer 创建服务容器
func NewContainer(client *apiclient.Client) *Container {
	return &Container{
		Client:    client,
		Auth:      NewAuthService(client),
		Products:  NewProductService(client),
		Cart:      NewCartService(client),
		Orders:    NewOrderService(client),
		Payments:  NewPaymentService(client),
		Coupons:   NewCouponService(client),
		Inventory: NewInventoryService(client),
		Shipping:  NewShippingService(client),
		Wishlist:  NewWishlistService(client),
		Reviews:   NewReviewService(client),
		Returns:   NewReturnService(client),
		Warranty:  NewWarrantyService(client),
		Chat:      NewChatService(client),
	}
}
