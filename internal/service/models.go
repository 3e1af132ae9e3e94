package service

import "shopfront/internal/session"

// AuthResult 登录 / 注册返回
type AuthResult struct {
	User         session.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Variant 商品规格
type Variant struct {
	ID         string            `json:"id"`
	SKU        string            `json:"sku"`
	Price      float64           `json:"price"`
	Stock      int               `json:"stock"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Product 商品
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"reviewCount"`
	Variants    []Variant `json:"variants,omitempty"`
}

// CartItem 购物车条目
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Cart 购物车
type Cart struct {
	ID         string     `json:"id"`
	Items      []CartItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Discount   float64    `json:"discount"`
	Total      float64    `json:"total"`
	CouponCode string     `json:"couponCode,omitempty"`
}

// OrderItem 订单条目
type OrderItem struct {
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order 订单
type Order struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	Status        string      `json:"status"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"paymentMethod"`
	PaymentStatus string      `json:"paymentStatus,omitempty"`
	CreatedAt     string      `json:"createdAt"`
}

// PaymentIntent 支付意图
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret,omitempty"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
}

// Payment 支付结果
type Payment struct {
	ID      string  `json:"id"`
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
}

// Coupon 优惠券
type Coupon struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	MinOrderAmount float64 `json:"minOrderAmount"`
	MaxUses        int     `json:"maxUses,omitempty"`
	UsedCount      int     `json:"usedCount"`
	ExpiresAt      string  `json:"expiresAt"`
	Active         bool    `json:"active"`
}

// CouponValidation 优惠券校验结果
type CouponValidation struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Message  string  `json:"message,omitempty"`
}

// InventoryItem 库存条目
type InventoryItem struct {
	VariantID   string `json:"variantId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
	LowStock    bool   `json:"lowStock"`
}

// TrackingEvent 物流节点
type TrackingEvent struct {
	Status     string `json:"status"`
	Location   string `json:"location,omitempty"`
	OccurredAt string `json:"occurredAt"`
}

// Shipment 发货单
type Shipment struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	Carrier           string          `json:"carrier"`
	TrackingNumber    string          `json:"trackingNumber"`
	TrackingURL       string          `json:"trackingUrl,omitempty"`
	Status            string          `json:"status"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	Events            []TrackingEvent `json:"events,omitempty"`
}

// WishlistItem 收藏条目
type WishlistItem struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	AddedAt   string  `json:"addedAt,omitempty"`
}

// Wishlist 收藏夹
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

// Review 商品评价
type Review struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
}

// ReturnRequest 退货申请
type ReturnRequest struct {
	ID           string  `json:"id"`
	OrderID      string  `json:"orderId"`
	Status       string  `json:"status"`
	Reason       string  `json:"reason"`
	RefundAmount float64 `json:"refundAmount"`
	CreatedAt    string  `json:"createdAt"`
}

// WarrantyClaim 保修申请
type WarrantyClaim struct {
	ID           string `json:"id"`
	ClaimNumber  string `json:"claimNumber"`
	Status       string `json:"status"`
	SerialNumber string `json:"serialNumber,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// WarrantyStatus 保修查询结果
type WarrantyStatus struct {
	SerialNumber string `json:"serialNumber"`
	ProductName  string `json:"productName"`
	Covered      bool   `json:"covered"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
}

// Conversation 客服会话
type Conversation struct {
	ID          string `json:"id"`
	Subject     string `json:"subject,omitempty"`
	LastMessage string `json:"lastMessage,omitempty"`
	UnreadCount int    `json:"unreadCount"`
	UpdatedAt   string `json:"updatedAt"`
}

// ChatMessage 客服消息
type ChatMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
}
