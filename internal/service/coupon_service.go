package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// CouponService 优惠券
type CouponService struct {
	client *apiclient.Client
}

// NewCouponService 创建优惠券服务
func NewCouponService(client *apiclient.Client) *CouponService {
	return &CouponService{client: client}
}

// Create 管理员创建优惠券，minOrderAmount 缺省为 0
func (s *CouponService) Create(ctx context.Context, in validation.CreateCouponInput) (Coupon, error) {
	ctx = withOp(ctx, "coupon.create")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Coupon{}, err
	}
	return apiclient.Do[Coupon](ctx, s.client, http.MethodPost, "/admin/coupons", in)
}

// Validate 预先校验优惠券
func (s *CouponService) Validate(ctx context.Context, in validation.ValidateCouponInput) (CouponValidation, error) {
	ctx = withOp(ctx, "coupon.validate")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return CouponValidation{}, err
	}
	return apiclient.Do[CouponValidation](ctx, s.client, http.MethodPost, "/coupons/validate", in)
}

// Apply 应用到当前购物车
func (s *CouponService) Apply(ctx context.Context, in validation.ApplyCouponInput) (Cart, error) {
	ctx = withOp(ctx, "coupon.apply")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Cart{}, err
	}
	return apiclient.Do[Cart](ctx, s.client, http.MethodPost, "/cart/coupon", in)
}

// List 管理员查看优惠券
func (s *CouponService) List(ctx context.Context, in validation.ListCouponsInput) (apiclient.Page[Coupon], error) {
	ctx = withOp(ctx, "coupon.list")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[Coupon]{}, err
	}
	return apiclient.DoList[Coupon](ctx, s.client, http.MethodGet, "/admin/coupons", nil, apiclient.WithQuery(in.Query()))
}
