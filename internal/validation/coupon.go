package validation

import (
	"net/url"
	"strconv"

	"shopfront/internal/pkg/xerrors"
)

// CreateCouponInput 管理员创建优惠券；minOrderAmount 缺省为 0
type CreateCouponInput struct {
	Code           string   `json:"code" validate:"required,min=3,max=32,alphanum"`
	DiscountType   string   `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue  float64  `json:"discountValue" validate:"gt=0"`
	MinOrderAmount *float64 `json:"minOrderAmount" validate:"required,gte=0"`
	MaxUses        int      `json:"maxUses,omitempty" validate:"omitempty,gte=1"`
	ExpiresAt      string   `json:"expiresAt" validate:"required,isodatetime"`
	Description    string   `json:"description,omitempty" validate:"omitempty,max=200"`
}

func (in *CreateCouponInput) ApplyDefaults() {
	if in.MinOrderAmount == nil {
		zero := 0.0
		in.MinOrderAmount = &zero
	}
}

func (in CreateCouponInput) Refine() []xerrors.FieldError {
	if in.DiscountType == "percentage" && in.DiscountValue > 100 {
		return []xerrors.FieldError{{Field: "discountValue", Tag: "percentage"}}
	}
	return nil
}

// ValidateCouponInput 校验优惠券是否可用于指定金额
type ValidateCouponInput struct {
	Code        string  `json:"code" validate:"required,min=3,max=32,alphanum"`
	OrderAmount float64 `json:"orderAmount" validate:"gte=0"`
}

// ApplyCouponInput 将优惠券应用到当前购物车
type ApplyCouponInput struct {
	Code string `json:"code" validate:"required,min=3,max=32,alphanum"`
}

// ListCouponsInput 优惠券分页查询
type ListCouponsInput struct {
	Page   int   `json:"page" validate:"gte=1"`
	Limit  int   `json:"limit" validate:"gte=1,lte=100"`
	Active *bool `json:"active,omitempty"`
}

func (in *ListCouponsInput) ApplyDefaults() { defaultPaging(&in.Page, &in.Limit) }

// Query 转换为查询参数
func (in ListCouponsInput) Query() url.Values {
	q := pagingQuery(in.Page, in.Limit)
	if in.Active != nil {
		q.Set("active", strconv.FormatBool(*in.Active))
	}
	return q
}
