package validation

import (
	"strings"

	"shopfront/internal/pkg/xerrors"
)

// ReturnItemInput 退货条目
type ReturnItemInput struct {
	VariantID string `json:"variantId" validate:"required,objectid"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=99"`
}

// CreateReturnInput 申请退货
type CreateReturnInput struct {
	OrderID string            `json:"orderId" validate:"required,objectid"`
	Items   []ReturnItemInput `json:"items" validate:"required,min=1,dive"`
	Reason  string            `json:"reason" validate:"required,oneof=defective wrong_item not_as_described changed_mind other"`
	Details string            `json:"details,omitempty" validate:"omitempty,max=1000,safetext"`
}

func (in CreateReturnInput) Refine() []xerrors.FieldError {
	if in.Reason == "other" && strings.TrimSpace(in.Details) == "" {
		return []xerrors.FieldError{{Field: "details", Tag: "details_required"}}
	}
	return nil
}
