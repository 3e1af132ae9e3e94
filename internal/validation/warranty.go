package validation

import (
	"strings"

	"shopfront/internal/pkg/xerrors"
)

// WarrantyClaimInput 保修申请：提供序列号，或同时提供订单 ID 与规格 ID
type WarrantyClaimInput struct {
	SerialNumber string `json:"serialNumber,omitempty" validate:"omitempty,min=4,max=64,alphanum"`
	OrderID      string `json:"orderId,omitempty" validate:"omitempty,objectid"`
	VariantID    string `json:"variantId,omitempty" validate:"omitempty,objectid"`
	Issue        string `json:"issue" validate:"required,min=10,max=1000,safetext"`
	PurchaseDate string `json:"purchaseDate,omitempty" validate:"omitempty,isodatetime"`
}

func (in *WarrantyClaimInput) ApplyDefaults() {
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
}

func (in WarrantyClaimInput) Refine() []xerrors.FieldError {
	if in.SerialNumber != "" {
		return nil
	}
	if in.OrderID != "" && in.VariantID != "" {
		return nil
	}
	return []xerrors.FieldError{{Field: "serialNumber", Tag: "warranty_target"}}
}

// WarrantyLookupInput 保修查询
type WarrantyLookupInput struct {
	SerialNumber string `json:"serialNumber" validate:"required,min=4,max=64,alphanum"`
}
