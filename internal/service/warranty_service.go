package service

import (
	"context"
	"net/http"
	"net/url"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// WarrantyService 保修
type WarrantyService struct {
	client *apiclient.Client
}

// NewWarrantyService 创建保修服务
func NewWarrantyService(client *apiclient.Client) *WarrantyService {
	return &WarrantyService{client: client}
}

// Claim 提交保修：序列号，或订单 ID + 规格 ID
func (s *WarrantyService) Claim(ctx context.Context, in validation.WarrantyClaimInput) (WarrantyClaim, error) {
	ctx = withOp(ctx, "warranty.claim")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return WarrantyClaim{}, err
	}
	return apiclient.Do[WarrantyClaim](ctx, s.client, http.MethodPost, "/warranty/claims", in)
}

// Lookup 按序列号查询保修状态
func (s *WarrantyService) Lookup(ctx context.Context, in validation.WarrantyLookupInput) (WarrantyStatus, error) {
	ctx = withOp(ctx, "warranty.lookup")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return WarrantyStatus{}, err
	}
	return apiclient.Do[WarrantyStatus](ctx, s.client, http.MethodGet, "/warranty/"+url.PathEscape(in.SerialNumber), nil)
}
