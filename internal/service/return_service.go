package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// ReturnService 退货
type ReturnService struct {
	client *apiclient.Client
}

// NewReturnService 创建退货服务
func NewReturnService(client *apiclient.Client) *ReturnService {
	return &ReturnService{client: client}
}

// Create 申请退货
func (s *ReturnService) Create(ctx context.Context, in validation.CreateReturnInput) (ReturnRequest, error) {
	ctx = withOp(ctx, "return.create")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return ReturnRequest{}, err
	}
	return apiclient.Do[ReturnRequest](ctx, s.client, http.MethodPost, "/returns", in)
}

// List 我的退货申请
func (s *ReturnService) List(ctx context.Context, in validation.PageInput) (apiclient.Page[ReturnRequest], error) {
	ctx = withOp(ctx, "return.list")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[ReturnRequest]{}, err
	}
	return apiclient.DoList[ReturnRequest](ctx, s.client, http.MethodGet, "/returns", nil, apiclient.WithQuery(in.Query()))
}

// Get 退货详情
func (s *ReturnService) Get(ctx context.Context, id string) (ReturnRequest, error) {
	ctx = withOp(ctx, "return.get")
	if err := validation.ValidateID(ctx, "returnId", id); err != nil {
		return ReturnRequest{}, err
	}
	return apiclient.Do[ReturnRequest](ctx, s.client, http.MethodGet, "/returns/"+id, nil)
}
