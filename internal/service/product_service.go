package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// ProductService 商品目录。列表与详情走合并队列，多个调用方同时请求同一页只发一次。
type ProductService struct {
	client *apiclient.Client
}

// NewProductService 创建商品服务
func NewProductService(client *apiclient.Client) *ProductService {
	return &ProductService{client: client}
}

// List 商品分页列表
func (s *ProductService) List(ctx context.Context, in validation.ListProductsInput) (apiclient.Page[Product], error) {
	ctx = withOp(ctx, "product.list")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[Product]{}, err
	}
	return apiclient.QueuedList[Product](ctx, s.client, "/products", apiclient.WithQuery(in.Query()))
}

// Get 商品详情
func (s *ProductService) Get(ctx context.Context, id string) (Product, error) {
	ctx = withOp(ctx, "product.get")
	if err := validation.ValidateID(ctx, "productId", id); err != nil {
		return Product{}, err
	}
	return apiclient.QueuedDo[Product](ctx, s.client, "/products/"+id)
}

// Search 关键字搜索
func (s *ProductService) Search(ctx context.Context, in validation.SearchProductsInput) (apiclient.Page[Product], error) {
	ctx = withOp(ctx, "product.search")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[Product]{}, err
	}
	return apiclient.DoList[Product](ctx, s.client, http.MethodGet, "/products/search", nil,
		apiclient.WithQuery(in.Values()))
}

// Compare 对比 2-4 个商品
func (s *ProductService) Compare(ctx context.Context, productIDs []string) ([]Product, error) {
	ctx = withOp(ctx, "product.compare")
	in, err := validation.ParseContext(ctx, validation.CompareProductsInput{ProductIDs: productIDs})
	if err != nil {
		return nil, err
	}
	return apiclient.Do[[]Product](ctx, s.client, http.MethodGet, "/products/compare", nil,
		apiclient.WithQuery(in.Query()))
}
