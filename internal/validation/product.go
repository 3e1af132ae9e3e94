package validation

import (
	"net/url"
	"strings"

	"shopfront/internal/pkg/xerrors"
)

// ListProductsInput 商品列表查询
type ListProductsInput struct {
	Page     int      `json:"page" validate:"gte=1"`
	Limit    int      `json:"limit" validate:"gte=1,lte=100"`
	Category string   `json:"category,omitempty" validate:"omitempty,objectid"`
	Search   string   `json:"search,omitempty" validate:"omitempty,max=100"`
	MinPrice *float64 `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	Sort     string   `json:"sort,omitempty" validate:"omitempty,oneof=newest price_asc price_desc rating popular"`
}

func (in *ListProductsInput) ApplyDefaults() {
	defaultPaging(&in.Page, &in.Limit)
	in.Search = strings.TrimSpace(in.Search)
}

func (in ListProductsInput) Refine() []xerrors.FieldError {
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return []xerrors.FieldError{{Field: "minPrice", Tag: "price_range"}}
	}
	return nil
}

// Query 转换为查询参数
func (in ListProductsInput) Query() url.Values {
	q := pagingQuery(in.Page, in.Limit)
	setIfNotEmpty(q, "category", in.Category)
	setIfNotEmpty(q, "search", in.Search)
	setFloat(q, "minPrice", in.MinPrice)
	setFloat(q, "maxPrice", in.MaxPrice)
	setIfNotEmpty(q, "sort", in.Sort)
	return q
}

// SearchProductsInput 关键字搜索
type SearchProductsInput struct {
	Query string `json:"q" validate:"required,min=1,max=100"`
	Page  int    `json:"page" validate:"gte=1"`
	Limit int    `json:"limit" validate:"gte=1,lte=100"`
}

func (in *SearchProductsInput) ApplyDefaults() {
	defaultPaging(&in.Page, &in.Limit)
	in.Query = strings.TrimSpace(in.Query)
}

// Values 转换为查询参数
func (in SearchProductsInput) Values() url.Values {
	q := pagingQuery(in.Page, in.Limit)
	q.Set("q", in.Query)
	return q
}

// CompareProductsInput 商品对比，2-4 个不重复的商品
type CompareProductsInput struct {
	ProductIDs []string `json:"productIds" validate:"required,min=2,max=4,unique,dive,objectid"`
}

// Query 转换为查询参数
func (in CompareProductsInput) Query() url.Values {
	q := url.Values{}
	q.Set("ids", strings.Join(in.ProductIDs, ","))
	return q
}
