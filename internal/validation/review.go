package validation

import (
	"net/url"
	"strconv"
)

// CreateReviewInput 发表评价
type CreateReviewInput struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Title     string `json:"title,omitempty" validate:"omitempty,max=100,safetext"`
	Comment   string `json:"comment" validate:"required,min=10,max=1000,safetext"`
}

// ListReviewsInput 商品评价分页查询
type ListReviewsInput struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Page      int    `json:"page" validate:"gte=1"`
	Limit     int    `json:"limit" validate:"gte=1,lte=100"`
	Rating    int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

func (in *ListReviewsInput) ApplyDefaults() { defaultPaging(&in.Page, &in.Limit) }

// Query 转换为查询参数（productId 在路径中）
func (in ListReviewsInput) Query() url.Values {
	q := pagingQuery(in.Page, in.Limit)
	if in.Rating > 0 {
		q.Set("rating", strconv.Itoa(in.Rating))
	}
	return q
}
