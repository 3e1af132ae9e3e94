package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// ReviewService 商品评价
type ReviewService struct {
	client *apiclient.Client
}

// NewReviewService 创建评价服务
func NewReviewService(client *apiclient.Client) *ReviewService {
	return &ReviewService{client: client}
}

// ListForProduct 商品评价分页，走合并队列
func (s *ReviewService) ListForProduct(ctx context.Context, in validation.ListReviewsInput) (apiclient.Page[Review], error) {
	ctx = withOp(ctx, "review.list")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[Review]{}, err
	}
	return apiclient.QueuedList[Review](ctx, s.client, "/products/"+in.ProductID+"/reviews", apiclient.WithQuery(in.Query()))
}

// Create 发表评价
func (s *ReviewService) Create(ctx context.Context, in validation.CreateReviewInput) (Review, error) {
	ctx = withOp(ctx, "review.create")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return Review{}, err
	}
	body := struct {
		Rating  int    `json:"rating"`
		Title   string `json:"title,omitempty"`
		Comment string `json:"comment"`
	}{in.Rating, in.Title, in.Comment}
	return apiclient.Do[Review](ctx, s.client, http.MethodPost, "/products/"+in.ProductID+"/reviews", body)
}

// Delete 删除自己的评价
func (s *ReviewService) Delete(ctx context.Context, reviewID string) (string, error) {
	ctx = withOp(ctx, "review.delete")
	if err := validation.ValidateID(ctx, "reviewId", reviewID); err != nil {
		return "", err
	}
	return apiclient.DoMessage(ctx, s.client, http.MethodDelete, "/reviews/"+reviewID, nil)
}
