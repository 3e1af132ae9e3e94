package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// InventoryService 管理员库存
type InventoryService struct {
	client *apiclient.Client
}

// NewInventoryService 创建库存服务
func NewInventoryService(client *apiclient.Client) *InventoryService {
	return &InventoryService{client: client}
}

// List 库存分页
func (s *InventoryService) List(ctx context.Context, in validation.ListInventoryInput) (apiclient.Page[InventoryItem], error) {
	ctx = withOp(ctx, "inventory.list")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[InventoryItem]{}, err
	}
	return apiclient.DoList[InventoryItem](ctx, s.client, http.MethodGet, "/admin/inventory", nil, apiclient.WithQuery(in.Query()))
}

// Adjust 调整库存
func (s *InventoryService) Adjust(ctx context.Context, in validation.AdjustStockInput) (InventoryItem, error) {
	ctx = withOp(ctx, "inventory.adjust")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return InventoryItem{}, err
	}
	body := struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
		Note   string `json:"note,omitempty"`
	}{in.Delta, in.Reason, in.Note}
	return apiclient.Do[InventoryItem](ctx, s.client, http.MethodPost, "/admin/inventory/"+in.VariantID+"/adjust", body)
}

// SetThreshold 设置低库存阈值
func (s *InventoryService) SetThreshold(ctx context.Context, in validation.SetThresholdInput) (InventoryItem, error) {
	ctx = withOp(ctx, "inventory.set_threshold")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return InventoryItem{}, err
	}
	body := map[string]int{"threshold": in.Threshold}
	return apiclient.Do[InventoryItem](ctx, s.client, http.MethodPut, "/admin/inventory/"+in.VariantID+"/threshold", body)
}

// LowStock 低于阈值的规格
func (s *InventoryService) LowStock(ctx context.Context, in validation.PageInput) (apiclient.Page[InventoryItem], error) {
	ctx = withOp(ctx, "inventory.low_stock")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.Page[InventoryItem]{}, err
	}
	return apiclient.DoList[InventoryItem](ctx, s.client, http.MethodGet, "/admin/inventory/low-stock", nil, apiclient.WithQuery(in.Query()))
}
