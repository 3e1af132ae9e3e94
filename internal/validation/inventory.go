package validation

import (
	"net/url"
	"strconv"
)

// AdjustStockInput 调整库存，delta 为正表示入库
type AdjustStockInput struct {
	VariantID string `json:"variantId" validate:"required,objectid"`
	Delta     int    `json:"delta" validate:"ne=0,gte=-100000,lte=100000"`
	Reason    string `json:"reason" validate:"required,oneof=restock sale return damage correction"`
	Note      string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// SetThresholdInput 设置低库存阈值
type SetThresholdInput struct {
	VariantID string `json:"variantId" validate:"required,objectid"`
	Threshold int    `json:"threshold" validate:"gte=0,lte=100000"`
}

// ListInventoryInput 库存分页查询
type ListInventoryInput struct {
	Page         int    `json:"page" validate:"gte=1"`
	Limit        int    `json:"limit" validate:"gte=1,lte=100"`
	Search       string `json:"search,omitempty" validate:"omitempty,max=100"`
	LowStockOnly bool   `json:"lowStockOnly,omitempty"`
}

func (in *ListInventoryInput) ApplyDefaults() { defaultPaging(&in.Page, &in.Limit) }

// Query 转换为查询参数
func (in ListInventoryInput) Query() url.Values {
	q := pagingQuery(in.Page, in.Limit)
	setIfNotEmpty(q, "search", in.Search)
	if in.LowStockOnly {
		q.Set("lowStock", strconv.FormatBool(true))
	}
	return q
}
