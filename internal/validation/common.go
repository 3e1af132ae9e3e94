package validation

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// defaultPaging 分页参数缺省时填充 page=1、limit=20
func defaultPaging(page, limit *int) {
	if *page == 0 {
		*page = DefaultPage
	}
	if *limit == 0 {
		*limit = DefaultLimit
	}
}

func pagingQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setFloat(q url.Values, key string, value *float64) {
	if value != nil {
		q.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
}

// PageInput 通用分页查询
type PageInput struct {
	Page  int `json:"page" validate:"gte=1"`
	Limit int `json:"limit" validate:"gte=1,lte=100"`
}

func (in *PageInput) ApplyDefaults() { defaultPaging(&in.Page, &in.Limit) }

// Query 转换为查询参数
func (in PageInput) Query() url.Values { return pagingQuery(in.Page, in.Limit) }
