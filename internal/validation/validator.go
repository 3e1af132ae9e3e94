// Package validation 定义每个出站操作的输入规则，并在任何网络调用之前完成校验
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	objectIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	skuRegex      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{1,63}$`)

	engineOnce sync.Once
	engine     *validator.Validate
)

// Engine 返回共享的 validator 实例（自定义规则只注册一次）
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = newEngine()
	})
	return engine
}

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 字段名使用 json 名称，与服务端返回的字段一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 注册自定义验证规则
	_ = v.RegisterValidation("objectid", validateObjectID)
	_ = v.RegisterValidation("isodatetime", validateISODateTime)
	_ = v.RegisterValidation("sku", validateSKU)
	_ = v.RegisterValidation("safetext", validateSafeText)

	return v
}

// IsObjectID 检查字符串是否是 24 位十六进制 ID
func IsObjectID(s string) bool {
	return objectIDRegex.MatchString(s)
}

// validateObjectID 验证 24 位十六进制 ID
func validateObjectID(fl validator.FieldLevel) bool {
	return IsObjectID(fl.Field().String())
}

// validateISODateTime 验证 ISO-8601 时间（RFC 3339，可带小数秒）
func validateISODateTime(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339Nano, fl.Field().String())
	return err == nil
}

// validateSKU 验证 SKU：字母或数字开头，2-64 位，可包含下划线和连字符
func validateSKU(fl validator.FieldLevel) bool {
	return skuRegex.MatchString(fl.Field().String())
}

// validateSafeText 验证用户输入的自由文本（评论、聊天消息）
func validateSafeText(fl validator.FieldLevel) bool {
	text := fl.Field().String()

	if utf8.RuneCountInString(text) > 5000 {
		return false
	}

	dangerousPatterns := []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "<iframe", "</iframe>", "<object", "</object>",
	}

	lowerText := strings.ToLower(text)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerText, pattern) {
			return false
		}
	}

	return true
}
