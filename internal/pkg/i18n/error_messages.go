// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"shopfront/internal/pkg/xerrors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorMessages 错误码的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	xerrors.CodeInternalError:     {language.Chinese: "客户端内部错误", language.English: "Something went wrong"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid input"},
	xerrors.CodeInvalidResponse:   {language.Chinese: "响应格式错误", language.English: "Unexpected response from server"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求过于频繁", language.English: "Too many requests, slow down"},

	xerrors.CodeAuthenticationFailed: {language.Chinese: "请先登录", language.English: "Please sign in"},
	xerrors.CodeSessionExpired:       {language.Chinese: "会话已过期，请重新登录", language.English: "Your session has expired, please sign in again"},
	xerrors.CodePermissionDenied:     {language.Chinese: "权限不足", language.English: "You do not have permission to do that"},

	xerrors.CodeExternalServiceError: {language.Chinese: "服务暂时不可用", language.English: "The service is temporarily unavailable"},
	xerrors.CodeServiceUnavailable:   {language.Chinese: "服务暂时不可用", language.English: "The service is temporarily unavailable"},
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		if msg, ok := messages[DefaultLanguage]; ok {
			return msg
		}
	}
	if lang == language.Chinese {
		return "未知错误"
	}
	return "Unknown error"
}

// 校验规则的消息模板，参数依次为字段名与规则参数
var validationMessages = map[string]map[language.Tag]string{
	"required":    {language.English: "%[1]s is required", language.Chinese: "%[1]s不能为空"},
	"objectid":    {language.English: "%[1]s must be a 24-character hexadecimal id", language.Chinese: "%[1]s必须是24位十六进制ID"},
	"isodatetime": {language.English: "%[1]s must be an ISO-8601 date-time", language.Chinese: "%[1]s必须是ISO-8601时间格式"},
	"url":         {language.English: "%[1]s must be a valid URL", language.Chinese: "%[1]s格式不正确,请输入有效的URL"},
	"email":       {language.English: "%[1]s must be a valid email address", language.Chinese: "%[1]s格式不正确,请输入有效的邮箱地址"},
	"min.string":  {language.English: "%[1]s must be at least %[2]s characters", language.Chinese: "%[1]s长度不能少于%[2]s个字符"},
	"max.string":  {language.English: "%[1]s must be at most %[2]s characters", language.Chinese: "%[1]s长度不能超过%[2]s个字符"},
	"min.slice":   {language.English: "%[1]s must contain at least %[2]s items", language.Chinese: "%[1]s至少包含%[2]s项"},
	"max.slice":   {language.English: "%[1]s must contain at most %[2]s items", language.Chinese: "%[1]s最多包含%[2]s项"},
	"min":         {language.English: "%[1]s must be at least %[2]s", language.Chinese: "%[1]s不能小于%[2]s"},
	"max":         {language.English: "%[1]s must be at most %[2]s", language.Chinese: "%[1]s不能大于%[2]s"},
	"gt":          {language.English: "%[1]s must be greater than %[2]s", language.Chinese: "%[1]s必须大于%[2]s"},
	"gte":         {language.English: "%[1]s must be greater than or equal to %[2]s", language.Chinese: "%[1]s必须大于或等于%[2]s"},
	"lte":         {language.English: "%[1]s must be less than or equal to %[2]s", language.Chinese: "%[1]s必须小于或等于%[2]s"},
	"len":         {language.English: "%[1]s must have length %[2]s", language.Chinese: "%[1]s长度必须为%[2]s"},
	"oneof":       {language.English: "%[1]s must be one of: %[2]s", language.Chinese: "%[1]s的值必须是以下之一: %[2]s"},
	"unique":      {language.English: "%[1]s must not contain duplicates", language.Chinese: "%[1]s中包含重复的值"},
	"sku":         {language.English: "%[1]s must be a valid SKU", language.Chinese: "%[1]s必须是有效的SKU"},
	"eqfield":     {language.English: "%[1]s must match %[2]s", language.Chinese: "%[1]s必须与%[2]s相同"},
	"ne":          {language.English: "%[1]s must not be %[2]s", language.Chinese: "%[1]s不能为%[2]s"},
	"safetext":    {language.English: "%[1]s contains unsafe content", language.Chinese: "%[1]s包含不安全的内容"},

	// 跨字段规则
	"warranty_target":  {language.English: "provide a serial number or both an order id and a variant id", language.Chinese: "请提供序列号，或同时提供订单ID和商品规格ID"},
	"price_range":      {language.English: "%[1]s must not exceed maxPrice", language.Chinese: "%[1]s不能大于最高价格"},
	"percentage":       {language.English: "%[1]s must be at most 100 for percentage discounts", language.Chinese: "百分比折扣的%[1]s不能超过100"},
	"details_required": {language.English: "%[1]s is required when the reason is other", language.Chinese: "退货原因为其他时必须填写%[1]s"},
	"default":     {language.English: "%[1]s is invalid (%[2]s)", language.Chinese: "%[1]s验证失败: %[2]s"},
}

// ValidationKey 校验消息在 catalog 中的 key
func ValidationKey(rule string) string {
	return "validation." + rule
}

// HasValidationMessage 是否为该规则注册了模板
func HasValidationMessage(rule string) bool {
	_, ok := validationMessages[rule]
	return ok
}

func init() {
	for rule, messages := range validationMessages {
		for lang, msg := range messages {
			_ = message.SetString(lang, ValidationKey(rule), msg)
		}
	}
}
