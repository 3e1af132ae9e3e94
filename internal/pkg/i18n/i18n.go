// File: internal/pkg/i18n/i18n.go
package i18n

import (
	"context"
	"strings"

	"shopfront/internal/pkg/ctxkey"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 支持的语言
var (
	// 默认语言为英文，界面文案由调用方按需切换
	DefaultLanguage = language.English
	// 支持的语言列表
	SupportedLanguages = []language.Tag{
		language.English, // en
		language.Chinese, // zh
	}
	matcher = language.NewMatcher(SupportedLanguages)
)

// WithLanguage 在 context 中设置语言偏好
func WithLanguage(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, ctxkey.Language, lang)
}

// GetLanguage 从 context 中获取语言偏好
func GetLanguage(ctx context.Context) language.Tag {
	if ctx == nil {
		return DefaultLanguage
	}
	if lang, ok := ctx.Value(ctxkey.Language).(language.Tag); ok {
		return lang
	}
	return DefaultLanguage
}

// ParseLanguageCode 从语言代码解析 Tag
// 支持: "zh", "zh-CN", "en", "en-US" 等
func ParseLanguageCode(code string) language.Tag {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage
	}

	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}

	_, index, _ := matcher.Match(tag)
	return SupportedLanguages[index]
}

// Translate 直接翻译（不依赖 context）
func Translate(lang language.Tag, key message.Reference, args ...any) string {
	p := message.NewPrinter(lang)
	return p.Sprintf(key, args...)
}

// T 翻译函数 - 从 context 中获取语言并翻译
func T(ctx context.Context, key message.Reference, args ...any) string {
	return Translate(GetLanguage(ctx), key, args...)
}

// IsSupported 检查语言是否被支持
func IsSupported(lang language.Tag) bool {
	for _, supported := range SupportedLanguages {
		if lang == supported {
			return true
		}
	}
	return false
}

// GetLanguageCode 获取语言代码 (zh, en)
func GetLanguageCode(lang language.Tag) string {
	base, _ := lang.Base()
	return base.String()
}
