package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"shopfront/internal/pkg/i18n"
	"shopfront/internal/pkg/xerrors"
)

// TranslateValidationErrors 翻译所有验证错误（返回详细列表，保持字段顺序）
func TranslateValidationErrors(err error, lang language.Tag) []xerrors.FieldError {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// 非 validator 错误（例如传入了非结构体）
		return []xerrors.FieldError{{
			Field:   "input",
			Tag:     "unknown",
			Message: err.Error(),
		}}
	}

	result := make([]xerrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fieldPath(fe)
		result = append(result, xerrors.FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateFieldError(lang, field, fe),
		})
	}
	return result
}

// Message 按规则生成本地化消息，refinement 与 validator 规则共用同一套模板
func Message(lang language.Tag, rule, field, param string) string {
	if !i18n.HasValidationMessage(rule) {
		return i18n.Translate(lang, i18n.ValidationKey("default"), field, rule)
	}
	return i18n.Translate(lang, i18n.ValidationKey(rule), field, param)
}

func translateFieldError(lang language.Tag, field string, fe validator.FieldError) string {
	rule := fe.Tag()
	switch rule {
	case "min", "max":
		switch fe.Kind() {
		case reflect.String:
			rule += ".string"
		case reflect.Slice, reflect.Array, reflect.Map:
			rule += ".slice"
		}
	}
	return Message(lang, rule, field, fe.Param())
}

// fieldPath 去掉根结构体名：CreateOrderInput.items[0].variantId -> items[0].variantId
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	if fe.Field() != "" {
		return fe.Field()
	}
	return ns
}
