package validation

import (
	"context"

	"golang.org/x/text/language"

	"shopfront/internal/pkg/ctxkey"
	"shopfront/internal/pkg/i18n"
	"shopfront/internal/pkg/xerrors"
)

// Defaulter 在字段校验之前补齐可选字段的默认值
type Defaulter interface {
	ApplyDefaults()
}

// Refiner 跨字段规则，仅在逐字段校验全部通过后执行
type Refiner interface {
	Refine() []xerrors.FieldError
}

// Parse 使用默认语言校验输入
func Parse[T any](in T) (T, error) {
	return parse(i18n.DefaultLanguage, "", in)
}

// ParseContext 校验输入，消息语言与操作名取自 context
func ParseContext[T any](ctx context.Context, in T) (T, error) {
	return parse(i18n.GetLanguage(ctx), ctxkey.GetString(ctx, ctxkey.Operation), in)
}

// parse 顺序：默认值 -> 逐字段（收集全部违规）-> 跨字段。成功时返回规范化后的值。
func parse[T any](lang language.Tag, operation string, in T) (T, error) {
	if d, ok := any(&in).(Defaulter); ok {
		d.ApplyDefaults()
	}

	if err := Engine().Struct(&in); err != nil {
		var zero T
		return zero, &xerrors.ValidationError{
			Operation: operation,
			Fields:    TranslateValidationErrors(err, lang),
		}
	}

	if r, ok := any(&in).(Refiner); ok {
		if fields := r.Refine(); len(fields) > 0 {
			for i := range fields {
				if fields[i].Message == "" {
					fields[i].Message = Message(lang, fields[i].Tag, fields[i].Field, fields[i].Param)
				}
			}
			var zero T
			return zero, &xerrors.ValidationError{Operation: operation, Fields: fields}
		}
	}

	return in, nil
}

// ValidateID 校验单个路径参数 ID
func ValidateID(ctx context.Context, field, id string) error {
	if err := Engine().Var(id, "required,objectid"); err != nil {
		fields := TranslateValidationErrors(err, i18n.GetLanguage(ctx))
		for i := range fields {
			fields[i].Field = field
			fields[i].Message = Message(i18n.GetLanguage(ctx), fields[i].Tag, field, fields[i].Param)
		}
		return &xerrors.ValidationError{
			Operation: ctxkey.GetString(ctx, ctxkey.Operation),
			Fields:    fields,
		}
	}
	return nil
}
