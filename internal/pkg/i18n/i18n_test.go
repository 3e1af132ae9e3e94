package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"shopfront/internal/pkg/xerrors"
)

func TestParseLanguageCode(t *testing.T) {
	tests := []struct {
		code string
		want language.Tag
	}{
		{code: "", want: DefaultLanguage},
		{code: "en-US", want: language.English},
		{code: "zh-CN", want: language.Chinese},
		{code: "zh", want: language.Chinese},
		{code: "not a tag!!", want: DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguageCode(tt.code))
		})
	}
}

func TestTranslateValidationMessage(t *testing.T) {
	en := Translate(language.English, ValidationKey("gt"), "quantity", "0")
	assert.Equal(t, "quantity must be greater than 0", en)

	zh := Translate(language.Chinese, ValidationKey("required"), "variantId")
	assert.Equal(t, "variantId不能为空", zh)

	ctx := WithLanguage(context.Background(), language.Chinese)
	assert.Equal(t, language.Chinese, GetLanguage(ctx))
	assert.Equal(t, "zh", GetLanguageCode(GetLanguage(ctx)))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "Please sign in", GetErrorMessage(xerrors.CodeAuthenticationFailed, language.English))
	assert.Equal(t, "请先登录", GetErrorMessage(xerrors.CodeAuthenticationFailed, language.Chinese))
	assert.Equal(t, "Unknown error", GetErrorMessage(xerrors.ErrorCode(1), language.English))
}
