package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"shopfront/internal/pkg/ctxkey"
	"shopfront/internal/pkg/i18n"
	"shopfront/internal/pkg/xerrors"
)

const (
	validID  = "64b7f0c2a1b2c3d4e5f60718"
	validID2 = "64b7f0c2a1b2c3d4e5f60719"
	validID3 = "64b7f0c2a1b2c3d4e5f6071a"
)

func requireFields(t *testing.T, err error, fields ...string) *xerrors.ValidationError {
	t.Helper()
	require.Error(t, err)
	var vErr *xerrors.ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %T", err)
	for _, f := range fields {
		assert.True(t, vErr.Has(f), "missing violation for %s in %v", f, vErr.FieldNames())
	}
	return vErr
}

func TestIsObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{validID, true},
		{"64B7F0C2A1B2C3D4E5F60718", true},
		{"64b7f0c2a1b2c3d4e5f6071", false},
		{"64b7f0c2a1b2c3d4e5f607189", false},
		{"64b7f0c2a1b2c3d4e5f6071g", false},
		{"", false},
		{"../../admin/users", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsObjectID(tt.id))
		})
	}
}

func TestParseAddToCart(t *testing.T) {
	tests := []struct {
		name       string
		input      AddToCartInput
		wantFields []string
	}{
		{name: "有效输入", input: AddToCartInput{VariantID: validID, Quantity: 2}},
		{name: "缺少 variantId", input: AddToCartInput{Quantity: 1}, wantFields: []string{"variantId"}},
		{name: "ID 格式错误", input: AddToCartInput{VariantID: "abc", Quantity: 1}, wantFields: []string{"variantId"}},
		{name: "数量为 0", input: AddToCartInput{VariantID: validID}, wantFields: []string{"quantity"}},
		{name: "数量为负", input: AddToCartInput{VariantID: validID, Quantity: -3}, wantFields: []string{"quantity"}},
		{name: "两个字段同时违规", input: AddToCartInput{VariantID: "nope", Quantity: 0}, wantFields: []string{"variantId", "quantity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.input, got)
				return
			}
			vErr := requireFields(t, err, tt.wantFields...)
			assert.Len(t, vErr.Fields, len(tt.wantFields))
		})
	}
}

func TestParseCreateOrderNestedFields(t *testing.T) {
	in := CreateOrderInput{
		Items: []OrderItemInput{
			{VariantID: validID, Quantity: 1},
			{VariantID: "bad", Quantity: 0},
		},
		ShippingAddress: ShippingAddress{
			FullName:   "Ada Lovelace",
			Line1:      "12 Analytical St",
			City:       "London",
			PostalCode: "N1 9GU",
			Country:    "GBR",
		},
		PaymentMethod: "bitcoin",
	}

	_, err := Parse(in)
	requireFields(t, err,
		"items[1].variantId",
		"items[1].quantity",
		"shippingAddress.country",
		"paymentMethod",
	)
}

func TestCreateCouponDefaultsMinOrderAmount(t *testing.T) {
	got, err := Parse(CreateCouponInput{
		Code:          "SPRING10",
		DiscountType:  "percentage",
		DiscountValue: 10,
		ExpiresAt:     "2026-12-31T23:59:59Z",
	})
	require.NoError(t, err)
	require.NotNil(t, got.MinOrderAmount)
	assert.Equal(t, 0.0, *got.MinOrderAmount)

	minAmount := 50.0
	got, err = Parse(CreateCouponInput{
		Code:           "BIG50",
		DiscountType:   "fixed",
		DiscountValue:  50,
		MinOrderAmount: &minAmount,
		ExpiresAt:      "2026-12-31T23:59:59.500+08:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, *got.MinOrderAmount)
}

func TestCreateCouponRejects(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name       string
		input      CreateCouponInput
		wantFields []string
	}{
		{
			name:       "过期时间不是 ISO 格式",
			input:      CreateCouponInput{Code: "ABC", DiscountType: "fixed", DiscountValue: 5, ExpiresAt: "31/12/2026"},
			wantFields: []string{"expiresAt"},
		},
		{
			name:       "最低消费为负",
			input:      CreateCouponInput{Code: "ABC", DiscountType: "fixed", DiscountValue: 5, MinOrderAmount: &negative, ExpiresAt: "2026-12-31T00:00:00Z"},
			wantFields: []string{"minOrderAmount"},
		},
		{
			name:       "百分比超过 100",
			input:      CreateCouponInput{Code: "ABC", DiscountType: "percentage", DiscountValue: 120, ExpiresAt: "2026-12-31T00:00:00Z"},
			wantFields: []string{"discountValue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			requireFields(t, err, tt.wantFields...)
		})
	}
}

func TestWarrantyClaimRefinement(t *testing.T) {
	tests := []struct {
		name    string
		input   WarrantyClaimInput
		wantErr bool
	}{
		{name: "只有序列号", input: WarrantyClaimInput{SerialNumber: "SN12345", Issue: "screen flickers constantly"}},
		{name: "订单加规格", input: WarrantyClaimInput{OrderID: validID, VariantID: validID2, Issue: "battery does not charge"}},
		{name: "只有订单", input: WarrantyClaimInput{OrderID: validID, Issue: "battery does not charge"}, wantErr: true},
		{name: "什么都没有", input: WarrantyClaimInput{Issue: "battery does not charge"}, wantErr: true},
		{name: "空白序列号", input: WarrantyClaimInput{SerialNumber: "   ", Issue: "battery does not charge"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			vErr := requireFields(t, err, "serialNumber")
			assert.Equal(t, "warranty_target", vErr.Fields[0].Tag)
			assert.Contains(t, vErr.Fields[0].Message, "serial number")
		})
	}
}

func TestRefinementRunsOnlyAfterFieldChecks(t *testing.T) {
	// issue 缺失时只报告字段错误，不报告跨字段规则
	_, err := Parse(WarrantyClaimInput{})
	vErr := requireFields(t, err, "issue")
	assert.False(t, vErr.Has("serialNumber"))
}

func TestCompareProductsInput(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{name: "空", ids: nil, wantErr: true},
		{name: "一个", ids: []string{validID}, wantErr: true},
		{name: "两个", ids: []string{validID, validID2}},
		{name: "四个", ids: []string{validID, validID2, validID3, "64b7f0c2a1b2c3d4e5f6071b"}},
		{name: "五个", ids: []string{validID, validID2, validID3, "64b7f0c2a1b2c3d4e5f6071b", "64b7f0c2a1b2c3d4e5f6071c"}, wantErr: true},
		{name: "重复", ids: []string{validID, validID}, wantErr: true},
		{name: "格式错误", ids: []string{validID, "xyz"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(CompareProductsInput{ProductIDs: tt.ids})
			if tt.wantErr {
				assert.True(t, xerrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListProductsDefaultsAndQuery(t *testing.T) {
	minPrice, maxPrice := 10.0, 99.5
	got, err := Parse(ListProductsInput{Search: "  lamp ", MinPrice: &minPrice, MaxPrice: &maxPrice, Sort: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, got.Page)
	assert.Equal(t, DefaultLimit, got.Limit)

	q := got.Query()
	assert.Equal(t, "lamp", q.Get("search"))
	assert.Equal(t, "10", q.Get("minPrice"))
	assert.Equal(t, "99.5", q.Get("maxPrice"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "20", q.Get("limit"))

	_, err = Parse(ListProductsInput{MinPrice: &maxPrice, MaxPrice: &minPrice})
	requireFields(t, err, "minPrice")

	_, err = Parse(ListProductsInput{Limit: 500})
	requireFields(t, err, "limit")
}

func TestCreateReturnRequiresDetailsForOther(t *testing.T) {
	base := CreateReturnInput{
		OrderID: validID,
		Items:   []ReturnItemInput{{VariantID: validID2, Quantity: 1}},
		Reason:  "other",
	}
	_, err := Parse(base)
	requireFields(t, err, "details")

	base.Details = "arrived a week late, no longer needed"
	_, err = Parse(base)
	assert.NoError(t, err)
}

func TestSafeTextRejectsScripts(t *testing.T) {
	_, err := Parse(CreateReviewInput{
		ProductID: validID,
		Rating:    5,
		Comment:   "great <script>alert(1)</script>",
	})
	vErr := requireFields(t, err, "comment")
	assert.Equal(t, "safetext", vErr.Fields[0].Tag)
}

func TestEventPayloads(t *testing.T) {
	stock, threshold := 3, 5
	_, err := Parse(LowStockPayload{
		ProductID:    validID,
		ProductName:  "Desk Lamp",
		SKU:          "LAMP-001",
		CurrentStock: &stock,
		Threshold:    &threshold,
	})
	assert.NoError(t, err)

	_, err = Parse(LowStockPayload{ProductID: validID, ProductName: "Desk Lamp", SKU: "LAMP-001", Threshold: &threshold})
	requireFields(t, err, "currentStock")

	_, err = Parse(NotificationPayload{Type: "order_status", Title: "Shipped"})
	requireFields(t, err, "message")
}

func TestParseContextLocalisesAndTagsOperation(t *testing.T) {
	ctx := i18n.WithLanguage(context.Background(), language.Chinese)
	ctx = ctxkey.WithOperation(ctx, "cart.add")

	_, err := ParseContext(ctx, AddToCartInput{Quantity: 1})
	vErr := requireFields(t, err, "variantId")
	assert.Equal(t, "cart.add", vErr.Operation)
	assert.Equal(t, "variantId不能为空", vErr.Fields[0].Message)

	_, err = Parse(AddToCartInput{VariantID: validID, Quantity: 100})
	vErr = requireFields(t, err, "quantity")
	assert.Equal(t, "quantity must be less than or equal to 99", vErr.Fields[0].Message)
}

func TestValidateID(t *testing.T) {
	ctx := ctxkey.WithOperation(context.Background(), "product.get")
	assert.NoError(t, ValidateID(ctx, "id", validID))

	err := ValidateID(ctx, "id", "not-an-id")
	vErr := requireFields(t, err, "id")
	assert.Equal(t, "product.get", vErr.Operation)
	assert.Equal(t, "objectid", vErr.Fields[0].Tag)

	vErr = requireFields(t, ValidateID(ctx, "productId", ""), "productId")
	assert.Equal(t, "required", vErr.Fields[0].Tag)
}

func TestStringLengthMessages(t *testing.T) {
	_, err := Parse(RegisterInput{Name: "A", Email: "a@example.com", Password: "short", ConfirmPassword: "short"})
	vErr := requireFields(t, err, "name", "password")
	for _, f := range vErr.Fields {
		assert.Contains(t, f.Message, "characters")
	}

	_, err = Parse(RegisterInput{Name: "Ada", Email: "a@example.com", Password: "longenough", ConfirmPassword: "different"})
	requireFields(t, err, "confirmPassword")
}
