package trace

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureKeepsExistingTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	ctx, id := Ensure(ctx)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "abc", GetTraceID(ctx))
}

func TestEnsureGenerates(t *testing.T) {
	ctx, id := Ensure(context.Background())
	assert.Len(t, id, 32)
	assert.Equal(t, id, GetTraceID(ctx))
}

func TestInject(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	first := Inject(req, "trace-1")
	assert.Equal(t, "trace-1", req.Header.Get(HeaderTraceID))
	assert.Equal(t, first, req.Header.Get(HeaderRequestID))

	second := Inject(req, "trace-1")
	assert.NotEqual(t, first, second)
}
