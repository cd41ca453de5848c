package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallSpec(t *testing.T) {
	spec := NewCallSpec("GET", "/api/v3/ticker/price")

	assert.Equal(t, "GET", spec.Method)
	assert.Equal(t, "/api/v3/ticker/price", spec.Path)
	assert.NotNil(t, spec.Params)
	assert.False(t, spec.RequiresSignature)
}

func TestCallSpec_Set(t *testing.T) {
	spec := NewCallSpec("GET", "/api/v3/ticker/price")
	result := spec.Set("symbol", "BTCUSDT")

	assert.Equal(t, spec, result)
	assert.Equal(t, "BTCUSDT", spec.Params["symbol"])
}

func TestCallSpec_SetOnNilParams(t *testing.T) {
	spec := &CallSpec{Method: "GET", Path: "/x"}
	spec.Set("a", 1)

	assert.Equal(t, 1, spec.Params["a"])
}

func TestCallSpec_Signed(t *testing.T) {
	spec := NewCallSpec("GET", "/api/v3/account").Signed()

	assert.True(t, spec.RequiresSignature)
}

func TestCallSpec_InQuery(t *testing.T) {
	assert.True(t, NewCallSpec(http.MethodGet, "/x").InQuery())
	assert.True(t, NewCallSpec(http.MethodDelete, "/x").InQuery())
	assert.False(t, NewCallSpec(http.MethodPost, "/x").InQuery())
	assert.False(t, NewCallSpec(http.MethodPut, "/x").InQuery())
}

func TestCallSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    *CallSpec
		wantErr error
	}{
		{"valid_get", NewCallSpec("GET", "/x").Set("symbol", "BTCUSDT"), nil},
		{"valid_signed_put", NewCallSpec("PUT", "/x").Set("qty", 1.5).Signed(), nil},
		{"unsigned_may_carry_timestamp", NewCallSpec("GET", "/x").Set(ParamTimestamp, 1), nil},
		{"lowercase_method", NewCallSpec("get", "/x"), ErrInvalidCallSpec},
		{"unsupported_method", NewCallSpec("PATCH", "/x"), ErrInvalidCallSpec},
		{"empty_path", NewCallSpec("GET", ""), ErrInvalidCallSpec},
		{"relative_path", NewCallSpec("GET", "api/v3"), ErrInvalidCallSpec},
		{"nested_param", NewCallSpec("GET", "/x").Set("filter", map[string]any{"a": 1}), ErrNonScalarParam},
		{"nil_param", NewCallSpec("GET", "/x").Set("a", nil), ErrNonScalarParam},
		{"reserved_timestamp", NewCallSpec("GET", "/x").Set(ParamTimestamp, 1).Signed(), ErrReservedParam},
		{"reserved_signature", NewCallSpec("POST", "/x").Set(ParamSignature, "abc").Signed(), ErrReservedParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOutboundRequest_Query(t *testing.T) {
	req := &OutboundRequest{
		Method: http.MethodGet,
		URL:    "https://api.example.com/x?symbol=LTCBTC&timestamp=1000&signature=abc",
	}

	q, err := req.Query()
	require.NoError(t, err)
	assert.Equal(t, "LTCBTC", q.Get("symbol"))
	assert.Equal(t, "abc", q.Get("signature"))
	assert.Equal(t, "symbol=LTCBTC&timestamp=1000&signature=abc", req.RawQuery())
}

func TestOutboundRequest_RawQueryInvalidURL(t *testing.T) {
	req := &OutboundRequest{URL: "://bad"}

	assert.Empty(t, req.RawQuery())
	_, err := req.Query()
	assert.Error(t, err)
}
