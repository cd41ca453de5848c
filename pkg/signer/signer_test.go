package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signproxy/pkg/core"
)

func referenceHMAC(secret, msg string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name   string
		params core.Params
		want   string
	}{
		{"empty", core.Params{}, ""},
		{"nil", nil, ""},
		{"single", core.Params{"timestamp": int64(1000)}, "timestamp=1000"},
		{
			name:   "sorted_bytewise",
			params: core.Params{"symbol": "BTCUSDT", "Side": "BUY", "amount": "1", "timestamp": int64(5)},
			want:   "Side=BUY&amount=1&symbol=BTCUSDT&timestamp=5",
		},
		{
			name:   "values_escaped",
			params: core.Params{"address": "a b&c=d/e"},
			want:   "address=a+b%26c%3Dd%2Fe",
		},
		{
			name:   "scalar_types",
			params: core.Params{"b": true, "f": 0.5, "i": 42, "u": uint64(7)},
			want:   "b=true&f=0.5&i=42&u=7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_Decimal(t *testing.T) {
	amount, _, err := apd.NewFromString("0.00010000")
	require.NoError(t, err)

	got, err := Canonicalize(core.Params{"amount": amount})
	require.NoError(t, err)
	assert.Equal(t, "amount=0.00010000", got)
}

func TestCanonicalize_NonScalar(t *testing.T) {
	_, err := Canonicalize(core.Params{"list": []string{"a"}})
	assert.ErrorIs(t, err, core.ErrNonScalarParam)

	_, err = Canonicalize(core.Params{"nested": map[string]any{"a": 1}})
	assert.ErrorIs(t, err, core.ErrNonScalarParam)
}

func TestCanonicalize_InsertionOrderIndependent(t *testing.T) {
	a := core.Params{}
	a["symbol"] = "ETHUSDT"
	a["limit"] = 10
	a["timestamp"] = int64(1000)

	b := core.Params{}
	b["timestamp"] = int64(1000)
	b["symbol"] = "ETHUSDT"
	b["limit"] = 10

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.Equal(t, Sign("secret", ca), Sign("secret", cb))
}

func TestSign_KnownVector(t *testing.T) {
	got := Sign("S", "timestamp=1000")

	assert.Equal(t, referenceHMAC("S", "timestamp=1000"), got)
	assert.Len(t, got, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", got)
}

func TestSign_Deterministic(t *testing.T) {
	first := Sign("secret", "symbol=BTCUSDT&timestamp=1000")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Sign("secret", "symbol=BTCUSDT&timestamp=1000"))
	}
}

func TestSign_SensitiveToInput(t *testing.T) {
	base := Sign("secret", "symbol=BTCUSDT&timestamp=1000")

	assert.NotEqual(t, base, Sign("secret", "symbol=ETHUSDT&timestamp=1000"))
	assert.NotEqual(t, base, Sign("secret", "symbol=BTCUSDT&timestamp=1001"))
	assert.NotEqual(t, base, Sign("secret", "ticker=BTCUSDT&timestamp=1000"))
	assert.NotEqual(t, base, Sign("other", "symbol=BTCUSDT&timestamp=1000"))
}

func TestVerify(t *testing.T) {
	sig := Sign("secret", "timestamp=1000")

	assert.True(t, Verify("secret", "timestamp=1000", sig))
	assert.False(t, Verify("secret", "timestamp=1001", sig))
	assert.False(t, Verify("wrong", "timestamp=1000", sig))
	assert.False(t, Verify("secret", "timestamp=1000", "not-hex"))
}
