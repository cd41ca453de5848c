package core

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_WithDoesNotMutate(t *testing.T) {
	params := Params{"symbol": "BTCUSDT"}

	stamped := params.With(ParamTimestamp, int64(1000))

	assert.False(t, params.Has(ParamTimestamp))
	assert.True(t, stamped.Has(ParamTimestamp))
	assert.Equal(t, "BTCUSDT", stamped["symbol"])
	assert.Len(t, params, 1)
}

func TestParams_CloneNil(t *testing.T) {
	var params Params

	clone := params.Clone()

	assert.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestFormatValue(t *testing.T) {
	price, _, err := apd.NewFromString("0.00010000")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "LTCBTC", "LTCBTC"},
		{"empty_string", "", ""},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int8", int8(-8), "-8"},
		{"int16", int16(16), "16"},
		{"int32", int32(32), "32"},
		{"int64", int64(1499827319559), "1499827319559"},
		{"uint", uint(7), "7"},
		{"uint8", uint8(8), "8"},
		{"uint16", uint16(16), "16"},
		{"uint32", uint32(32), "32"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float32", float32(0.5), "0.5"},
		{"float64", 0.1, "0.1"},
		{"float64_integral", float64(5000), "5000"},
		{"decimal_ptr", price, "0.00010000"},
		{"decimal_value", *price, "0.00010000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatValue_NonScalar(t *testing.T) {
	var nilDecimal *apd.Decimal

	tests := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"slice", []string{"a"}},
		{"map", map[string]any{"a": 1}},
		{"struct", struct{}{}},
		{"time", time.Now()},
		{"nil_decimal", nilDecimal},
		{"nan", math.NaN()},
		{"inf", math.Inf(-1)},
		{"float32_inf", float32(math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormatValue(tt.value)
			assert.ErrorIs(t, err, ErrNonScalarParam)
		})
	}
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, Params{"a": 1, "b": "x"}.Validate())
	assert.ErrorIs(t, Params{"a": []int{1}}.Validate(), ErrNonScalarParam)
}

func TestJSONValue(t *testing.T) {
	qty, _, err := apd.NewFromString("1.50")
	require.NoError(t, err)

	got, err := JSONValue(qty)
	require.NoError(t, err)
	assert.Equal(t, "1.50", got)

	got, err = JSONValue(int64(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)

	got, err = JSONValue(0.0000001)
	require.NoError(t, err)
	assert.Equal(t, json.Number("0.0000001"), got)

	got, err = JSONValue(float32(2.5))
	require.NoError(t, err)
	assert.Equal(t, json.Number("2.5"), got)

	_, err = JSONValue([]int{1})
	assert.ErrorIs(t, err, ErrNonScalarParam)
}
