package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAllowedDiscount(t *testing.T) {
	tests := []struct {
		name      string
		payment   PaymentType
		requested string
		want      string
	}{
		{"cash within range", PaymentCash, "5", "5"},
		{"cash at cap", PaymentCash, "8", "8"},
		{"cash above cap clamps", PaymentCash, "15", "8"},
		{"cash fractional", PaymentCash, "7.5", "7.5"},
		{"cash negative clamps to zero", PaymentCash, "-3", "0"},
		{"cash zero", PaymentCash, "0", "0"},
		{"installment never discounts", PaymentInstallment, "8", "0"},
		{"unknown payment never discounts", PaymentType("pix"), "8", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllowedDiscount(tt.payment, dec(tt.requested))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestAllowedDiscount_NeverMutatesCap(t *testing.T) {
	before := MaxDiscountPercent.String()
	_ = AllowedDiscount(PaymentCash, decimal.NewFromInt(50))
	assert.Equal(t, before, MaxDiscountPercent.String())
}
