package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePrice(t *testing.T) {
	valid := []string{
		"150",
		"$150",
		"€99.50",
		"£20",
		"1,500",
		"250m",
		"250m OSRS GP",
		"1.5k robux",
		"  $ 45  ",
		"3b gold",
	}
	for _, p := range valid {
		assert.NoError(t, ValidatePrice(p), "price %q should be valid", p)
	}

	invalid := []string{
		"",
		"free",
		"$",
		"dm me",
		"1oo",
		"price: 50",
		"-20",
	}
	for _, p := range invalid {
		assert.Error(t, ValidatePrice(p), "price %q should be invalid", p)
	}
}

func TestPriceValue(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"$150", 150},
		{"250m OSRS GP", 250},
		{"1,500k", 1500},
		{"garbage", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriceValue(tt.price), "price %q", tt.price)
	}
}
