package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
)

func TestDiscountPolicy_Default(t *testing.T) {
	p := MustDiscountPolicy("")
	assert.Equal(t, DefaultDiscountPolicy, p.String())

	ok := Totals{Subtotal: dec("200"), Discount: dec("200"), Tax: dec("0"), Total: dec("0")}
	require.NoError(t, p.Check(PolicyInput{Totals: ok, ItemCount: 1}))

	tooMuch := Totals{Subtotal: dec("200"), Discount: dec("250"), Tax: dec("0"), Total: dec("-50")}
	err := p.Check(PolicyInput{Totals: tooMuch, ItemCount: 1})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
}

func TestDiscountPolicy_RoleAware(t *testing.T) {
	p := MustDiscountPolicy(`role == "admin" || discount <= subtotal * 0.1`)
	totals := Totals{Subtotal: dec("100"), Discount: dec("20"), Total: dec("80")}

	assert.NoError(t, p.Check(PolicyInput{Totals: totals, Role: "admin"}))
	assert.Error(t, p.Check(PolicyInput{Totals: totals, Role: "cashier"}))
}

func TestNewDiscountPolicy_Invalid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"syntax", "discount <="},
		{"unknown variable", "margin > 0"},
		{"not bool", "subtotal - discount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDiscountPolicy(tt.expr)
			assert.Error(t, err)
		})
	}
}
