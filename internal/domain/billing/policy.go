package billing

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"shoppos/internal/core/apperror"
)

// DefaultDiscountPolicy rejects discounts larger than the subtotal.
const DefaultDiscountPolicy = "discount <= subtotal"

// PolicyInput is the data a discount policy sees.
type PolicyInput struct {
	Totals    Totals
	ItemCount int
	Role      string
}

// DiscountPolicy is a compiled CEL expression that must evaluate to true for
// a bill to be accepted. Variables: subtotal, discount, tax, total (double),
// item_count (int), role (string).
type DiscountPolicy struct {
	expr    string
	program cel.Program
}

// NewDiscountPolicy compiles expr. An empty expr means DefaultDiscountPolicy.
func NewDiscountPolicy(expr string) (*DiscountPolicy, error) {
	if expr == "" {
		expr = DefaultDiscountPolicy
	}

	env, err := cel.NewEnv(
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("discount", cel.DoubleType),
		cel.Variable("tax", cel.DoubleType),
		cel.Variable("total", cel.DoubleType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("role", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("discount policy env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile discount policy %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("discount policy %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("discount policy program: %w", err)
	}
	return &DiscountPolicy{expr: expr, program: program}, nil
}

// MustDiscountPolicy is NewDiscountPolicy that panics. Use in tests and for constants.
func MustDiscountPolicy(expr string) *DiscountPolicy {
	p, err := NewDiscountPolicy(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *DiscountPolicy) String() string { return p.expr }

// Check evaluates the policy. A false result is a BUSINESS_RULE_VIOLATION.
func (p *DiscountPolicy) Check(in PolicyInput) error {
	out, _, err := p.program.Eval(map[string]any{
		"subtotal":   in.Totals.Subtotal.InexactFloat64(),
		"discount":   in.Totals.Discount.InexactFloat64(),
		"tax":        in.Totals.Tax.InexactFloat64(),
		"total":      in.Totals.Total.InexactFloat64(),
		"item_count": int64(in.ItemCount),
		"role":       in.Role,
	})
	if err != nil {
		return fmt.Errorf("evaluate discount policy: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return fmt.Errorf("discount policy returned %T", out.Value())
	}
	if !allowed {
		return apperror.NewBusinessRule("discount rejected by policy").
			WithDetail("policy", p.expr).
			WithDetail("discount", in.Totals.Discount.String()).
			WithDetail("subtotal", in.Totals.Subtotal.String())
	}
	return nil
}
