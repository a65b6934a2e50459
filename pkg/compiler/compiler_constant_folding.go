package compiler

import (
	"math"
	"nonek/pkg/ast"
	"nonek/pkg/token"
)

// foldConstants evaluates integer arithmetic whose operands are all literals.
// It reports false if the expression cannot be folded. True division and
// comparisons are never folded, and neither is division by zero or anything
// that leaves the int64 range; Python evaluates those itself.
func foldConstants(node ast.Node) (int64, bool) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		if n.Overflow {
			return 0, false
		}
		return n.Value, true

	case *ast.UnaryOp:
		value, ok := foldConstants(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op.Type {
		case token.MINUS:
			if value == math.MinInt64 {
				return 0, false
			}
			return -value, true
		case token.PLUS:
			return value, true
		}
		return 0, false

	case *ast.BinaryOp:
		left, ok := foldConstants(n.Left)
		if !ok {
			return 0, false
		}
		right, ok := foldConstants(n.Right)
		if !ok {
			return 0, false
		}

		switch n.Op.Type {
		case token.PLUS:
			return addChecked(left, right)
		case token.MINUS:
			if right == math.MinInt64 {
				return 0, false
			}
			return addChecked(left, -right)
		case token.MUL:
			return mulChecked(left, right)
		case token.DIV:
			if right == 0 || (left == math.MinInt64 && right == -1) {
				return 0, false
			}
			return floorDiv(left, right), true
		case token.MOD:
			if right == 0 {
				return 0, false
			}
			if right == -1 {
				return 0, true
			}
			return left - floorDiv(left, right)*right, true
		}
	}
	return 0, false
}

// floorDiv rounds toward negative infinity, like Python's //.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func addChecked(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return product, true
}
