package minilogic

// Fold constant-folds an expression. Variables and anything that depends on
// them fold to a SymbolicValue. Division or remainder by zero and negative
// shift counts are not folded.
func Fold(expr Expr) Value {
	switch e := expr.(type) {
	case LiteralExpr:
		return e.Val

	case VarExpr:
		return SymbolicValue{Name: e.Name}

	case BinaryExpr:
		left := Fold(e.Left)
		// logical operators short-circuit on a decided left operand
		if e.Op == OpAnd || e.Op == OpOr {
			if b, ok := Truth(left); ok {
				if e.Op == OpAnd && !b {
					return BoolValue{Val: false}
				}
				if e.Op == OpOr && b {
					return BoolValue{Val: true}
				}
			}
		}
		right := Fold(e.Right)
		return evalBinary(e.Op, left, right)

	case UnaryExpr:
		return evalUnary(e.Op, Fold(e.Operand))

	default:
		return SymbolicValue{Name: "unknown"}
	}
}

// FoldTruth folds expr and reads the result as a boolean.
// The second result is false when expr is not constant.
func FoldTruth(expr Expr) (bool, bool) {
	return Truth(Fold(expr))
}

func evalBinary(op BinaryOp, left, right Value) Value {
	if op == OpAnd || op == OpOr {
		l, lok := Truth(left)
		r, rok := Truth(right)
		switch {
		case lok && rok && op == OpAnd:
			return BoolValue{Val: l && r}
		case lok && rok:
			return BoolValue{Val: l || r}
		case rok && op == OpAnd && !r:
			return BoolValue{Val: false}
		case rok && op == OpOr && r:
			return BoolValue{Val: true}
		}
		return SymbolicValue{Name: "binary_result"}
	}

	l, lok := asInt(left)
	r, rok := asInt(right)
	if !lok || !rok {
		return SymbolicValue{Name: "binary_result"}
	}

	switch op {
	case OpAdd:
		return IntValue{Val: l + r}
	case OpSub:
		return IntValue{Val: l - r}
	case OpMul:
		return IntValue{Val: l * r}

	case OpDiv:
		if r != 0 {
			return IntValue{Val: l / r}
		}
	case OpDivUn:
		if r != 0 {
			return IntValue{Val: int64(uint64(l) / uint64(r))}
		}
	case OpMod:
		if r != 0 {
			return IntValue{Val: l % r}
		}
	case OpModUn:
		if r != 0 {
			return IntValue{Val: int64(uint64(l) % uint64(r))}
		}

	case OpBitAnd:
		return IntValue{Val: l & r}
	case OpBitOr:
		return IntValue{Val: l | r}
	case OpBitXor:
		return IntValue{Val: l ^ r}
	// out-of-range shift counts are left unfolded
	case OpShl:
		if r >= 0 && r < 64 {
			return IntValue{Val: l << uint(r)}
		}
	case OpShr:
		if r >= 0 && r < 64 {
			return IntValue{Val: l >> uint(r)}
		}

	case OpEq:
		return BoolValue{Val: l == r}
	case OpNeq:
		return BoolValue{Val: l != r}
	case OpLt:
		return BoolValue{Val: l < r}
	case OpLte:
		return BoolValue{Val: l <= r}
	case OpGt:
		return BoolValue{Val: l > r}
	case OpGte:
		return BoolValue{Val: l >= r}
	case OpLtUn:
		return BoolValue{Val: uint64(l) < uint64(r)}
	case OpLteUn:
		return BoolValue{Val: uint64(l) <= uint64(r)}
	case OpGtUn:
		return BoolValue{Val: uint64(l) > uint64(r)}
	case OpGteUn:
		return BoolValue{Val: uint64(l) >= uint64(r)}
	}

	return SymbolicValue{Name: "binary_result"}
}

func evalUnary(op UnaryOp, operand Value) Value {
	switch op {
	case OpNot:
		if b, ok := Truth(operand); ok {
			return BoolValue{Val: !b}
		}
	case OpNeg:
		if i, ok := asInt(operand); ok {
			return IntValue{Val: -i}
		}
	case OpBitNot:
		if i, ok := asInt(operand); ok {
			return IntValue{Val: ^i}
		}
	}
	return SymbolicValue{Name: "unary_result"}
}
