package minilogic

// Expr represents a boxed expression.
type Expr interface {
	isExpr()
	String() string
}

// LiteralExpr represents a literal value (int, bool, null).
type LiteralExpr struct {
	Val Value
}

func (LiteralExpr) isExpr() {}
func (e LiteralExpr) String() string {
	return e.Val.String()
}

// VarExpr represents a variable reference.
type VarExpr struct {
	Name string
}

func (VarExpr) isExpr() {}
func (e VarExpr) String() string {
	return e.Name
}

// BinaryOp represents binary operators.
type BinaryOp int

const (
	_ BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpDivUn
	OpMod
	OpModUn
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpLtUn
	OpLteUn
	OpGtUn
	OpGteUn
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpDivUn:
		return "/un"
	case OpMod:
		return "%"
	case OpModUn:
		return "%un"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLtUn:
		return "<un"
	case OpLteUn:
		return "<=un"
	case OpGtUn:
		return ">un"
	case OpGteUn:
		return ">=un"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// IsRelational reports whether op compares its operands and yields a boolean.
func (op BinaryOp) IsRelational() bool {
	return op >= OpEq && op <= OpGteUn
}

// IsUnsigned reports whether op interprets its operands as unsigned.
func (op BinaryOp) IsUnsigned() bool {
	switch op {
	case OpDivUn, OpModUn, OpLtUn, OpLteUn, OpGtUn, OpGteUn:
		return true
	default:
		return false
	}
}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (BinaryExpr) isExpr() {}
func (e BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// UnaryOp represents unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpBitNot
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	case OpBitNot:
		return "^"
	default:
		return "?"
	}
}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

func (UnaryExpr) isExpr() {}
func (e UnaryExpr) String() string {
	return "(" + e.Op.String() + e.Operand.String() + ")"
}

// Helper functions to construct AST nodes

// IntLit creates an integer literal expression.
func IntLit(v int64) Expr {
	return LiteralExpr{Val: IntValue{Val: v}}
}

// BoolLit creates a boolean literal expression.
func BoolLit(v bool) Expr {
	return LiteralExpr{Val: BoolValue{Val: v}}
}

// NullLit creates a null literal expression.
func NullLit() Expr {
	return LiteralExpr{Val: NullValue{}}
}

// Var creates a variable reference expression.
func Var(name string) Expr {
	return VarExpr{Name: name}
}

// Binary creates a binary expression.
func Binary(op BinaryOp, left, right Expr) Expr {
	return BinaryExpr{Op: op, Left: left, Right: right}
}

// Not creates a logical not expression.
func Not(e Expr) Expr {
	return UnaryExpr{Op: OpNot, Operand: e}
}

// And creates a logical and expression.
func And(left, right Expr) Expr {
	return BinaryExpr{Op: OpAnd, Left: left, Right: right}
}

// Or creates a logical or expression.
func Or(left, right Expr) Expr {
	return BinaryExpr{Op: OpOr, Left: left, Right: right}
}

// Eq creates an equality expression.
func Eq(left, right Expr) Expr {
	return BinaryExpr{Op: OpEq, Left: left, Right: right}
}

// Neq creates a not-equal expression.
func Neq(left, right Expr) Expr {
	return BinaryExpr{Op: OpNeq, Left: left, Right: right}
}

// Lt creates a signed less-than expression.
func Lt(left, right Expr) Expr {
	return BinaryExpr{Op: OpLt, Left: left, Right: right}
}

// Variables returns the distinct variable names referenced by e,
// in first-occurrence order.
func Variables(e Expr) []string {
	var names []string
	seen := make(map[string]struct{})
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case VarExpr:
			if _, ok := seen[x.Name]; !ok {
				seen[x.Name] = struct{}{}
				names = append(names, x.Name)
			}
		case BinaryExpr:
			walk(x.Left)
			walk(x.Right)
		case UnaryExpr:
			walk(x.Operand)
		}
	}
	walk(e)
	return names
}
