package minilogic

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

var binaryTokens = map[token.Token]BinaryOp{
	token.ADD:  OpAdd,
	token.SUB:  OpSub,
	token.MUL:  OpMul,
	token.QUO:  OpDiv,
	token.REM:  OpMod,
	token.AND:  OpBitAnd,
	token.OR:   OpBitOr,
	token.XOR:  OpBitXor,
	token.SHL:  OpShl,
	token.SHR:  OpShr,
	token.EQL:  OpEq,
	token.NEQ:  OpNeq,
	token.LSS:  OpLt,
	token.LEQ:  OpLte,
	token.GTR:  OpGt,
	token.GEQ:  OpGte,
	token.LAND: OpAnd,
	token.LOR:  OpOr,
}

// unsigned operators have no infix spelling and are written as calls
var unsignedCalls = map[string]BinaryOp{
	"div_un": OpDivUn,
	"rem_un": OpModUn,
	"lt_un":  OpLtUn,
	"le_un":  OpLteUn,
	"gt_un":  OpGtUn,
	"ge_un":  OpGteUn,
}

// Parse reads a condition written in Go expression syntax.
// `null` and `nil` denote the null reference, selectors such as
// `this.count` are single variables.
func Parse(src string) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse condition %q: %w", src, err)
	}
	return convert(node)
}

// MustParse is like Parse but panics on malformed input.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func convert(node ast.Expr) (Expr, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return convert(n.X)

	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, fmt.Errorf("unsupported literal %s", n.Value)
		}
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("integer literal %s: %w", n.Value, err)
		}
		return IntLit(v), nil

	case *ast.Ident:
		switch n.Name {
		case "true":
			return BoolLit(true), nil
		case "false":
			return BoolLit(false), nil
		case "null", "nil":
			return NullLit(), nil
		}
		return Var(n.Name), nil

	case *ast.SelectorExpr:
		base, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		v, ok := base.(VarExpr)
		if !ok {
			return nil, fmt.Errorf("selector on non-variable %s", base)
		}
		return Var(v.Name + "." + n.Sel.Name), nil

	case *ast.UnaryExpr:
		operand, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.NOT:
			return Not(operand), nil
		case token.SUB:
			return UnaryExpr{Op: OpNeg, Operand: operand}, nil
		case token.XOR:
			return UnaryExpr{Op: OpBitNot, Operand: operand}, nil
		case token.ADD:
			return operand, nil
		}
		return nil, fmt.Errorf("unsupported unary operator %s", n.Op)

	case *ast.BinaryExpr:
		op, ok := binaryTokens[n.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported binary operator %s", n.Op)
		}
		left, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		right, err := convert(n.Y)
		if err != nil {
			return nil, err
		}
		return Binary(op, left, right), nil

	case *ast.CallExpr:
		fn, ok := n.Fun.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported call expression")
		}
		op, ok := unsignedCalls[fn.Name]
		if !ok || len(n.Args) != 2 {
			return nil, fmt.Errorf("unsupported call %s/%d", fn.Name, len(n.Args))
		}
		left, err := convert(n.Args[0])
		if err != nil {
			return nil, err
		}
		right, err := convert(n.Args[1])
		if err != nil {
			return nil, err
		}
		return Binary(op, left, right), nil
	}

	return nil, fmt.Errorf("unsupported expression %T", node)
}
