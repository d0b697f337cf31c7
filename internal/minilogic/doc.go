// Package minilogic models the boxed expressions that appear in contract
// clauses and assertion conditions.
//
// Expressions are small immutable trees over integer, boolean and null
// literals and named variables. The package provides:
//   - a value model (IntValue, BoolValue, NullValue, SymbolicValue)
//   - an expression AST with signed and unsigned relational operators,
//     arithmetic, bitwise and logical operators
//   - a constant folder that never panics (division or remainder by a
//     constant zero leaves the expression unfolded)
//   - a parser for the textual condition syntax used in listings
//
// Anything that depends on program state (variables, calls) folds to a
// SymbolicValue and is left to the fact bases.
package minilogic
