// # Description
//
// Package cfg builds control flow graphs for methods given as flat, labeled
// instruction streams, and annotates them with contract subroutines.
//
// ## Subroutines
//
// A Subroutine is a self-contained block graph with a unique entry and exit
// block. The kinds are:
//
//   - method bodies
//   - requires and ensures contracts
//   - old-value capture regions inside ensures
//   - fault and finally handlers
//
// Every block belongs to exactly one subroutine. Subroutines refer to each
// other only through edge subroutines attached to an edge, for example the
// callee's precondition on a BeforeCall edge, or through the fault/finally
// handlers of a method.
//
// ## Construction
//
// Construction is two passes over the instruction stream:
//
//  1. The block start gatherer finds every label that must begin a block
//     (branch targets, call sites, region boundaries).
//  2. The block builder walks the stream again, growing the current block and
//     asking the subroutine builder to link a new block at every block start.
//
// MethodCache memoizes method CFGs and the Requires/Ensures factories. A
// contract subroutine is published in its cache before its body is built, so
// mutually recursive contracts resolve to the same instance instead of
// recursing forever.
package cfg
