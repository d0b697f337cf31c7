// Package verify collects the proof obligations of a method and evaluates
// them against a fact query.
//
// An obligation is an explicit assertion, an assumption written by the
// user, or one of the method's postconditions. Preconditions of callees
// that are re-checked at call sites belong to the callee and are never
// collected.
package verify
