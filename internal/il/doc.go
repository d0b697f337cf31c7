// Package il defines the labeled instruction stream consumed by the CFG
// builder, and the provider interfaces through which a front end exposes
// method bodies, exception regions, metadata and contracts.
//
// Labels are opaque, totally ordered program points local to one code
// provider. Instructions form a closed set of kinds (Op); consumers switch
// over Instruction.Op instead of implementing visitor callbacks.
package il
