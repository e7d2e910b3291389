// Package memory provides the low-level primitives for memory
// management and safe reclamation: a typed Pool, an SPSC RetireRing
// and the epoch Domain that decides when a retired object may be
// reused.
//
// The memory package is dependency-free and forms the foundation
// for concurrent object reuse in the register.
package memory
