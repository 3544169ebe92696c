// Package runtime is the reference store runtime consuming assembled
// configuration trees. It is intentionally small: the core store package
// produces configurations and stays runtime-agnostic; this package wires
// routing, commit serialization, and observation on top.
//
// Responsibilities:
//   - Build a module-node tree from a store.Config, nesting each child
//     branch under its attachment name in the parent state.
//   - Route commit/dispatch by member name; namespaced modules are addressed
//     as "path/name" from the root, non-namespaced children merge into the
//     parent namespace (collisions fail construction).
//   - Serialize commits under a single writer; actions run on the caller's
//     goroutine and settle the returned Deferred with whatever the body
//     produced.
//
// Data flow:
//
//	store.Definition -> Assemble -> runtime.New -> Commit/Dispatch/Select
//
// Observation:
//
//	Each commit and dispatch is assigned an ID and forwarded to configured
//	observe hooks; WithHistory additionally retains an in-memory record log
//	with JSON round-trip support.
package runtime
