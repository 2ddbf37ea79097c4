// Package node turns a component's node definition into a live Controller
// and runs it.
//
// Parse loads the scope for a (component URL, card) pair, reconciles the
// definition with the component through the schema package, and builds
// the anchors. A scope can be parsed only once.
//
// Exec runs one pass: required inputs are checked, the runtime input is
// resolved, the definition's process function is called, and its result is
// written to the output anchors. Runs on the same controller are serialized.
package node
