// Package schema reconciles the ports a node definition declares with the
// surface of the component that backs it.
//
// Inputs are checked against component properties: each declared input
// needs a property of the same name, a compatible canonical type, and a
// default that conforms to its own type. Outputs are checked against the
// component's emitted events: output "x" needs an "update:x" event.
//
// Findings are advisory. CheckInputs logs its errors as one batch and still
// reports the inputs as valid; CheckOutputs only warns. Schema drift between
// a manifest and its component therefore degrades a node, it never stops
// the node from loading. The only hard failures are declarations whose
// shape cannot be normalized at all.
package schema
