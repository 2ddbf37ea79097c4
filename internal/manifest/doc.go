// Package manifest loads node types from HCL manifests and serves them as
// node scopes and component surfaces.
//
// A manifest holds one or more node blocks:
//
//	node "double" {
//	  flow_type = "process"
//	  process   = "ArithDouble"
//
//	  component {
//	    props = ["x"]
//	    emits = ["update:y"]
//	  }
//
//	  input "x" {
//	    type     = number
//	    required = true
//	  }
//	  output "y" { type = number }
//	  event "done" { type = bool }
//
//	  default_input = { x = 2 }
//	}
//
// The process attribute names a Go function registered in the registry.
// A component URL selects the first node block of its manifest, or the
// block named after a "#" suffix. Without a component block the component
// surface mirrors the declared ports.
package manifest
