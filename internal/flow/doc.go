// Package flow drives a graph of cards. It builds a DAG from the
// connections between cards, orders the cards topologically, and runs them
// one after another, copying every output value along its connections into
// the downstream input anchors.
package flow
