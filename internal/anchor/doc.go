// Package anchor implements the typed ports of a graph node.
//
// An Anchor is created fresh every time a node is parsed and is owned by
// exactly one Controller. Input anchors start with their declared default,
// output and event anchors start empty. Anchors of one direction are spaced
// evenly along their side at (i+1)/(n+1).
//
// The package also holds the pure link helpers a graph editor needs:
// LinkAble, HasConnection and AbsolutePosition. None of them is enforced
// when nodes execute.
package anchor
