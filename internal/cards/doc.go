// Package cards keeps the cards of a graph: each pairs a persisted
// CardConfig with the live node.Controller built from it.
//
// Cards and configs are kept in two index-aligned lists in insertion
// order. Adding a config whose id already exists updates the existing card
// instead of creating a second one.
package cards
