// Package registry maps node type names to component descriptors and
// manifest process names to compiled Go process functions.
//
// A Registry is created once at startup with New, filled by every built-in
// Module's Register method, and then passed by reference to the manifest
// loader and the card manager. Custom types discovered while loading a
// graph are added later through Ensure.
package registry
