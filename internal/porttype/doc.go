// Package porttype is the type system shared by node ports.
//
// A port declares its type in one of several loose forms: a type name such
// as "number", a Kind, a reflect.Type, a cty.Type taken from a manifest, a
// one-element list wrapping another declaration, or a map carrying a "type"
// key. Normalize folds every form into a canonical Kind, which is what the
// schema validator and the link-compatibility check compare.
//
// The package fails open: a declaration it cannot understand, or one whose
// inspection panics, normalizes to Any and therefore constrains nothing.
package porttype
