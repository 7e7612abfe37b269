// Package template resolves and substitutes {{name}} placeholders in
// component payload files. Substitution is a pure text replacement pass; the
// surrounding source syntax is never parsed or validated.
package template
