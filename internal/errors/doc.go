// Package errors provides coded, actionable errors for the mfext CLI and
// servers.
//
// Every error carries a code (e.g. "E100") that maps to a registered
// template with a category, a short message and a longer explanation.
// Builders attach a suggestion, a source location or a wrapped cause:
//
//	err := errors.New("E142").
//	    WithLocationFromError(buildErr).
//	    WithSuggestion("Fix the compiler errors above and run mfext build again")
//
//	fmt.Fprint(os.Stderr, err.Format())
//
// # Categories
//
//   - routing: manifest and route discovery problems
//   - runtime: render and component loading failures
//   - protocol: component stream encoding and decoding
//   - config: mfext.json and environment problems
//   - build: build pipeline steps
//   - cli: command usage and project layout
package errors
