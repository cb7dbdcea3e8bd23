// Package errors provides coded, actionable errors for the lumen CLI.
//
// Each code maps to a category, a short message and a longer detail.
// Callers add the offending file, a hint and the underlying cause:
//
//	err := errors.New("L002").
//	    WithFile("app.yaml").
//	    WithHint("components need a selector and a template").
//	    Wrap(cause)
//
//	errors.Print(os.Stderr, err)
//	// ERROR L002: Manifest is invalid
//	//
//	//   app.yaml
//	//
//	//   The manifest could not be decoded into component definitions.
//	//
//	//   Hint: components need a selector and a template
//	//
//	//   Cause: yaml: line 3: did not find expected key
package errors
