// Package errors provides the error types returned by the LogQL compiler.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping.
//
// # Error Types Overview
//
//	┌───────────────────────────┬────────┬──────────────────────────────────────┐
//	│ Error Type                │ HTTP   │ Description                          │
//	├───────────────────────────┼────────┼──────────────────────────────────────┤
//	│ logql.ParseError          │ 400    │ Query text does not match grammar    │
//	│ MacroResolutionError      │ 400    │ Unknown or recursive user macro      │
//	│ UnsupportedConstructError │ 400    │ Recognized rule the compiler refuses │
//	│ UnsupportedOperatorError  │ 400    │ Registry has no entry for operator   │
//	│ InvalidExpressionError    │ 400    │ Bad regexp, template, time or range  │
//	└───────────────────────────┴────────┴──────────────────────────────────────┘
//
// # UnsupportedOperatorError
//
// Returned by every registry lookup that misses. The message names the
// registry kind and the key:
//
//	unsupported stream selector operator: <>
//
// # UnsupportedConstructError
//
// Returned for label_format, for OR inside a label filter pipeline and for
// aggregations in tail mode:
//
//	aggregation_operator is not supported. Only raw logs are supported
//
// # Type Checking Pattern
//
// All error types provide Is* helper functions that use errors.As
// for proper error chain unwrapping:
//
//	wrapped := fmt.Errorf("compile failed: %w", errors.NewUnsupportedOperatorError("parser", "xml"))
//	errors.IsUnsupportedOperatorError(wrapped) // returns true
//
// # Handler Error Mapping
//
// Handlers map every compiler error to 400 with IsUserError:
//
//	if errors.IsUserError(err) {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
//	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
package errors
