// Package macros holds the user macros a query may call.
//
// A call such as errors_of("api") parses as a user_macro node. The compiler
// asks the registry for the macro recognizing the call, renders it back to
// query text with Stringify and compiles that text instead. Expansion is a
// single level: the rendered text must not be another macro call.
package macros
