// Package errors provides rich error types for tag grammar loading and parsing.
//
// The error types include source location, context, and suggestions so a chat
// host can show users exactly where their tag program went wrong.
//
// # Error Types
//
// ErrorTypeSyntax: the source does not match the grammar. Carries the failing
// location, the offending lexeme and the set of expected terminals.
//
// ErrorTypeStructural: the concrete parse tree has a shape the AST builder has no
// rewrite for. This means the grammar and the builder drifted apart; it is a
// programming error, not a user error.
//
// ErrorTypeGrammar: the grammar resource is missing or malformed. Raised once at
// startup, usually several at a time inside an ErrorList.
//
// # Error Format
//
//	[syntax] unexpected end of input
//	  --> 1:8
//	  = expected: "end", NAME, ...
//	  |
//	-> 1 | if c do
//	     |        ^
//	  |
//	  = suggestion: Close the block with 'end'
//
// Use Summary for a one-line rendering and IsSyntax / IsStructural / IsGrammar to
// classify an error returned by the parser.
package errors
