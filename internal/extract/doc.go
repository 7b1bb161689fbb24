// Package extract finds register(...) calls in JavaScript source text.
//
// Extraction is a text pattern scan, not a JavaScript parse: the pattern
// matches a register( token, a quoted identifier, a comma, a
// backtick-delimited code block, and a trailing comma. Blocks may span
// lines. Any call of the same shape matches, wherever it appears.
//
// Patterns are compiled with github.com/dlclark/regexp2 so that custom
// patterns can use the ECMAScript features (backreferences, lookarounds)
// the effects project's own tooling relies on.
package extract
