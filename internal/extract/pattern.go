package extract

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// Named groups every registration pattern must define.
const (
	GroupIdentifier = "id"
	GroupCode       = "code"
)

// DefaultPattern matches register('<id>', `<code>`, with either quote style
// around the identifier. The code group is lazy so a block ends at the first
// closing backtick.
const DefaultPattern = `register\(\s*['"](?<id>[^'"]+)['"]\s*,\s*` + "`" + `(?<code>.*?)` + "`" + `\s*,`

var (
	// ErrInvalidPattern is returned when a pattern does not compile.
	ErrInvalidPattern = errors.New("invalid registration pattern")

	// ErrMissingGroup is returned when a pattern lacks the id or code group.
	ErrMissingGroup = errors.New("registration pattern must define named groups \"id\" and \"code\"")

	// ErrMatchTimeout is returned when a custom pattern exceeds its match timeout.
	ErrMatchTimeout = errors.New("registration pattern timed out")
)

// compilePattern compiles expr in single-line mode so "." spans newlines.
// A zero timeout leaves the pattern unbounded.
func compilePattern(expr string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.Singleline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	if re.GroupNumberFromName(GroupIdentifier) < 0 || re.GroupNumberFromName(GroupCode) < 0 {
		return nil, ErrMissingGroup
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}
