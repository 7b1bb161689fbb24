package extract

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/nao1215/stubscan/internal/model"
)

// Extractor finds registrations in source text.
// It is safe for concurrent use; the compiled pattern is not mutated.
type Extractor struct {
	re      *regexp2.Regexp
	timeout time.Duration
}

// options collects Extractor settings before compilation.
type options struct {
	pattern string
	custom  bool
	timeout time.Duration
}

// Option configures an Extractor.
type Option func(*options)

// WithPattern replaces the built-in pattern. An empty pattern keeps the default.
func WithPattern(pattern string) Option {
	return func(o *options) {
		if pattern != "" {
			o.pattern = pattern
			o.custom = true
		}
	}
}

// WithMatchTimeout bounds each evaluation of a custom pattern. The built-in
// pattern is linear in the input and never times out. Zero means no limit.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New compiles the registration pattern and returns an Extractor.
func New(opts ...Option) (*Extractor, error) {
	o := options{pattern: DefaultPattern}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.custom || o.timeout < 0 {
		o.timeout = 0
	}

	re, err := compilePattern(o.pattern, o.timeout)
	if err != nil {
		return nil, err
	}
	return &Extractor{re: re, timeout: o.timeout}, nil
}

// Extract returns every non-overlapping registration in content, top to
// bottom. Code blocks are returned untrimmed. No match yields an empty slice.
func (e *Extractor) Extract(content string) ([]model.Registration, error) {
	regs := make([]model.Registration, 0)

	m, err := e.re.FindStringMatch(content)
	if err != nil {
		return nil, e.matchError(err)
	}

	lines := newLineIndex(content)
	for m != nil {
		id := m.GroupByName(GroupIdentifier)
		code := m.GroupByName(GroupCode)
		if id != nil && code != nil {
			regs = append(regs, model.Registration{
				Identifier: id.String(),
				CodeBlock:  code.String(),
				Line:       lines.lineAt(m.Index),
			})
		}

		m, err = e.re.FindNextMatch(m)
		if err != nil {
			return nil, e.matchError(err)
		}
	}

	return regs, nil
}

// matchError replaces a regexp2 failure. regexp2 only fails on timeouts and
// its message embeds the whole input, so the original error is dropped.
func (e *Extractor) matchError(_ error) error {
	if e.timeout > 0 {
		return fmt.Errorf("%w after %s", ErrMatchTimeout, e.timeout)
	}
	return ErrMatchTimeout
}

// lineIndex maps rune offsets (as reported by regexp2) to 1-based lines.
// Lookups must be made with non-decreasing offsets.
type lineIndex struct {
	runes  []rune
	offset int
	line   int
}

func newLineIndex(content string) *lineIndex {
	return &lineIndex{runes: []rune(content), line: 1}
}

func (li *lineIndex) lineAt(offset int) int {
	if offset > len(li.runes) {
		offset = len(li.runes)
	}
	for ; li.offset < offset; li.offset++ {
		if li.runes[li.offset] == '\n' {
			li.line++
		}
	}
	return li.line
}
