package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaskValue is the string used to replace credential values.
const MaskValue = "***REDACTED***"

// MaxValueLength is the number of characters of a string value kept before
// the rest is replaced with a "…(N more chars)" suffix.
const MaxValueLength = 200

// credentialKeys are attribute keys (lower-cased) that always hold secrets.
var credentialKeys = map[string]bool{
	"apikey":        true,
	"api_key":       true,
	"api-key":       true,
	"key":           true,
	"token":         true,
	"access_token":  true,
	"authorization": true,
	"cookie":        true,
	"password":      true,
	"secret":        true,
}

// credentialKeywords flag any key that contains them.
var credentialKeywords = []string{"apikey", "api_key", "token", "password", "secret"}

// credentialParams are URL query parameters masked inside string values.
var credentialParams = []string{"key", "apikey", "token"}

// RedactingHandler wraps an slog.Handler, masking credentials and
// truncating long values before passing records on.
type RedactingHandler struct {
	handler slog.Handler
	maxLen  int
}

// NewRedactingHandler creates a RedactingHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler, maxLen: MaxValueLength}
}

// Enabled delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a handler with the redacted attributes added.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(redacted), maxLen: h.maxLen}
}

// WithGroup returns a handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

func (h *RedactingHandler) redact(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			redacted[i] = h.redact(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if isCredentialKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, truncate(maskURLCredentials(a.Value.String()), h.maxLen))
	}
	return a
}

func isCredentialKey(key string) bool {
	k := strings.ToLower(key)
	if credentialKeys[k] {
		return true
	}
	for _, kw := range credentialKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// maskURLCredentials masks credential query parameters when s is a URL.
func maskURLCredentials(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "?") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}

	q := u.Query()
	changed := false
	for _, p := range credentialParams {
		if q.Has(p) {
			q.Set(p, MaskValue)
			changed = true
		}
	}
	if !changed {
		return s
	}
	// Encode escapes the mask; keep it readable.
	u.RawQuery = strings.ReplaceAll(q.Encode(), url.QueryEscape(MaskValue), MaskValue)
	return u.String()
}

// truncate keeps the first max characters of s.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := utf8.RuneCountInString(s)
	if n <= limit {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s…(%d more chars)", string(runes[:limit]), n-limit)
}

// NewLogger creates a text logger that writes to w through a RedactingHandler.
// verbose selects Debug level; otherwise Warn.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactingHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger is like NewLogger but emits JSON lines.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactingHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
