// Package pattern compiles route path patterns into matchers.
//
// The pattern language has three token kinds beyond literal text:
//
//	{name}   required parameter, one or more non-slash characters
//	{name?}  optional parameter, zero or more non-slash characters;
//	         the segment may be entirely absent from the matched path
//	*        greedy wildcard capturing the remainder of the path
//
// Matching is whole-string anchored and case-insensitive unless requested
// otherwise. Captured values are percent-decoded; a wildcard capture is
// recorded under the name "*".
package pattern

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/wayfind-dev/wayfind/pkg/routepath"
)

// Param describes one capture in a compiled pattern, in capture-group
// order.
type Param struct {
	// Name is the parameter name ("*" for a wildcard capture).
	Name string

	// Optional indicates a {name?} parameter.
	Optional bool

	// Wildcard indicates a * capture, which may span path segments.
	Wildcard bool
}

// Matcher is a compiled route pattern. It is immutable and safe to reuse
// across any number of match calls.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
	params  []Param
}

var nameRe = regexp.MustCompile(`^\w+$`)

// Compile turns a path pattern into a Matcher.
//
// Compilation fails for an empty pattern, an unterminated or malformed
// {...} token, a parameter name that is not \w+, or a name used twice in
// the same pattern (required and optional forms of the same name count as
// a duplicate).
func Compile(pat string, caseSensitive bool) (*Matcher, error) {
	if pat == "" {
		return nil, fmt.Errorf("pattern: empty pattern")
	}

	var (
		expr    strings.Builder
		literal strings.Builder
		params  []Param
		seen    = map[string]bool{}
	)

	addParam := func(p Param) error {
		if seen[p.Name] {
			return fmt.Errorf("pattern %q: duplicate parameter %q", pat, p.Name)
		}
		seen[p.Name] = true
		params = append(params, p)
		return nil
	}

	// flushLiteral writes pending literal text. When trimSlash is set the
	// trailing "/" is withheld so it can fold into an optional group.
	flushLiteral := func(trimSlash bool) bool {
		text := literal.String()
		literal.Reset()
		trimmed := false
		if trimSlash && strings.HasSuffix(text, "/") {
			text = text[:len(text)-1]
			trimmed = true
		}
		if text != "" {
			expr.WriteString(regexp.QuoteMeta(text))
		}
		return trimmed
	}

	for i := 0; i < len(pat); {
		switch pat[i] {
		case '{':
			end := strings.IndexByte(pat[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("pattern %q: unterminated parameter", pat)
			}
			token := pat[i+1 : i+end]
			i += end + 1

			optional := strings.HasSuffix(token, "?")
			name := strings.TrimSuffix(token, "?")
			if !nameRe.MatchString(name) {
				return nil, fmt.Errorf("pattern %q: invalid parameter name %q", pat, name)
			}
			if err := addParam(Param{Name: name, Optional: optional}); err != nil {
				return nil, err
			}

			if optional {
				// Fold a directly preceding slash into the optional
				// group so /blog/{slug?} accepts /blog as well.
				if flushLiteral(true) {
					expr.WriteString(`(?:/([^/]*))?`)
				} else {
					expr.WriteString(`([^/]*)`)
				}
			} else {
				flushLiteral(false)
				expr.WriteString(`([^/]+)`)
			}

		case '*':
			if err := addParam(Param{Name: "*", Wildcard: true}); err != nil {
				return nil, err
			}
			flushLiteral(false)
			expr.WriteString(`(.*)`)
			i++

		default:
			literal.WriteByte(pat[i])
			i++
		}
	}
	flushLiteral(false)

	anchored := "^" + expr.String() + "$"
	if !caseSensitive {
		anchored = "(?i)" + anchored
	}

	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pat, err)
	}

	return &Matcher{pattern: pat, re: re, params: params}, nil
}

// Pattern returns the source pattern string.
func (m *Matcher) Pattern() string { return m.pattern }

// Params returns the parameter descriptors in capture-group order.
// The returned slice must not be modified.
func (m *Matcher) Params() []Param { return m.params }

// Match tests path against the compiled pattern and extracts decoded
// parameter values. Optional parameters that did not participate, or
// matched empty, are absent from the result.
//
// A capture whose percent-escapes fail to decode, or a non-wildcard
// capture that decodes to a value containing "/", fails the match.
func (m *Matcher) Match(path string) (map[string]string, bool) {
	groups := m.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	values := make(map[string]string, len(m.params))
	for i, p := range m.params {
		raw := groups[i+1]
		if raw == "" && p.Optional {
			continue
		}
		decoded, err := routepath.DecodeSegment(raw, p.Wildcard)
		if err != nil {
			return nil, false
		}
		values[p.Name] = decoded
	}
	return values, true
}

// Expand substitutes parameter values into a pattern for URL generation.
//
// Each {name} or {name?} token present in values is replaced by the
// percent-encoded value. Unresolved optional tokens are stripped entirely
// (along with a directly preceding slash); unresolved required tokens are
// left verbatim. A "*" value, if given, replaces the wildcard with its
// segments individually encoded.
func Expand(pat string, values map[string]string) string {
	var out strings.Builder

	for i := 0; i < len(pat); {
		switch pat[i] {
		case '{':
			end := strings.IndexByte(pat[i:], '}')
			if end < 0 {
				out.WriteString(pat[i:])
				return out.String()
			}
			token := pat[i+1 : i+end]
			i += end + 1

			optional := strings.HasSuffix(token, "?")
			name := strings.TrimSuffix(token, "?")

			if v, ok := values[name]; ok {
				out.WriteString(escapeValue(v, false))
			} else if optional {
				// Strip the token and the slash that introduced it.
				s := out.String()
				if strings.HasSuffix(s, "/") {
					out.Reset()
					out.WriteString(s[:len(s)-1])
				}
			} else {
				out.WriteString("{" + token + "}")
			}

		case '*':
			if v, ok := values["*"]; ok {
				out.WriteString(escapeValue(v, true))
			} else {
				out.WriteByte('*')
			}
			i++

		default:
			out.WriteByte(pat[i])
			i++
		}
	}
	return out.String()
}

// escapeValue percent-encodes a parameter value. Wildcard values keep
// their slashes, with each segment encoded separately.
func escapeValue(v string, wildcard bool) string {
	if !wildcard {
		return url.PathEscape(v)
	}
	segments := strings.Split(v, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
