// Package routepath normalizes and validates location paths before they
// reach the dispatcher. All matching, cache keying, and URL generation
// operate on canonical paths produced here.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result contains the outcome of path canonicalization.
type Result struct {
	// Path is the canonicalized path (without query string or fragment).
	Path string

	// Query is the raw query string (without leading "?").
	Query string

	// Fragment is the fragment (without leading "#").
	Fragment string

	// Changed indicates if the path was modified during canonicalization.
	Changed bool
}

// Path canonicalization errors.
var (
	ErrInvalidPath          = errors.New("routepath: invalid path")
	ErrBackslashInPath      = errors.New("routepath: path contains backslash")
	ErrNullByteInPath       = errors.New("routepath: path contains null byte")
	ErrInvalidPercentEscape = errors.New("routepath: invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("routepath: path escapes root via ..")
	ErrEncodedSlashInParam  = errors.New("routepath: encoded slash (%2F) in non-wildcard parameter")
)

// Canonicalize normalizes a location string.
//
// The following transformations are applied to the path component:
//   - Remove trailing slash (except for root "/")
//   - Collapse multiple slashes (/blog//post → /blog/post)
//   - Remove "." segments (/blog/./post → /blog/post)
//   - Resolve ".." segments (/blog/../other → /other)
//
// The following inputs are rejected with an error:
//   - Paths containing backslash (\)
//   - Paths containing NUL (literal or %00)
//   - Invalid percent-escapes (e.g., %GG, %2)
//   - ".." that would escape root (e.g., /../secret)
//
// The input may include a query string and fragment, which are preserved
// but not canonicalized.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	path, query, fragment := Split(input)

	// SECURITY: Reject backslash.
	if strings.Contains(path, "\\") {
		return Result{}, ErrBackslashInPath
	}

	// SECURITY: Reject NUL (both literal and encoded).
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Result{}, ErrNullByteInPath
	}

	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	original := path

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	segments := strings.Split(path, "/")
	var kept []string

	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			} else {
				// SECURITY: ".." escapes root.
				return Result{}, ErrPathEscapesRoot
			}
		default:
			kept = append(kept, seg)
		}
	}

	path = "/" + strings.Join(kept, "/")

	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	return Result{
		Path:     path,
		Query:    query,
		Fragment: fragment,
		Changed:  path != original,
	}, nil
}

// Key builds the cache key for a canonicalized location.
// The key is the canonical path plus the raw query and fragment, so two
// locations collide only when they are the same location verbatim.
func (r Result) Key() string {
	return r.Path + "?" + r.Query + "#" + r.Fragment
}

// validatePercentEscapes checks that all percent-escapes are valid.
func validatePercentEscapes(path string) error {
	i := 0
	for i < len(path) {
		if path[i] == '%' {
			if i+2 >= len(path) {
				return ErrInvalidPercentEscape
			}
			if !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
				return ErrInvalidPercentEscape
			}
			i += 3
		} else {
			i++
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment decodes a single captured path value.
// For non-wildcard parameters, a decoded "/" (i.e. %2F in the input) is
// rejected as a path smuggling attempt. Wildcard captures span segments,
// so "/" is legitimate there.
func DecodeSegment(segment string, wildcard bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}

	if !wildcard && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInParam
	}

	return decoded, nil
}

// ValidateNavPath validates and canonicalizes a programmatic navigation
// target. Absolute URLs and protocol-relative URLs are rejected to prevent
// open-redirect style targets; the path must be site-relative.
//
// Returns the canonical location string (path plus any query/fragment).
func ValidateNavPath(path string) (string, error) {
	// SECURITY: Reject absolute URLs.
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//") {
		return "", ErrInvalidPath
	}
	if !strings.HasPrefix(path, "/") {
		return "", ErrInvalidPath
	}

	result, err := Canonicalize(path)
	if err != nil {
		return "", err
	}

	out := result.Path
	if result.Query != "" {
		out += "?" + result.Query
	}
	if result.Fragment != "" {
		out += "#" + result.Fragment
	}
	return out, nil
}

// Split splits a location string into path, query, and fragment.
// Query and fragment are returned without their leading "?" and "#".
// Per RFC 3986 the fragment follows the query, so the "#" cut happens
// first.
func Split(input string) (path, query, fragment string) {
	input, fragment, _ = strings.Cut(input, "#")
	path, query, _ = strings.Cut(input, "?")
	return path, query, fragment
}
