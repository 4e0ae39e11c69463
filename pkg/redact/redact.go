package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// Replacement markers. None of them can match a redaction rule, which keeps
// Value idempotent.
const (
	Marker          = "***REDACTED***"
	PEMMarker       = "***PEM REDACTED***"
	JWTMarker       = "***JWT REDACTED***"
	TruncatedMarker = "...(TRUNCATED)"
)

const (
	// jwtMinLength is the length a string must exceed before the JWT heuristic applies.
	jwtMinLength = 100

	// maxStringLength is the length above which strings are truncated.
	maxStringLength = 65536

	// truncatedPrefix is the number of characters kept from a truncated string.
	truncatedPrefix = 64
)

// denylist holds lower-cased map keys whose values are always replaced.
var denylist = map[string]struct{}{
	"authorization":   {},
	"token":           {},
	"secret":          {},
	"password":        {},
	"private_key":     {},
	"api_key":         {},
	"cookie":          {},
	"set-cookie":      {},
	"session":         {},
	"ciphertext":      {},
	"header_b64u":     {},
	"ciphertext_b64u": {},
	"nonce":           {},
	"x-talos-token":   {},
	"x-capability":    {},
}

var (
	pemPattern = regexp.MustCompile(`(?s)-----BEGIN [A-Z ]+-----(.*?)-----END [A-Z ]+-----`)
	jwtPattern = regexp.MustCompile(`^eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	segmentDecoder = jwt.NewParser()
)

// IsDenied reports whether key names a secret-bearing field. Matching is
// case-insensitive and exact.
func IsDenied(key string) bool {
	_, ok := denylist[strings.ToLower(key)]
	return ok
}

// Value returns a sanitized copy of v. Maps and slices are copied
// recursively; the input is never modified. Values of unknown types are
// returned unchanged.
func Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Map(val)
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, s := range val {
			if IsDenied(k) {
				out[k] = Marker
				continue
			}
			out[k] = String(s)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Value(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = String(s)
		}
		return out
	case string:
		return String(val)
	default:
		return v
	}
}

// Map sanitizes a JSON object. Denylisted keys have their value replaced by
// Marker whatever its type.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsDenied(k) {
			out[k] = Marker
			continue
		}
		out[k] = Value(v)
	}
	return out
}

// String sanitizes a single string value.
func String(s string) string {
	if pemPattern.MatchString(s) {
		return PEMMarker
	}
	if len(s) > jwtMinLength && looksLikeJWT(s) {
		return JWTMarker
	}
	if utf8.RuneCountInString(s) > maxStringLength {
		return truncate(s)
	}
	return s
}

// looksLikeJWT matches three dot-separated base64url segments whose first
// segment decodes to a JSON object header.
func looksLikeJWT(s string) bool {
	if !jwtPattern.MatchString(s) {
		return false
	}
	header, _, _ := strings.Cut(s, ".")
	decoded, err := segmentDecoder.DecodeSegment(header)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(decoded), `{"`)
}

func truncate(s string) string {
	n := 0
	for i := range s {
		if n == truncatedPrefix {
			return s[:i] + TruncatedMarker
		}
		n++
	}
	return s + TruncatedMarker
}
