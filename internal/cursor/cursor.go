// Package cursor encodes pagination positions into opaque URL-safe tokens.
//
// Tokens are not signed. They only carry the last-seen sort key(s); ordering
// is always re-derived from the live table.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gmattworld/applibry-api/internal/apperr"
)

var encoding = base64.RawURLEncoding

// Encode wraps a single sort key.
func Encode(value string) string {
	return encoding.EncodeToString([]byte(value))
}

// Decode reverses Encode.
func Decode(token string) (string, error) {
	raw, err := encoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil || !utf8.Valid(raw) {
		return "", apperr.InvalidCursor()
	}
	return string(raw), nil
}

// EncodeCompound wraps a (timestamp, name) position used by recency-ordered listings.
func EncodeCompound(at time.Time, name string) string {
	b, _ := json.Marshal([2]string{at.UTC().Format(time.RFC3339Nano), name})
	return encoding.EncodeToString(b)
}

// DecodeCompound reverses EncodeCompound.
func DecodeCompound(token string) (time.Time, string, error) {
	raw, err := encoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return time.Time{}, "", apperr.InvalidCursor()
	}
	var parts [2]string
	if err := json.Unmarshal(raw, &parts); err != nil {
		return time.Time{}, "", apperr.InvalidCursor()
	}
	at, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", apperr.InvalidCursor()
	}
	return at.UTC(), parts[1], nil
}
