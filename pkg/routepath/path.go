// Package routepath joins route segments into absolute paths and derives the
// strings a client-side router consumes from them.
package routepath

import (
	"strings"
)

// JoinAbsolute joins normalized segments into an absolute route path.
//
// Empty segments are dropped. A catch-all segment ":name*" occupies two path
// components, ":name" followed by "*". No segments yields "/".
func JoinAbsolute(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}

	parts := make([]string, 0, len(segments)+1)
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, ":") && strings.HasSuffix(seg, "*") {
			parts = append(parts, seg[:len(seg)-1], "*")
			continue
		}
		parts = append(parts, seg)
	}

	joined := strings.Join(parts, "/")
	if joined == "" {
		return "/"
	}
	return "/" + joined
}

// RawPath joins raw segments into the unnormalized route path, without the
// leading slash. The root is "/".
func RawPath(rawSegments []string) string {
	raw := StripLeadingSlash(JoinAbsolute(rawSegments))
	if raw == "" {
		return "/"
	}
	return raw
}

// Relative returns the part of child below parent, without a leading slash.
// If child is not below parent it is returned unchanged.
//
//	Relative("/news", "/news/detail/:id") → "detail/:id"
//	Relative("/", "/about")               → "about"
func Relative(parent, child string) string {
	if parent == "/" || parent == "" {
		if child == "/" {
			return child
		}
		return StripLeadingSlash(child)
	}
	rest, ok := strings.CutPrefix(child, parent)
	if !ok || !strings.HasPrefix(rest, "/") || rest == "/" {
		return child
	}
	return rest[1:]
}

// EnsureLeadingSlash prefixes value with "/" if it does not start with one.
func EnsureLeadingSlash(value string) string {
	if !strings.HasPrefix(value, "/") {
		return "/" + value
	}
	return value
}

// StripLeadingSlash removes a single leading "/". "/" becomes "".
func StripLeadingSlash(value string) string {
	return strings.TrimPrefix(value, "/")
}

// ToCamel removes each "-", "_" or "/" that is followed by a word character
// and uppercases that character.
//
//	ToCamel("news-detail-id") → "newsDetailId"
//	ToCamel("user_profile")   → "userProfile"
func ToCamel(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for i := 0; i < len(input); i++ {
		c := input[i]
		if isSeparator(c) && i+1 < len(input) && isWordChar(input[i+1]) {
			b.WriteString(strings.ToUpper(string(input[i+1])))
			i++
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

func isSeparator(c byte) bool {
	return c == '-' || c == '_' || c == '/'
}

// isWordChar matches the ASCII class [A-Za-z0-9_].
func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
