package notify

import "strings"

const hexDigits = "0123456789ABCDEF"

// Encode percent-encodes s for a form body using a conservative allow-list:
// ASCII letters, digits and "_.-" pass through, space becomes "+", and every
// other byte of the UTF-8 encoding becomes a two-digit %XX escape.
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case safe(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}

func safe(c byte) bool {
	return 'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9' ||
		c == '_' || c == '.' || c == '-'
}
