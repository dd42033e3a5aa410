package rustparser

import (
	"strconv"
	"strings"
	"unicode"

	"codemeta/internal/domain/valueobject"
)

// resolveStringLiteral decodes the text value of a string literal node. Plain
// string literals have their escape sequences processed; raw string literals
// yield their content verbatim. Any other node kind resolves to nothing,
// which is a normal outcome rather than an error.
func resolveStringLiteral(tree *valueobject.ParseTree, node *valueobject.ParseNode) (string, bool) {
	if tree == nil || node == nil {
		return "", false
	}

	switch node.Type {
	case "string_literal":
		return decodeStringLiteral(tree.GetNodeText(node))
	case "raw_string_literal":
		return decodeRawStringLiteral(tree.GetNodeText(node))
	default:
		return "", false
	}
}

// decodeStringLiteral strips the surrounding quotes of a plain string literal
// and processes its escape sequences.
func decodeStringLiteral(text string) (string, bool) {
	if len(text) < 2 || !strings.HasPrefix(text, `"`) || !strings.HasSuffix(text, `"`) {
		return "", false
	}
	return unescapeString(text[1 : len(text)-1]), true
}

// decodeRawStringLiteral strips the r prefix, hash guards and quotes of a raw
// string literal such as r#"..."#. Raw strings carry no escape processing.
func decodeRawStringLiteral(text string) (string, bool) {
	if !strings.HasPrefix(text, "r") {
		return "", false
	}

	body := text[1:]
	hashes := 0
	for hashes < len(body) && body[hashes] == '#' {
		hashes++
	}
	body = body[hashes:]

	closing := `"` + strings.Repeat("#", hashes)
	if len(body) < len(closing)+1 || !strings.HasPrefix(body, `"`) || !strings.HasSuffix(body, closing) {
		return "", false
	}
	return body[1 : len(body)-len(closing)], true
}

// unescapeString processes Rust escape sequences in a string literal body.
// Malformed or unknown escapes are preserved as written; literal validity is
// the upstream parser's concern.
func unescapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}

		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '0':
			b.WriteByte(0)
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			b.WriteString(`\x`)
		case 'u':
			if r, consumed := decodeUnicodeEscape(s[i:]); consumed > 0 {
				b.WriteRune(r)
				i += consumed - 1
				continue
			}
			b.WriteString(`\u`)
		case '\n':
			// Escaped line break: the newline and the indentation that
			// follows it are dropped from the value.
			for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\r' || s[i+1] == '\n') {
				i++
			}
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// decodeUnicodeEscape decodes a u{XXXX} escape tail, returning the rune and
// the number of bytes consumed starting at the u.
func decodeUnicodeEscape(s string) (rune, int) {
	if len(s) < 3 || s[0] != 'u' || s[1] != '{' {
		return 0, 0
	}

	end := strings.IndexByte(s, '}')
	if end < 0 {
		return 0, 0
	}

	digits := strings.ReplaceAll(s[2:end], "_", "")
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || v > uint64(unicode.MaxRune) {
		return 0, 0
	}
	return rune(v), end + 1
}
