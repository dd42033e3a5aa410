package rustparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStringLiteral(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "plain", text: `"hello"`, want: "hello", wantOK: true},
		{name: "empty", text: `""`, want: "", wantOK: true},
		{name: "escaped newline char", text: `"a\nb"`, want: "a\nb", wantOK: true},
		{name: "escaped quote", text: `"say \"hi\""`, want: `say "hi"`, wantOK: true},
		{name: "missing closing quote", text: `"open`, wantOK: false},
		{name: "missing opening quote", text: `open"`, wantOK: false},
		{name: "too short", text: `"`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeStringLiteral(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRawStringLiteral(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "no hashes", text: `r"abc"`, want: "abc", wantOK: true},
		{name: "empty", text: `r""`, want: "", wantOK: true},
		{name: "one hash with inner quote", text: `r#"a"b"#`, want: `a"b`, wantOK: true},
		{name: "two hashes with quote hash run", text: `r##"x"#"##`, want: `x"#`, wantOK: true},
		{name: "backslashes stay verbatim", text: `r"C:\n"`, want: `C:\n`, wantOK: true},
		{name: "missing r prefix", text: `"abc"`, wantOK: false},
		{name: "unterminated", text: `r#"open`, wantOK: false},
		{name: "hash count mismatch", text: `r##"x"#`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeRawStringLiteral(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnescapeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no escapes fast path", input: "plain text", want: "plain text"},
		{name: "simple escapes", input: `a\nb\tc\rd`, want: "a\nb\tc\rd"},
		{name: "quote and backslash", input: `\"\\\'`, want: `"\'`},
		{name: "nul byte", input: `end\0`, want: "end\x00"},
		{name: "hex escape", input: `\x41\x62`, want: "Ab"},
		{name: "short hex preserved", input: `\x4`, want: `\x4`},
		{name: "bad hex preserved", input: `\xZZ`, want: `\xZZ`},
		{name: "unicode escape", input: `\u{1F600}`, want: "\U0001F600"},
		{name: "unicode with underscores", input: `\u{6_3}`, want: "c"},
		{name: "empty unicode preserved", input: `\u{}`, want: `\u{}`},
		{name: "unicode beyond max rune preserved", input: `\u{110000}`, want: `\u{110000}`},
		{name: "unknown escape preserved", input: `\q`, want: `\q`},
		{name: "trailing backslash preserved", input: `tail\`, want: `tail\`},
		{name: "escaped line break eats indentation", input: "a,\\\n    b", want: "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unescapeString(tt.input))
		})
	}
}

func TestResolveStringLiteralFromParsedSource(t *testing.T) {
	tree := parseRustSource(t, "fn main() { let _s = \"hi\\n\"; let _n = 42; }\n")

	literal := findNodeOfType(t, tree, "string_literal")
	value, ok := resolveStringLiteral(tree, literal)
	require.True(t, ok)
	assert.Equal(t, "hi\n", value)

	number := findNodeOfType(t, tree, "integer_literal")
	_, ok = resolveStringLiteral(tree, number)
	assert.False(t, ok)

	_, ok = resolveStringLiteral(nil, literal)
	assert.False(t, ok)
	_, ok = resolveStringLiteral(tree, nil)
	assert.False(t, ok)
}
