package moses

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"|", "&#124;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
	"[", "&#91;",
	"]", "&#93;",
)

var xmlUnescaper = strings.NewReplacer(
	"&#124;", "|",
	"&lt;", "<",
	"&gt;", ">",
	"&bra;", "[",
	"&ket;", "]",
	"&quot;", `"`,
	"&apos;", "'",
	"&#91;", "[",
	"&#93;", "]",
	"&amp;", "&",
)

// EscapeXML escapes the characters the tokenizer protects for the model.
func EscapeXML(text string) string { return xmlEscaper.Replace(text) }

// UnescapeXML reverts EscapeXML.
func UnescapeXML(text string) string { return xmlUnescaper.Replace(text) }
