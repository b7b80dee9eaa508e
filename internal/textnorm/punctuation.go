package textnorm

import "strings"

// portable maps non-portable punctuation code points to ASCII equivalents.
// Every key is non-ASCII and every value pure ASCII, which is what makes
// [Clean] idempotent: a second pass finds nothing left to replace.
var portable = strings.NewReplacer(
	// Single quotes.
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"‚", "'", // single low-9 quotation mark
	"‛", "'", // single high-reversed-9 quotation mark
	"′", "'", // prime

	// Double quotes.
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"„", `"`, // double low-9 quotation mark
	"‟", `"`, // double high-reversed-9 quotation mark
	"«", `"`, // left guillemet
	"»", `"`, // right guillemet

	// Dashes.
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign

	// Ellipsis.
	"…", "...",

	// Spaces.
	" ", " ", // no-break space
	" ", " ", // figure space
	" ", " ", // narrow no-break space
	" ", " ", // thin space

	// Dropped entirely.
	"­", "", // soft hyphen
	"\ufeff", "", // zero-width no-break space / stray BOM
	"​", "", // zero-width space
	"\u009d", "", // stray C1 control (common cp1252 mojibake survivor)
)

// Clean applies the portable punctuation substitution. Total and idempotent:
// Clean(Clean(s)) == Clean(s) for all inputs.
func Clean(s string) string {
	return portable.Replace(s)
}
