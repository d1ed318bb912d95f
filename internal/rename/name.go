package rename

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var keywords = map[string]bool{}

func init() {
	for _, kw := range strings.Fields(`abstract as base bool break byte case catch char checked
		class const continue decimal default delegate do double else enum event
		explicit extern false finally fixed float for foreach goto if implicit in
		int interface internal is lock long namespace new null object operator out
		override params private protected public readonly ref return sbyte sealed
		short sizeof stackalloc static string struct switch this throw true try
		typeof uint ulong unchecked unsafe ushort using virtual void volatile while`) {
		keywords[kw] = true
	}
}

// CheckName returns the NFC form of name when it is a valid identifier.
// Reserved words are accepted only in their @-escaped form.
func CheckName(name string) (string, error) {
	name = norm.NFC.String(name)
	body, escaped := strings.CutPrefix(name, "@")
	if body == "" {
		return "", invalid(name, "empty")
	}
	for i, r := range body {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return "", invalid(name, "unexpected character "+strconv.QuoteRune(r))
		}
	}
	if keywords[body] && !escaped {
		return "", invalid(name, "reserved word")
	}
	return name, nil
}
