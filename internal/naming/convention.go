package naming

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention is a target naming style.
type Convention uint8

const (
	LowerCamel Convention = iota + 1
	UpperCamel
	UnderscoreLowerCamel
	InterfacePrefixUpperCamel
)

var conventionNames = map[Convention]string{
	LowerCamel:                "lowerCamel",
	UpperCamel:                "upperCamel",
	UnderscoreLowerCamel:      "underscoreLowerCamel",
	InterfacePrefixUpperCamel: "interfacePrefixUpperCamel",
}

func (c Convention) String() string {
	if name, ok := conventionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Convention(%d)", uint8(c))
}

// ParseConvention accepts the names printed by String, case-insensitively.
func ParseConvention(s string) (Convention, error) {
	for c, name := range conventionNames {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown naming convention %q", s)
}

// Conventions lists every convention in declaration order.
func Conventions() []Convention {
	return []Convention{LowerCamel, UpperCamel, UnderscoreLowerCamel, InterfacePrefixUpperCamel}
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Render joins the segments of id under conv. The first segment is cased by
// the convention, every later segment is upper camel. Verbatim identifiers
// are returned unchanged.
//
// Joining can produce words that segment differently ("a", "Z" renders
// "AZ", which is one acronym), so the output is re-rendered until it is
// stable. After the first round a round only lowers letters, which bounds
// the loop by the length of the output.
func Render(id Identifier, conv Convention) string {
	if id.verbatim || len(id.segs) == 0 {
		return strings.Join(id.segs, "")
	}
	out := render(id.segs, conv)
	for range len(out) {
		again := Segment(out)
		if again.verbatim {
			break
		}
		next := render(again.segs, conv)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func render(segs []string, conv Convention) string {
	var sb strings.Builder
	first, rest := segs[0], segs[1:]
	switch conv {
	case LowerCamel:
		sb.WriteString(lowerWord(first))
	case UpperCamel:
		sb.WriteString(upperWord(first))
	case UnderscoreLowerCamel:
		sb.WriteByte('_')
		sb.WriteString(lowerWord(first))
	case InterfacePrefixUpperCamel:
		sb.WriteByte('I')
		switch {
		case first == "I" && len(rest) > 0:
			first, rest = rest[0], rest[1:]
		case first == "I":
			first = ""
		case hasPrefixI(first):
			first = first[1:]
		}
		sb.WriteString(upperWord(first))
	default:
		panic(fmt.Sprintf("naming: unknown convention %d", uint8(conv)))
	}
	for _, seg := range rest {
		sb.WriteString(upperWord(seg))
	}
	return sb.String()
}

// hasPrefixI reports a word that already carries the interface prefix: an
// 'I' followed by a capital or a digit ("IBuffer", "I2c").
func hasPrefixI(w string) bool {
	return len(w) > 1 && w[0] == 'I' && !isLower(w[1])
}

// Normalize is Render(Segment(s), conv).
func Normalize(s string, conv Convention) string {
	return Render(Segment(s), conv)
}

// upperWord capitalizes the first letter. An all-capitals word is an
// acronym and the rest of it is lowered ("MY" -> "My"); a mixed-case word
// keeps its inner capitals ("IBuffer" stays).
func upperWord(w string) string {
	if w == "" {
		return w
	}
	rest := w[1:]
	if !hasLower(w) {
		rest = lower.String(rest)
	}
	return upper.String(w[:1]) + rest
}

// lowerWord is the lower camel counterpart of upperWord.
func lowerWord(w string) string {
	if w == "" {
		return w
	}
	if !hasLower(w) {
		return lower.String(w)
	}
	return lower.String(w[:1]) + w[1:]
}

func hasLower(w string) bool {
	for i := 0; i < len(w); i++ {
		if isLower(w[i]) {
			return true
		}
	}
	return false
}
