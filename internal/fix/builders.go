package fix

import (
	"strings"

	"vsdiag/internal/tree"
)

// Option adjusts a token built by Token.
type Option func(*tokenOptions)

type tokenOptions struct {
	leading  string
	trailing string
}

// WithLeading sets the trivia rendered before the token.
func WithLeading(s string) Option {
	return func(o *tokenOptions) {
		o.leading = s
	}
}

// WithTrailing sets the trivia rendered after the token.
func WithTrailing(s string) Option {
	return func(o *tokenOptions) {
		o.trailing = s
	}
}

// Token creates a fresh leaf for use in a replacement.
func Token(kind tree.Kind, text string, opts ...Option) *tree.Node {
	var o tokenOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	tok := tree.NewToken(kind, text)
	if o.leading != "" || o.trailing != "" {
		tok = tok.WithTrivia(o.leading, o.trailing)
	}
	return tok
}

// Rename returns tok spelled text, keeping its trivia.
func Rename(tok *tree.Node, text string) *tree.Node {
	return tok.WithText(text)
}

// InsertModifier returns decl with a modifier spelled text placed after its
// last modifier. Without modifiers the new one becomes the first child and
// takes over the leading trivia of the declaration.
func InsertModifier(decl *tree.Node, text string) *tree.Node {
	children := childList(decl)
	last := -1
	for i, c := range children {
		if c.Kind() == tree.KindModifier {
			last = i
		}
	}
	if last >= 0 {
		mod := Token(tree.KindModifier, text, WithLeading(" "))
		return decl.WithChildren(insertAt(children, last+1, mod)...)
	}
	if len(children) == 0 {
		return decl.WithChildren(Token(tree.KindModifier, text))
	}
	first := children[0]
	lead := tree.LeadingTrivia(first)
	stripped := tree.StripLeading(first)
	children[0] = stripped.WithTrivia(" ", stripped.Trailing())
	return decl.WithChildren(insertAt(children, 0, Token(tree.KindModifier, text, WithLeading(lead)))...)
}

// DropChild returns n without its first child of the given kind, or n
// itself when there is none. The child's trivia goes with it.
func DropChild(n *tree.Node, kind tree.Kind) *tree.Node {
	children := childList(n)
	for i, c := range children {
		if c.Kind() == kind {
			return n.WithChildren(append(children[:i:i], children[i+1:]...)...)
		}
	}
	return n
}

// WrapInBlock surrounds a statement with braces. The statement itself is
// reused. The closing brace goes on its own line at indent when the
// statement starts on a new line, otherwise it stays on the same line.
func WrapInBlock(stmt *tree.Node, indent string) *tree.Node {
	open := Token(tree.KindPunct, "{", WithLeading(" "))
	closeLead := " "
	if strings.Contains(tree.LeadingTrivia(stmt), "\n") {
		closeLead = "\n" + indent
	}
	return tree.NewNode(tree.KindBlock, open, stmt, Token(tree.KindPunct, "}", WithLeading(closeLead)))
}

// Indent returns the whitespace that starts the line n begins on, taken
// from its leading trivia.
func Indent(n *tree.Node) string {
	lead := tree.LeadingTrivia(n)
	i := strings.LastIndexByte(lead, '\n')
	if i < 0 {
		return ""
	}
	line := lead[i+1:]
	if strings.TrimLeft(line, " \t") != "" {
		return ""
	}
	return line
}

func childList(n *tree.Node) []*tree.Node {
	out := make([]*tree.Node, 0, n.NumChildren())
	for _, c := range n.Children() {
		out = append(out, c)
	}
	return out
}

func insertAt(nodes []*tree.Node, i int, n *tree.Node) []*tree.Node {
	out := make([]*tree.Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}
