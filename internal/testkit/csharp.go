package testkit

import (
	"fmt"
	"strings"

	"vsdiag/internal/source"
	"vsdiag/internal/tree"
)

// Parse builds a tree from a small C#-like language: namespaces, types,
// fields, properties, methods, constructors, the common statements and
// expressions. Whitespace and comments become leading trivia of the next
// token; trivia at the end of input trails the last token, so Render
// reproduces src.
func Parse(file source.FileID, name, src string) (t *tree.Tree, err error) {
	toks, err := lex(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	p := &parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			t, err = nil, fmt.Errorf("%s:%d: %s", name, pe.pos, pe.msg)
		}
	}()
	members := p.members()
	if p.peek().kind != tokEOF {
		p.fail("unexpected %q", p.peek().text)
	}
	if len(members) == 0 && p.peek().lead != "" {
		members = append(members, tree.NewToken(tree.KindElided, "").WithTrivia(p.peek().lead, ""))
	}
	return tree.New(file, name, tree.NewNode(tree.KindCompilationUnit, members...)), nil
}

// MustParse is Parse for test fixtures; it panics on malformed input.
func MustParse(name, src string) *tree.Tree {
	t, err := Parse(1, name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// MustProgram parses each source as its own file, named File<i>.cs with
// file id i+1.
func MustProgram(srcs ...string) tree.Program {
	prog := make(tree.Program, 0, len(srcs))
	for i, src := range srcs {
		t, err := Parse(source.FileID(i+1), fmt.Sprintf("File%d.cs", i), src)
		if err != nil {
			panic(err)
		}
		prog = append(prog, t)
	}
	return prog
}

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokWord
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
	lead string
	pos  int
}

var puncts = []string{
	">>=", "<<=", "??=",
	"++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"==", "!=", "<=", ">=", "&&", "||", "??", "=>", "<<", ">>",
	"{", "}", "(", ")", ";", ",", ".", "=", "<", ">", "+", "-", "*", "/",
	"%", "!", "~", "&", "|", "^", "?", ":", "[", "]",
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for {
		start := i
		for i < len(src) {
			switch {
			case src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r':
				i++
				continue
			case strings.HasPrefix(src[i:], "//"):
				if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
					i += j
				} else {
					i = len(src)
				}
				continue
			case strings.HasPrefix(src[i:], "/*"):
				j := strings.Index(src[i+2:], "*/")
				if j < 0 {
					return nil, fmt.Errorf("%d: unterminated comment", i)
				}
				i += j + 4
				continue
			}
			break
		}
		lead := src[start:i]
		if i >= len(src) {
			return append(toks, token{kind: tokEOF, lead: lead, pos: i}), nil
		}
		c := src[i]
		j := i + 1
		var kind tokKind
		switch {
		case isIdentStart(c):
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			kind = tokWord
		case '0' <= c && c <= '9':
			for j < len(src) && (isIdentPart(src[j]) || src[j] == '.') {
				j++
			}
			kind = tokNumber
		case c == '"' || c == '\'':
			for j < len(src) && src[j] != c {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("%d: unterminated literal", i)
			}
			j++
			kind = tokString
		default:
			matched := ""
			for _, p := range puncts {
				if strings.HasPrefix(src[i:], p) {
					matched = p
					break
				}
			}
			if matched == "" {
				return nil, fmt.Errorf("%d: unexpected character %q", i, c)
			}
			j = i + len(matched)
			kind = tokPunct
		}
		toks = append(toks, token{kind: kind, text: src[i:j], lead: lead, pos: i})
		i = j
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '@' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

var (
	modifierWords = set("public", "private", "protected", "internal", "static", "readonly",
		"const", "abstract", "virtual", "override", "sealed", "async", "partial",
		"extern", "volatile", "unsafe")
	predefinedTypes = set("int", "uint", "long", "ulong", "short", "ushort", "byte", "sbyte",
		"string", "bool", "void", "double", "float", "decimal", "object", "char", "var", "dynamic")
	typeKeywords = set("class", "struct", "interface", "record")
	reserved     = set("if", "else", "while", "for", "foreach", "in", "return", "new", "this",
		"base", "true", "false", "null", "as", "is", "namespace", "get", "set", "init")
	assignOps = set("=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", "??=")
	prefixOps = set("++", "--", "!", "-", "+", "~")
	binPrec   = map[string]int{
		"??": 1, "||": 2, "&&": 3, "|": 4, "^": 5, "&": 6, "==": 7, "!=": 7,
		"<": 8, ">": 8, "<=": 8, ">=": 8, "as": 8, "is": 8,
		"<<": 9, ">>": 9, "+": 10, "-": 10, "*": 11, "/": 11, "%": 11,
	}
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type parseError struct {
	pos int
	msg string
}

type parser struct {
	toks  []token
	pos   int
	types []string
}

func (p *parser) fail(format string, args ...any) {
	panic(parseError{pos: p.peek().pos, msg: fmt.Sprintf(format, args...)})
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(k int) token {
	if i := p.pos + k; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) is(text string) bool {
	t := p.peek()
	return (t.kind == tokWord || t.kind == tokPunct) && t.text == text
}

func (p *parser) isWord(words map[string]bool) bool {
	t := p.peek()
	return t.kind == tokWord && words[t.text]
}

// take consumes the next token as a leaf of the given kind.
func (p *parser) take(kind tree.Kind) *tree.Node {
	t := p.peek()
	if t.kind == tokEOF {
		p.fail("unexpected end of input")
	}
	p.pos++
	trail := ""
	if next := p.peek(); next.kind == tokEOF {
		trail = next.lead
	}
	return tree.NewToken(kind, t.text).WithTrivia(t.lead, trail)
}

func (p *parser) expect(text string, kind tree.Kind) *tree.Node {
	if !p.is(text) {
		p.fail("expected %q, found %q", text, p.peek().text)
	}
	return p.take(kind)
}

func (p *parser) ident() *tree.Node {
	t := p.peek()
	if t.kind != tokWord || reserved[t.text] {
		p.fail("expected identifier, found %q", t.text)
	}
	return p.take(tree.KindIdentifier)
}

// node assembles children from *tree.Node and []*tree.Node parts.
func node(kind tree.Kind, parts ...any) *tree.Node {
	var children []*tree.Node
	for _, part := range parts {
		switch v := part.(type) {
		case *tree.Node:
			children = append(children, v)
		case []*tree.Node:
			children = append(children, v...)
		default:
			panic(fmt.Sprintf("testkit: bad node part %T", part))
		}
	}
	return tree.NewNode(kind, children...)
}

func (p *parser) members() []*tree.Node {
	var out []*tree.Node
	for p.peek().kind != tokEOF && !p.is("}") {
		out = append(out, p.member())
	}
	return out
}

func (p *parser) modifiers() []*tree.Node {
	var mods []*tree.Node
	for p.isWord(modifierWords) {
		mods = append(mods, p.take(tree.KindModifier))
	}
	return mods
}

func (p *parser) member() *tree.Node {
	if p.is("namespace") {
		kw := p.take(tree.KindKeyword)
		name := p.ident()
		open := p.expect("{", tree.KindPunct)
		body := p.members()
		return node(tree.KindNamespace, kw, name, open, body, p.expect("}", tree.KindPunct))
	}
	mods := p.modifiers()
	if p.isWord(typeKeywords) {
		kw := p.take(tree.KindKeyword)
		name := p.ident()
		p.types = append(p.types, name.Text())
		open := p.expect("{", tree.KindPunct)
		body := p.members()
		closing := p.expect("}", tree.KindPunct)
		p.types = p.types[:len(p.types)-1]
		return node(tree.KindTypeDecl, mods, kw, name, open, body, closing)
	}
	if n := len(p.types); n > 0 && p.peek().text == p.types[n-1] && p.peekAt(1).text == "(" {
		name := p.ident()
		params := p.params()
		return node(tree.KindConstructorDecl, mods, name, params, p.block())
	}
	typ := p.typeRef()
	name := p.ident()
	switch {
	case p.is("("):
		params := p.params()
		var body *tree.Node
		if p.is(";") {
			body = p.take(tree.KindPunct)
		} else {
			body = p.block()
		}
		return node(tree.KindMethodDecl, mods, typ, name, params, body)
	case p.is("{"):
		open := p.take(tree.KindPunct)
		var accessors []*tree.Node
		for !p.is("}") {
			accessors = append(accessors, p.accessor())
		}
		return node(tree.KindPropertyDecl, mods, typ, name, open, accessors, p.take(tree.KindPunct))
	default:
		var init []*tree.Node
		if p.is("=") {
			init = []*tree.Node{p.take(tree.KindPunct), p.expr()}
		}
		return node(tree.KindFieldDecl, mods, typ, name, init, p.expect(";", tree.KindPunct))
	}
}

func (p *parser) accessor() *tree.Node {
	mods := p.modifiers()
	if !p.is("get") && !p.is("set") && !p.is("init") {
		p.fail("expected accessor, found %q", p.peek().text)
	}
	kw := p.take(tree.KindKeyword)
	if p.is(";") {
		return node(tree.KindAccessor, mods, kw, p.take(tree.KindPunct))
	}
	return node(tree.KindAccessor, mods, kw, p.block())
}

func (p *parser) typeRef() *tree.Node {
	if p.isWord(predefinedTypes) {
		return p.take(tree.KindKeyword)
	}
	return p.ident()
}

func (p *parser) params() *tree.Node {
	parts := []*tree.Node{p.expect("(", tree.KindPunct)}
	for !p.is(")") {
		if len(parts) > 1 {
			parts = append(parts, p.expect(",", tree.KindPunct))
		}
		var mods []*tree.Node
		for p.is("ref") || p.is("out") || p.is("in") || p.is("params") || p.is("this") {
			mods = append(mods, p.take(tree.KindModifier))
		}
		typ := p.typeRef()
		name := p.ident()
		var def []*tree.Node
		if p.is("=") {
			def = []*tree.Node{p.take(tree.KindPunct), p.expr()}
		}
		parts = append(parts, node(tree.KindParameter, mods, typ, name, def))
	}
	return node(tree.KindParameterList, parts, p.take(tree.KindPunct))
}

func (p *parser) block() *tree.Node {
	open := p.expect("{", tree.KindPunct)
	var stmts []*tree.Node
	for !p.is("}") {
		if p.peek().kind == tokEOF {
			p.fail("unexpected end of input in block")
		}
		stmts = append(stmts, p.statement())
	}
	return node(tree.KindBlock, open, stmts, p.take(tree.KindPunct))
}

func (p *parser) statement() *tree.Node {
	switch {
	case p.is("{"):
		return p.block()
	case p.is("if"):
		kw := p.take(tree.KindKeyword)
		open := p.expect("(", tree.KindPunct)
		cond := p.expr()
		closing := p.expect(")", tree.KindPunct)
		then := p.statement()
		var els []*tree.Node
		if p.is("else") {
			els = []*tree.Node{p.take(tree.KindKeyword), p.statement()}
		}
		return node(tree.KindIfStmt, kw, open, cond, closing, then, els)
	case p.is("while"):
		kw := p.take(tree.KindKeyword)
		open := p.expect("(", tree.KindPunct)
		cond := p.expr()
		closing := p.expect(")", tree.KindPunct)
		return node(tree.KindWhileStmt, kw, open, cond, closing, p.statement())
	case p.is("for"):
		return p.forStatement()
	case p.is("foreach"):
		kw := p.take(tree.KindKeyword)
		open := p.expect("(", tree.KindPunct)
		typ := p.typeRef()
		name := p.ident()
		in := p.expect("in", tree.KindKeyword)
		seq := p.expr()
		closing := p.expect(")", tree.KindPunct)
		return node(tree.KindForeachStmt, kw, open, typ, name, in, seq, closing, p.statement())
	case p.is("return"):
		kw := p.take(tree.KindKeyword)
		var value *tree.Node
		if !p.is(";") {
			value = p.expr()
		}
		return node(tree.KindReturnStmt, kw, value, p.expect(";", tree.KindPunct))
	case p.looksLikeDecl():
		return p.localDecl()
	default:
		e := p.expr()
		return node(tree.KindExprStmt, e, p.expect(";", tree.KindPunct))
	}
}

func (p *parser) forStatement() *tree.Node {
	parts := []*tree.Node{p.take(tree.KindKeyword), p.expect("(", tree.KindPunct)}
	switch {
	case p.is(";"):
		parts = append(parts, p.take(tree.KindPunct))
	case p.looksLikeDecl():
		parts = append(parts, p.localDecl())
	default:
		parts = append(parts, p.expr(), p.expect(";", tree.KindPunct))
	}
	if !p.is(";") {
		parts = append(parts, p.expr())
	}
	parts = append(parts, p.expect(";", tree.KindPunct))
	if !p.is(")") {
		parts = append(parts, p.expr())
	}
	parts = append(parts, p.expect(")", tree.KindPunct))
	return node(tree.KindForStmt, parts, p.statement())
}

// looksLikeDecl reports a local declaration: a type followed by a name.
func (p *parser) looksLikeDecl() bool {
	t0, t1 := p.peek(), p.peekAt(1)
	if t0.kind != tokWord || t1.kind != tokWord || reserved[t1.text] {
		return false
	}
	return predefinedTypes[t0.text] || !reserved[t0.text]
}

func (p *parser) localDecl() *tree.Node {
	typ := p.typeRef()
	name := p.ident()
	var init []*tree.Node
	if p.is("=") {
		init = []*tree.Node{p.take(tree.KindPunct), p.expr()}
	}
	return node(tree.KindLocalDecl, typ, name, init, p.expect(";", tree.KindPunct))
}

func (p *parser) expr() *tree.Node {
	lhs := p.binary(0)
	if t := p.peek(); t.kind == tokPunct && assignOps[t.text] {
		op := p.take(tree.KindPunct)
		return node(tree.KindAssignment, lhs, op, p.expr())
	}
	return lhs
}

func (p *parser) binary(minPrec int) *tree.Node {
	lhs := p.unary()
	for {
		t := p.peek()
		prec, ok := binPrec[t.text]
		if !ok || prec <= minPrec || (t.kind != tokPunct && t.kind != tokWord) {
			return lhs
		}
		if t.kind == tokWord {
			kw := p.take(tree.KindKeyword)
			typ := p.typeRef()
			if t.text == "as" {
				lhs = node(tree.KindAs, lhs, kw, typ)
			} else {
				lhs = node(tree.KindBinary, lhs, kw, typ)
			}
			continue
		}
		op := p.take(tree.KindPunct)
		lhs = node(tree.KindBinary, lhs, op, p.binary(prec))
	}
}

func (p *parser) unary() *tree.Node {
	if t := p.peek(); t.kind == tokPunct && prefixOps[t.text] {
		op := p.take(tree.KindPunct)
		return node(tree.KindPrefixUnary, op, p.unary())
	}
	if p.is("(") && p.peekAt(1).kind == tokWord && predefinedTypes[p.peekAt(1).text] && p.peekAt(2).text == ")" {
		open := p.take(tree.KindPunct)
		typ := p.take(tree.KindKeyword)
		closing := p.take(tree.KindPunct)
		return node(tree.KindCast, open, typ, closing, p.unary())
	}
	return p.postfix()
}

func (p *parser) postfix() *tree.Node {
	e := p.primary()
	for {
		switch {
		case p.is("."):
			dot := p.take(tree.KindPunct)
			e = node(tree.KindMemberAccess, e, dot, p.ident())
		case p.is("("):
			e = node(tree.KindInvocation, e, p.args())
		case p.is("++") || p.is("--"):
			e = node(tree.KindPostfixUnary, e, p.take(tree.KindPunct))
		default:
			return e
		}
	}
}

func (p *parser) primary() *tree.Node {
	t := p.peek()
	switch {
	case t.kind == tokNumber || t.kind == tokString:
		return p.take(tree.KindLiteral)
	case t.kind == tokWord && (t.text == "true" || t.text == "false" || t.text == "null"):
		return p.take(tree.KindLiteral)
	case t.kind == tokWord && (t.text == "this" || t.text == "base"):
		return p.take(tree.KindKeyword)
	case t.kind == tokWord && t.text == "new":
		kw := p.take(tree.KindKeyword)
		typ := p.typeRef()
		var args, init *tree.Node
		if p.is("(") {
			args = p.args()
		}
		if p.is("{") {
			init = p.initializer()
		}
		return node(tree.KindObjectCreation, kw, typ, args, init)
	case p.is("("):
		open := p.take(tree.KindPunct)
		inner := p.expr()
		return node(tree.KindParen, open, inner, p.expect(")", tree.KindPunct))
	case t.kind == tokWord && predefinedTypes[t.text]:
		return p.take(tree.KindKeyword)
	case t.kind == tokWord:
		return p.ident()
	default:
		p.fail("unexpected %q", t.text)
		return nil
	}
}

func (p *parser) args() *tree.Node {
	parts := []*tree.Node{p.expect("(", tree.KindPunct)}
	for !p.is(")") {
		if len(parts) > 1 {
			parts = append(parts, p.expect(",", tree.KindPunct))
		}
		var mod *tree.Node
		if p.is("ref") || p.is("out") || p.is("in") {
			mod = p.take(tree.KindModifier)
		}
		parts = append(parts, node(tree.KindArgument, mod, p.expr()))
	}
	return node(tree.KindArgumentList, parts, p.take(tree.KindPunct))
}

func (p *parser) initializer() *tree.Node {
	parts := []*tree.Node{p.expect("{", tree.KindPunct)}
	for !p.is("}") {
		if len(parts) > 1 {
			parts = append(parts, p.expect(",", tree.KindPunct))
			if p.is("}") {
				break
			}
		}
		parts = append(parts, p.expr())
	}
	return node(tree.KindInitializer, parts, p.take(tree.KindPunct))
}
