package tree

// Child layout per kind. Trees built by hosts follow these shapes and the
// helpers below rely on them. "*" marks repetition, "?" an optional part.
//
//	Namespace        namespace Name { member* }
//	TypeDecl         Modifier* class|struct|interface|record Name { member* }
//	FieldDecl        Modifier* type Name (= expr)? ;
//	PropertyDecl     Modifier* type Name { Accessor* }
//	Accessor         Modifier* get|set|init (Block | ;)
//	MethodDecl       Modifier* type Name ParameterList (Block | ;)
//	ConstructorDecl  Modifier* Name ParameterList Block
//	Parameter        Modifier* type Name (= expr)?
//	LocalDecl        type Name (= expr)? ;
//	IfStmt           if ( expr ) stmt (else stmt)?
//	WhileStmt        while ( expr ) stmt
//	ForStmt          for ( ... ) stmt
//	ForeachStmt      foreach ( type Name in expr ) stmt
//	Assignment       expr op expr
//	PrefixUnary      op expr
//	PostfixUnary     expr op
//	Invocation       expr ArgumentList
//	ObjectCreation   new type ArgumentList? Initializer?
//	ArgumentList     ( (Argument (, Argument)*)? )
//	Argument         Modifier? expr
//	MemberAccess     expr . Name
//
// A type is an Identifier or a Keyword for predefined types.

// DeclName returns the identifier a declaration introduces, or nil when n
// is not a declaration.
func DeclName(n *Node) *Node {
	switch n.kind {
	case KindNamespace, KindTypeDecl:
		return n.FirstChild(KindIdentifier)
	case KindFieldDecl, KindPropertyDecl, KindMethodDecl, KindConstructorDecl,
		KindParameter, KindLocalDecl:
		var name *Node
		for _, c := range n.children {
			if endsDeclarator(c) {
				break
			}
			if c.kind == KindIdentifier {
				name = c
			}
		}
		return name
	case KindForeachStmt:
		var name *Node
		for _, c := range n.children {
			if c.kind == KindKeyword && c.text == "in" {
				break
			}
			if c.kind == KindIdentifier {
				name = c
			}
		}
		return name
	default:
		return nil
	}
}

func endsDeclarator(c *Node) bool {
	switch c.kind {
	case KindParameterList, KindBlock, KindAccessor:
		return true
	case KindPunct:
		switch c.text {
		case "=", ";", "{", "=>":
			return true
		}
	}
	return false
}

// HasModifier reports whether a declaration carries the given modifier.
func HasModifier(n *Node, text string) bool {
	for _, c := range n.children {
		if c.kind == KindModifier && c.text == text {
			return true
		}
	}
	return false
}

// Operator returns the operator token text of an Assignment, Binary,
// PrefixUnary or PostfixUnary node, or "".
func Operator(n *Node) string {
	var op *Node
	switch n.kind {
	case KindAssignment, KindBinary:
		if len(n.children) == 3 {
			op = n.children[1]
		}
	case KindPrefixUnary:
		if len(n.children) > 0 {
			op = n.children[0]
		}
	case KindPostfixUnary:
		if len(n.children) > 0 {
			op = n.children[len(n.children)-1]
		}
	}
	if op == nil || op.kind != KindPunct {
		return ""
	}
	return op.text
}

// Operand returns the operand of a unary node, or nil.
func Operand(n *Node) *Node {
	switch n.kind {
	case KindPrefixUnary:
		if len(n.children) == 2 {
			return n.children[1]
		}
	case KindPostfixUnary:
		if len(n.children) == 2 {
			return n.children[0]
		}
	}
	return nil
}

// Embedded returns the statements an If, While, For or Foreach statement
// controls (then and else branches for If).
func Embedded(n *Node) []*Node {
	var out []*Node
	switch n.kind {
	case KindIfStmt:
		closed := false
		for _, c := range n.children {
			if c.kind == KindPunct && c.text == ")" {
				closed = true
				continue
			}
			if closed && c.kind.IsStatement() {
				out = append(out, c)
			}
		}
	case KindWhileStmt, KindForStmt, KindForeachStmt:
		if last := len(n.children) - 1; last >= 0 && n.children[last].kind.IsStatement() {
			out = append(out, n.children[last])
		}
	}
	return out
}
