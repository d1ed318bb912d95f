package tree

import "fmt"

// Kind tags a Node. The set is closed: every switch over Kind in this
// module lists all kinds and panics in default.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCompilationUnit
	KindNamespace
	KindTypeDecl
	KindFieldDecl
	KindPropertyDecl
	KindAccessor
	KindMethodDecl
	KindConstructorDecl
	KindParameterList
	KindParameter
	KindBlock
	KindExprStmt
	KindLocalDecl
	KindReturnStmt
	KindIfStmt
	KindWhileStmt
	KindForStmt
	KindForeachStmt
	KindAssignment
	KindPrefixUnary
	KindPostfixUnary
	KindBinary
	KindInvocation
	KindObjectCreation
	KindInitializer
	KindArgumentList
	KindArgument
	KindMemberAccess
	KindCast
	KindAs
	KindParen
	// leaf kinds
	KindIdentifier
	KindLiteral
	KindModifier
	KindKeyword
	KindPunct
	// KindElided holds the trivia of a node removed with TriviaPreserve.
	KindElided

	kindCount
)

var kindNames = [...]string{
	KindInvalid:         "Invalid",
	KindCompilationUnit: "CompilationUnit",
	KindNamespace:       "Namespace",
	KindTypeDecl:        "TypeDecl",
	KindFieldDecl:       "FieldDecl",
	KindPropertyDecl:    "PropertyDecl",
	KindAccessor:        "Accessor",
	KindMethodDecl:      "MethodDecl",
	KindConstructorDecl: "ConstructorDecl",
	KindParameterList:   "ParameterList",
	KindParameter:       "Parameter",
	KindBlock:           "Block",
	KindExprStmt:        "ExprStmt",
	KindLocalDecl:       "LocalDecl",
	KindReturnStmt:      "ReturnStmt",
	KindIfStmt:          "IfStmt",
	KindWhileStmt:       "WhileStmt",
	KindForStmt:         "ForStmt",
	KindForeachStmt:     "ForeachStmt",
	KindAssignment:      "Assignment",
	KindPrefixUnary:     "PrefixUnary",
	KindPostfixUnary:    "PostfixUnary",
	KindBinary:          "Binary",
	KindInvocation:      "Invocation",
	KindObjectCreation:  "ObjectCreation",
	KindInitializer:     "Initializer",
	KindArgumentList:    "ArgumentList",
	KindArgument:        "Argument",
	KindMemberAccess:    "MemberAccess",
	KindCast:            "Cast",
	KindAs:              "As",
	KindParen:           "Paren",
	KindIdentifier:      "Identifier",
	KindLiteral:         "Literal",
	KindModifier:        "Modifier",
	KindKeyword:         "Keyword",
	KindPunct:           "Punct",
	KindElided:          "Elided",
}

// compile-time check that kindNames covers every kind
var _ = [1]struct{}{}[len(kindNames)-int(kindCount)]

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a known, non-invalid kind.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsLeaf reports whether nodes of this kind carry text instead of children.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindIdentifier, KindLiteral, KindModifier, KindKeyword, KindPunct, KindElided:
		return true
	case KindCompilationUnit, KindNamespace, KindTypeDecl, KindFieldDecl, KindPropertyDecl,
		KindAccessor, KindMethodDecl, KindConstructorDecl, KindParameterList, KindParameter,
		KindBlock, KindExprStmt, KindLocalDecl, KindReturnStmt, KindIfStmt, KindWhileStmt,
		KindForStmt, KindForeachStmt, KindAssignment, KindPrefixUnary, KindPostfixUnary,
		KindBinary, KindInvocation, KindObjectCreation, KindInitializer, KindArgumentList, KindArgument,
		KindMemberAccess, KindCast, KindAs, KindParen:
		return false
	case KindInvalid, kindCount:
		panic(fmt.Sprintf("tree: IsLeaf on %s", k))
	default:
		panic(fmt.Sprintf("tree: unknown kind %d", uint8(k)))
	}
}

// IsStatement reports whether k is a statement kind.
func (k Kind) IsStatement() bool {
	switch k {
	case KindBlock, KindExprStmt, KindLocalDecl, KindReturnStmt, KindIfStmt,
		KindWhileStmt, KindForStmt, KindForeachStmt:
		return true
	default:
		return false
	}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindInvalid + 1; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// AllKinds returns every valid kind in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, 0, int(kindCount)-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
