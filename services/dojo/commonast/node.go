// Package commonast defines the language-neutral syntax tree that
// multi-language pattern rules consume.
//
// Every front-end adapter converts its native tree-sitter tree into this
// shape. The model is intentionally small: a closed set of node kinds, a
// closed set of modifiers, byte ranges plus line/column positions, and a
// free-form metadata map for per-language facts such as the literal text of a
// base-class clause.
//
// Design principles:
//   - Closed enumerations: rules switch on NodeKind and Modifier, never on
//     native grammar node types
//   - Exclusive ownership: each child belongs to exactly one parent
//   - Immutable after construction for a given text snapshot
package commonast

// NodeKind classifies a Node. Native constructs with no counterpart map to
// KindUnknown and still keep their children.
type NodeKind string

const (
	KindClassDeclaration     NodeKind = "ClassDeclaration"
	KindInterfaceDeclaration NodeKind = "InterfaceDeclaration"
	KindStructDeclaration    NodeKind = "StructDeclaration"

	KindMethodDeclaration      NodeKind = "MethodDeclaration"
	KindFunctionDeclaration    NodeKind = "FunctionDeclaration"
	KindConstructorDeclaration NodeKind = "ConstructorDeclaration"

	KindPropertyDeclaration NodeKind = "PropertyDeclaration"
	KindFieldDeclaration    NodeKind = "FieldDeclaration"

	// === Statements ===

	KindIfStatement     NodeKind = "IfStatement"
	KindSwitchStatement NodeKind = "SwitchStatement"
	KindTryStatement    NodeKind = "TryStatement"
	KindForStatement    NodeKind = "ForStatement"
	KindWhileStatement  NodeKind = "WhileStatement"

	// === Expressions ===

	KindCallExpression       NodeKind = "CallExpression"
	KindNewExpression        NodeKind = "NewExpression"
	KindAssignmentExpression NodeKind = "AssignmentExpression"
	KindTypeAssertion        NodeKind = "TypeAssertion"
	KindMemberAccess         NodeKind = "MemberAccess"
	KindIdentifier           NodeKind = "Identifier"
	KindBinaryExpression     NodeKind = "BinaryExpression"

	KindParameterDeclaration NodeKind = "ParameterDeclaration"
	KindVariableDeclaration  NodeKind = "VariableDeclaration"

	KindUnknown NodeKind = "Unknown"
)

// IsDeclaration reports whether the kind names a type or member declaration.
func (k NodeKind) IsDeclaration() bool {
	switch k {
	case KindClassDeclaration, KindInterfaceDeclaration, KindStructDeclaration,
		KindMethodDeclaration, KindFunctionDeclaration, KindConstructorDeclaration,
		KindPropertyDeclaration, KindFieldDeclaration:
		return true
	default:
		return false
	}
}

// IsTypeDeclaration reports whether the kind is a class, interface or struct.
func (k NodeKind) IsTypeDeclaration() bool {
	return k == KindClassDeclaration || k == KindInterfaceDeclaration || k == KindStructDeclaration
}

// Modifier is a declaration modifier recognised across languages.
type Modifier string

const (
	ModifierPublic       Modifier = "public"
	ModifierPrivate      Modifier = "private"
	ModifierProtected    Modifier = "protected"
	ModifierStatic       Modifier = "static"
	ModifierAbstract     Modifier = "abstract"
	ModifierFinal        Modifier = "final"
	ModifierReadonly     Modifier = "readonly"
	ModifierAsync        Modifier = "async"
	ModifierSynchronized Modifier = "synchronized"
)

// ParseModifier maps a source keyword to a Modifier. The second return value
// is false for keywords outside the closed set.
func ParseModifier(keyword string) (Modifier, bool) {
	switch Modifier(keyword) {
	case ModifierPublic, ModifierPrivate, ModifierProtected, ModifierStatic,
		ModifierAbstract, ModifierFinal, ModifierReadonly, ModifierAsync,
		ModifierSynchronized:
		return Modifier(keyword), true
	default:
		return "", false
	}
}

// Well-known Metadata keys.
const (
	// MetaExtendsClass holds the single parent class name used for
	// inheritance-depth analysis.
	MetaExtendsClass = "extendsClass"

	// MetaBaseClass holds the literal base-list text (C#).
	MetaBaseClass = "baseClass"

	// MetaNativeType holds the grammar node type the node was built from.
	MetaNativeType = "nativeType"
)

// Node is one node of the common tree.
//
// StartPosition and EndPosition form the half-open byte range [start, end).
// Lines are 1-based, columns 0-based byte offsets within the line. A child's
// range is contained in its parent's range and siblings are ordered by start
// offset without overlap.
type Node struct {
	Kind NodeKind `json:"kind"`

	// Name is the declared or referenced name, empty when not applicable.
	Name string `json:"name,omitempty"`

	StartPosition int `json:"start_position"`
	EndPosition   int `json:"end_position"`
	StartLine     int `json:"start_line"`
	StartColumn   int `json:"start_column"`
	EndLine       int `json:"end_line"`
	EndColumn     int `json:"end_column"`

	// Text is the source slice covered by the node.
	Text string `json:"-"`

	Children []*Node `json:"children,omitempty"`

	// Modifiers is nil when the declaration carries none.
	Modifiers []Modifier `json:"modifiers,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// HasModifier reports whether m is among the node's modifiers.
func (n *Node) HasModifier(m Modifier) bool {
	for _, mod := range n.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// Meta returns a metadata value, or "" when absent.
func (n *Node) Meta(key string) string {
	if n.Metadata == nil {
		return ""
	}
	return n.Metadata[key]
}

// Walk visits n and its descendants in pre-order. Returning false from visit
// skips the children of the visited node.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// FindAll returns every descendant (including n) of the given kind in
// pre-order.
func (n *Node) FindAll(kind NodeKind) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == kind {
			out = append(out, node)
		}
		return true
	})
	return out
}

// ChildrenOf returns the direct children of the given kind.
func (n *Node) ChildrenOf(kind NodeKind) []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}

// Contains reports whether other's byte range lies within n's range.
func (n *Node) Contains(other *Node) bool {
	return other.StartPosition >= n.StartPosition && other.EndPosition <= n.EndPosition
}
