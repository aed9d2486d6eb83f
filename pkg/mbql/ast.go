// Package mbql implements the MBQL query language: lexer, parser, AST, and
// an evaluator that lazily resolves artifact/symbol variables against a
// mindbase.MindBase handle, grounding or vivifying symbols through
// pkg/search.
package mbql

// ArtifactExprKind discriminates ArtifactExpr's variants.
type ArtifactExprKind int

const (
	AEAgent ArtifactExprKind = iota
	AEUrl
	AEFlatText
	AEDataNode
	AEDataRelation
	AEVar
)

// ArtifactExpr is the AST for the right-hand side of an `@var = …`
// statement, or an artifact literal nested inside a symbol expression.
type ArtifactExpr struct {
	Kind ArtifactExprKind

	Agent string // AEAgent: base64 pubkey, or "default"
	Url   string // AEUrl
	Text  string // AEFlatText

	DataNodeType *SymExpr // AEDataNode
	DataNodeData []byte   // AEDataNode, optional

	RelationType *SymExpr // AEDataRelation
	RelationFrom *SymExpr // AEDataRelation
	RelationTo   *SymExpr // AEDataRelation

	VarName string // AEVar
}

// SymExprKind discriminates SymExpr's variants.
type SymExprKind int

const (
	// SymLiteral is a bare artifact expression used where a symbol is
	// expected; it is implicitly Symbolize-d.
	SymLiteral SymExprKind = iota
	// SymSymbolize is an explicit Symbolize(...) call.
	SymSymbolize
	// SymVar is a `$name` reference.
	SymVar
	// SymPair is `left : right`, i.e. Allege(left, right).
	SymPair
	// SymGround is Ground(...) / Ground!(...) / {…} / !{…}.
	SymGround
)

// SymExpr is the AST for a symbol expression.
type SymExpr struct {
	Kind SymExprKind

	Artifact *ArtifactExpr // SymLiteral, SymSymbolize

	VarName string // SymVar

	Left, Right *SymExpr // SymPair

	Ground *GroundExpr // SymGround
	Vivify bool        // SymGround: true for Ground(...)/{…}, false for Ground!/!{…}
}

// GroundExprKind discriminates GroundExpr's variants.
type GroundExprKind int

const (
	GArtifact GroundExprKind = iota
	GPair
	GVar
)

// GroundExpr is the ground-symbolizable sub-grammar: the argument of
// Ground[!](...). Its Artifact leaves are search-tree leaves (evaluated
// against the ground-agent corpus), not immediately Symbolize-d.
type GroundExpr struct {
	Kind GroundExprKind

	Artifact *ArtifactExpr // GArtifact

	Left, Right *GroundExpr // GPair

	VarName string // GVar
}

// StatementKind discriminates Statement's variants.
type StatementKind int

const (
	StmtArtifact StatementKind = iota
	StmtSymbol
	StmtDiag
)

// DiagItem is one `$v`, `@v`, or `$v~depth` argument of a Diag(...) call.
type DiagItem struct {
	// Sigil is '@' for an artifact variable or '$' for a symbol variable.
	Sigil byte
	Name  string
	// Depth is non-nil for a `$v~n` item: expand atoms through analogies n
	// levels deep when rendering.
	Depth *int
}

// Statement is one line of an MBQL program.
type Statement struct {
	Kind StatementKind
	Row  int

	// StmtArtifact.
	ArtifactVar  string
	ArtifactExpr ArtifactExpr

	// StmtSymbol. SymbolVar == "" means an anonymous (unbound) statement.
	SymbolVar  string
	SymbolExpr SymExpr

	// StmtDiag.
	DiagItems []DiagItem
}
