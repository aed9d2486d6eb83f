package mbql

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mberr"
	"github.com/mindbeam/mindbase/pkg/mindbase"
	"github.com/mindbeam/mindbase/pkg/search"
)

type artifactSlot struct {
	expr      ArtifactExpr
	resolving bool
	resolved  bool
	value     mindbase.ArtifactId
}

type symbolSlot struct {
	stmtIdx   int
	resolving bool
	resolved  bool
	value     mindbase.Symbol
}

// Query holds a parsed MBQL program bound to a store, with lazy,
// demand-driven variable resolution: the first access to @v or $v
// evaluates its defining statement, which may itself demand other
// variables. A Query is not safe for concurrent Apply calls.
type Query struct {
	mb         *mindbase.MindBase
	statements []Statement
	applied    int

	mu           sync.Mutex
	artifactVars map[string]*artifactSlot
	symbolVars   map[string]*symbolSlot
}

// NewQuery parses src and registers every statement's variable slots in
// source order, matching every statement against the var it declares
// without evaluating anything yet.
func NewQuery(mb *mindbase.MindBase, src string) (*Query, error) {
	q := &Query{
		mb:           mb,
		artifactVars: map[string]*artifactSlot{},
		symbolVars:   map[string]*symbolSlot{},
	}
	if err := q.AddStatements(src); err != nil {
		return nil, err
	}
	return q, nil
}

// AddStatements parses src and appends its statements to the program,
// registering their variable slots in source order, without evaluating or
// re-evaluating anything. It lets a REPL grow a Query one line at a time
// while keeping earlier variable bindings intact: a later statement can
// still refer to @v or $v from an earlier call to AddStatements.
func (q *Query) AddStatements(src string) error {
	stmts, err := ParseProgram(src)
	if err != nil {
		return err
	}
	base := len(q.statements)
	for i, s := range stmts {
		switch s.Kind {
		case StmtArtifact:
			q.artifactVars[s.ArtifactVar] = &artifactSlot{expr: s.ArtifactExpr}
		case StmtSymbol:
			if s.SymbolVar != "" {
				q.symbolVars[s.SymbolVar] = &symbolSlot{stmtIdx: base + i}
			}
		}
	}
	q.statements = append(q.statements, stmts...)
	return nil
}

// Apply evaluates every statement added since the last Apply call (in
// source order, triggering any variable resolution it demands), writing
// Diag output to diagOut. Diag statements that print nothing meaningful
// still run, matching MBQL's top-to-bottom side-effect order. Calling
// Apply again after AddStatements applies only the newly added
// statements: earlier ones already ran and are not re-applied. A statement
// that returned an error counts as run and is not re-applied either.
func (q *Query) Apply(ctx context.Context, diagOut io.Writer) error {
	for q.applied < len(q.statements) {
		s := q.statements[q.applied]
		q.applied++
		switch s.Kind {
		case StmtArtifact:
			if _, err := q.resolveArtifactVar(ctx, s.ArtifactVar); err != nil {
				return err
			}
		case StmtSymbol:
			if s.SymbolVar != "" {
				if _, err := q.resolveSymbolVar(ctx, s.SymbolVar); err != nil {
					return err
				}
			} else if _, err := q.evalSymExpr(ctx, s.SymbolExpr); err != nil {
				return err
			}
		case StmtDiag:
			if err := q.applyDiag(ctx, s, diagOut); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetArtifactForVar returns the resolved artifact bound to name, resolving
// it on demand if it hasn't been accessed yet.
func (q *Query) GetArtifactForVar(ctx context.Context, name string) (mindbase.ArtifactId, error) {
	return q.resolveArtifactVar(ctx, name)
}

// GetSymbolForVar returns the resolved symbol bound to name, resolving it
// on demand if it hasn't been accessed yet.
func (q *Query) GetSymbolForVar(ctx context.Context, name string) (mindbase.Symbol, error) {
	return q.resolveSymbolVar(ctx, name)
}

func (q *Query) resolveArtifactVar(ctx context.Context, name string) (mindbase.ArtifactId, error) {
	q.mu.Lock()
	slot, ok := q.artifactVars[name]
	if !ok {
		q.mu.Unlock()
		return mindbase.ArtifactId{}, fmt.Errorf("%w: @%s", mberr.ErrArtifactVarNotFound, name)
	}
	if slot.resolved {
		v := slot.value
		q.mu.Unlock()
		return v, nil
	}
	if slot.resolving {
		q.mu.Unlock()
		return mindbase.ArtifactId{}, fmt.Errorf("%w: @%s", mberr.ErrCycle, name)
	}
	slot.resolving = true
	expr := slot.expr
	q.mu.Unlock()

	id, err := q.evalArtifactExpr(ctx, expr)

	q.mu.Lock()
	slot.resolving = false
	if err == nil {
		slot.resolved = true
		slot.value = id
	}
	q.mu.Unlock()
	return id, err
}

func (q *Query) resolveSymbolVar(ctx context.Context, name string) (mindbase.Symbol, error) {
	q.mu.Lock()
	slot, ok := q.symbolVars[name]
	if !ok {
		q.mu.Unlock()
		return mindbase.Symbol{}, fmt.Errorf("%w: $%s", mberr.ErrSymbolVarNotFound, name)
	}
	if slot.resolved {
		v := slot.value
		q.mu.Unlock()
		return v, nil
	}
	if slot.resolving {
		q.mu.Unlock()
		return mindbase.Symbol{}, fmt.Errorf("%w: $%s", mberr.ErrCycle, name)
	}
	slot.resolving = true
	expr := q.statements[slot.stmtIdx].SymbolExpr
	q.mu.Unlock()

	sym, err := q.evalSymExpr(ctx, expr)
	if err != nil {
		err = fmt.Errorf("%w: $%s: %v", mberr.ErrSymbolVarBindingFailed, name, err)
	}

	q.mu.Lock()
	slot.resolving = false
	if err == nil {
		slot.resolved = true
		slot.value = sym
	}
	q.mu.Unlock()
	return sym, err
}

func (q *Query) evalArtifactExpr(ctx context.Context, e ArtifactExpr) (mindbase.ArtifactId, error) {
	switch e.Kind {
	case AEVar:
		return q.resolveArtifactVar(ctx, e.VarName)

	case AEAgent:
		var agentID mbcrypto.AgentId
		if e.Agent == "default" {
			agentID = q.mb.DefaultAgent()
		} else {
			raw, err := base64.RawURLEncoding.DecodeString(e.Agent)
			if err != nil {
				return mindbase.ArtifactId{}, fmt.Errorf("%w: Agent(%q): %v", mberr.ErrDecoding, e.Agent, err)
			}
			agentID, err = mbcrypto.AgentIdFromBytes(raw)
			if err != nil {
				return mindbase.ArtifactId{}, fmt.Errorf("%w: Agent(%q): %v", mberr.ErrDecoding, e.Agent, err)
			}
		}
		return q.mb.PutArtifact(ctx, mindbase.AgentArtifact(agentID))

	case AEUrl:
		return q.mb.PutArtifact(ctx, mindbase.UrlArtifact(e.Url))

	case AEFlatText:
		return q.mb.PutArtifact(ctx, mindbase.FlatTextArtifact(e.Text))

	case AEDataNode:
		typeSym, err := q.evalSymExpr(ctx, *e.DataNodeType)
		if err != nil {
			return mindbase.ArtifactId{}, err
		}
		return q.mb.PutArtifact(ctx, mindbase.DataNodeArtifact(typeSym, e.DataNodeData))

	case AEDataRelation:
		// DataNodeRelation only records a (to, relation-type) edge; the
		// "from" side is implicit in the DataGraph it's embedded in, so
		// RelationFrom is evaluated for its side effects (Symbolize/Allege
		// commits it may trigger) and its value otherwise discarded.
		relSym, err := q.evalSymExpr(ctx, *e.RelationType)
		if err != nil {
			return mindbase.ArtifactId{}, err
		}
		toSym, err := q.evalSymExpr(ctx, *e.RelationTo)
		if err != nil {
			return mindbase.ArtifactId{}, err
		}
		if _, err := q.evalSymExpr(ctx, *e.RelationFrom); err != nil {
			return mindbase.ArtifactId{}, err
		}
		toAtom := toSym.Atoms[0].Id
		return q.mb.PutArtifact(ctx, mindbase.DataGraphArtifact(relSym,
			[]mindbase.ClaimId{toAtom},
			[]mindbase.DataNodeRelation{{To: toAtom, RelationType: relSym}}))
	}
	return mindbase.ArtifactId{}, fmt.Errorf("mbql: unhandled artifact expression kind %d", e.Kind)
}

func (q *Query) evalSymExpr(ctx context.Context, e SymExpr) (mindbase.Symbol, error) {
	switch e.Kind {
	case SymVar:
		return q.resolveSymbolVar(ctx, e.VarName)

	case SymLiteral, SymSymbolize:
		artifactID, err := q.evalArtifactExpr(ctx, *e.Artifact)
		if err != nil {
			return mindbase.Symbol{}, err
		}
		return q.mb.Symbolize(ctx, artifactID)

	case SymPair:
		left, err := q.evalSymExpr(ctx, *e.Left)
		if err != nil {
			return mindbase.Symbol{}, err
		}
		right, err := q.evalSymExpr(ctx, *e.Right)
		if err != nil {
			return mindbase.Symbol{}, err
		}
		return q.mb.Allege(ctx, left, right, 1.0)

	case SymGround:
		node, err := q.buildGroundNode(ctx, *e.Ground)
		if err != nil {
			return mindbase.Symbol{}, err
		}
		sc := search.NewContext(q.mb)
		sym, err := search.Resolve(ctx, sc, node, e.Vivify)
		if err != nil {
			return mindbase.Symbol{}, err
		}
		for _, b := range search.StashBindings(node) {
			q.stashSymbolVar(b.VarName, b.Symbol)
		}
		return sym, nil
	}
	return mindbase.Symbol{}, fmt.Errorf("mbql: unhandled symbol expression kind %d", e.Kind)
}

// stashSymbolVar records a symbol produced by resolving a Bound search node
// back into that variable's slot, without re-entering Apply's lazy path.
func (q *Query) stashSymbolVar(name string, sym mindbase.Symbol) {
	q.mu.Lock()
	defer q.mu.Unlock()
	slot, ok := q.symbolVars[name]
	if !ok || slot.resolved {
		return
	}
	slot.resolved = true
	slot.value = sym
}

// buildGroundNode translates a GroundExpr into a search.Node. A $var
// reference is Given if the variable already holds a resolved symbol;
// otherwise, if the variable is itself bound to a Ground(...) statement not
// yet applied, its tree is built recursively and wrapped Bound so the
// eventual resolution stashes back into the slot; any other kind of
// variable is resolved eagerly and treated as Given.
func (q *Query) buildGroundNode(ctx context.Context, g GroundExpr) (*search.Node, error) {
	switch g.Kind {
	case GArtifact:
		id, err := q.evalArtifactExpr(ctx, *g.Artifact)
		if err != nil {
			return nil, err
		}
		return search.NewArtifactNode(id), nil

	case GPair:
		left, err := q.buildGroundNode(ctx, *g.Left)
		if err != nil {
			return nil, err
		}
		right, err := q.buildGroundNode(ctx, *g.Right)
		if err != nil {
			return nil, err
		}
		return search.NewPairNode(left, right), nil

	case GVar:
		q.mu.Lock()
		slot, ok := q.symbolVars[g.VarName]
		if !ok {
			q.mu.Unlock()
			return nil, fmt.Errorf("%w: $%s", mberr.ErrSymbolVarNotFound, g.VarName)
		}
		if slot.resolved {
			sym := slot.value
			q.mu.Unlock()
			return search.NewGivenNode(sym), nil
		}
		defStmt := q.statements[slot.stmtIdx]
		q.mu.Unlock()

		if defStmt.SymbolExpr.Kind == SymGround {
			inner, err := q.buildGroundNode(ctx, *defStmt.SymbolExpr.Ground)
			if err != nil {
				return nil, err
			}
			return search.NewBoundNode(inner, g.VarName), nil
		}

		sym, err := q.resolveSymbolVar(ctx, g.VarName)
		if err != nil {
			return nil, err
		}
		return search.NewGivenNode(sym), nil
	}
	return nil, fmt.Errorf("mbql: unhandled ground expression kind %d", g.Kind)
}
