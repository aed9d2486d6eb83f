package mbql

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mindbeam/mindbase/pkg/mindbase"
)

func (q *Query) applyDiag(ctx context.Context, s Statement, out io.Writer) error {
	for _, item := range s.DiagItems {
		var rendered string
		var err error
		switch item.Sigil {
		case '@':
			rendered, err = q.renderArtifactVar(ctx, item.Name)
		case '$':
			depth := 0
			if item.Depth != nil {
				depth = *item.Depth
			}
			rendered, err = q.renderSymbolVar(ctx, item.Name, depth)
		}
		if err != nil {
			return err
		}
		if _, werr := fmt.Fprintf(out, "%c%s = %s\n", item.Sigil, item.Name, rendered); werr != nil {
			return werr
		}
	}
	return nil
}

func (q *Query) renderArtifactVar(ctx context.Context, name string) (string, error) {
	id, err := q.resolveArtifactVar(ctx, name)
	if err != nil {
		return "", err
	}
	a, err := q.mb.GetArtifact(ctx, id)
	if err != nil {
		return "", err
	}
	return renderArtifact(a), nil
}

func renderArtifact(a mindbase.Artifact) string {
	switch a.Kind {
	case mindbase.ArtifactAgent:
		return fmt.Sprintf("Agent(%s)", a.Agent)
	case mindbase.ArtifactUrl:
		return fmt.Sprintf("Url(%q)", a.Url)
	case mindbase.ArtifactFlatText:
		return fmt.Sprintf("Text(%q)", a.Text)
	case mindbase.ArtifactDataNode:
		return fmt.Sprintf("DataNode(%s; %d bytes)", a.DataType, len(a.Data))
	case mindbase.ArtifactDataGraph:
		return fmt.Sprintf("DataGraph(%s; %d nodes, %d relations)", a.GraphType, len(a.Nodes), len(a.Relations))
	}
	return "<unknown artifact>"
}

func (q *Query) renderSymbolVar(ctx context.Context, name string, depth int) (string, error) {
	sym, err := q.resolveSymbolVar(ctx, name)
	if err != nil {
		return "", err
	}
	return q.renderSymbol(ctx, sym, depth)
}

func (q *Query) renderSymbol(ctx context.Context, sym mindbase.Symbol, depth int) (string, error) {
	parts := make([]string, 0, len(sym.Atoms))
	for _, atom := range sym.Atoms {
		rendered, err := q.renderAtom(ctx, atom, depth)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func (q *Query) renderAtom(ctx context.Context, atom mindbase.Atom, depth int) (string, error) {
	prefix := ""
	if atom.Spin == mindbase.Down {
		prefix = "!"
	}
	if depth <= 0 {
		return prefix + atom.Id.String(), nil
	}
	claim, err := q.mb.GetClaim(ctx, atom.Id)
	if err != nil {
		return prefix + atom.Id.String(), nil
	}
	if claim.Body.Kind != mindbase.BodyAnalogy {
		return prefix + atom.Id.String(), nil
	}
	left, err := q.renderSymbol(ctx, claim.Body.Left, depth-1)
	if err != nil {
		return "", err
	}
	right, err := q.renderSymbol(ctx, claim.Body.Right, depth-1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s : %s)", prefix, left, right), nil
}
