package mbql

import (
	"strconv"
	"strings"

	"github.com/mindbeam/mindbase/pkg/mberr"
)

// ParseProgram parses MBQL source into a sequence of statements, one per
// non-blank, non-comment physical line.
func ParseProgram(src string) ([]Statement, error) {
	var stmts []Statement
	for i, line := range strings.Split(src, "\n") {
		row := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		stmt, err := parseLine(trimmed, row)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

type parser struct {
	toks []token
	pos  int
	row  int
	line string
}

func parseLine(line string, row int) (Statement, error) {
	toks, err := lexLine(line)
	if err != nil {
		return Statement{}, &mberr.ParseError{Row: row, Input: line, Detail: err.Error()}
	}
	p := &parser{toks: toks, row: row, line: line}
	stmt, err := p.parseStatement()
	if err != nil {
		return Statement{}, err
	}
	if p.peek().kind != tokEOF {
		return Statement{}, p.errf("trailing input after statement")
	}
	stmt.Row = row
	return stmt, nil
}

func (p *parser) peek() token    { return p.toks[p.pos] }
func (p *parser) advance() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) errf(detail string) error {
	return &mberr.ParseError{Row: p.row, Column: p.peek().col, Input: p.line, Detail: detail}
}

func (p *parser) expect(k tokKind, what string) (token, error) {
	if p.peek().kind != k {
		return token{}, p.errf("expected " + what)
	}
	return p.advance(), nil
}

func (p *parser) expectIdent(word string) error {
	t := p.peek()
	if t.kind != tokIdent || t.text != word {
		return p.errf("expected keyword " + word)
	}
	p.advance()
	return nil
}

// parseStatement dispatches on the line's leading token.
func (p *parser) parseStatement() (Statement, error) {
	switch p.peek().kind {
	case tokAt:
		return p.parseArtifactStatement()
	case tokDollar:
		return p.parseNamedSymbolStatement()
	case tokIdent:
		if p.peek().text == "Diag" {
			return p.parseDiagStatement()
		}
	}
	expr, err := p.parseSymExpr()
	if err != nil {
		return Statement{}, err
	}
	return Statement{Kind: StmtSymbol, SymbolExpr: expr}, nil
}

func (p *parser) parseArtifactStatement() (Statement, error) {
	if _, err := p.expect(tokAt, "'@'"); err != nil {
		return Statement{}, err
	}
	name, err := p.expect(tokIdent, "variable name")
	if err != nil {
		return Statement{}, err
	}
	if _, err := p.expect(tokEq, "'='"); err != nil {
		return Statement{}, err
	}
	expr, err := p.parseArtifactExpr()
	if err != nil {
		return Statement{}, err
	}
	return Statement{Kind: StmtArtifact, ArtifactVar: name.text, ArtifactExpr: expr}, nil
}

func (p *parser) parseNamedSymbolStatement() (Statement, error) {
	if _, err := p.expect(tokDollar, "'$'"); err != nil {
		return Statement{}, err
	}
	name, err := p.expect(tokIdent, "variable name")
	if err != nil {
		return Statement{}, err
	}
	if _, err := p.expect(tokEq, "'='"); err != nil {
		return Statement{}, err
	}
	expr, err := p.parseSymExpr()
	if err != nil {
		return Statement{}, err
	}
	return Statement{Kind: StmtSymbol, SymbolVar: name.text, SymbolExpr: expr}, nil
}

func (p *parser) parseDiagStatement() (Statement, error) {
	if err := p.expectIdent("Diag"); err != nil {
		return Statement{}, err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return Statement{}, err
	}
	var items []DiagItem
	for {
		var item DiagItem
		switch p.peek().kind {
		case tokAt:
			p.advance()
			item.Sigil = '@'
		case tokDollar:
			p.advance()
			item.Sigil = '$'
		default:
			return Statement{}, p.errf("expected '@' or '$' in Diag argument")
		}
		name, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return Statement{}, err
		}
		item.Name = name.text
		if p.peek().kind == tokTilde {
			p.advance()
			num, err := p.expect(tokNumber, "depth")
			if err != nil {
				return Statement{}, err
			}
			n, _ := strconv.Atoi(num.text)
			item.Depth = &n
		}
		items = append(items, item)
		if p.peek().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return Statement{}, err
	}
	return Statement{Kind: StmtDiag, DiagItems: items}, nil
}

// parseArtifactExpr parses Agent/Url/Text/DataNode/DataRelation/@var.
func (p *parser) parseArtifactExpr() (ArtifactExpr, error) {
	t := p.peek()
	if t.kind == tokAt {
		p.advance()
		name, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return ArtifactExpr{}, err
		}
		return ArtifactExpr{Kind: AEVar, VarName: name.text}, nil
	}
	if t.kind != tokIdent {
		return ArtifactExpr{}, p.errf("expected an artifact expression")
	}
	switch t.text {
	case "Agent":
		p.advance()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return ArtifactExpr{}, err
		}
		var agent string
		switch p.peek().kind {
		case tokIdent:
			kw, _ := p.expect(tokIdent, "'default'")
			if kw.text != "default" {
				return ArtifactExpr{}, p.errf("expected 'default' or a quoted base64 key")
			}
			agent = "default"
		case tokString:
			s, _ := p.expect(tokString, "base64 agent key")
			agent = s.text
		default:
			return ArtifactExpr{}, p.errf("expected 'default' or a quoted base64 key")
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return ArtifactExpr{}, err
		}
		return ArtifactExpr{Kind: AEAgent, Agent: agent}, nil

	case "Url":
		p.advance()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return ArtifactExpr{}, err
		}
		s, err := p.expect(tokString, "quoted URL")
		if err != nil {
			return ArtifactExpr{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return ArtifactExpr{}, err
		}
		return ArtifactExpr{Kind: AEUrl, Url: s.text}, nil

	case "Text":
		p.advance()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return ArtifactExpr{}, err
		}
		s, err := p.expect(tokString, "quoted text")
		if err != nil {
			return ArtifactExpr{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return ArtifactExpr{}, err
		}
		return ArtifactExpr{Kind: AEFlatText, Text: s.text}, nil

	case "DataNode":
		p.advance()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return ArtifactExpr{}, err
		}
		nodeType, err := p.parseSymExpr()
		if err != nil {
			return ArtifactExpr{}, err
		}
		var data []byte
		if p.peek().kind == tokSemi {
			p.advance()
			s, err := p.expect(tokString, "data payload")
			if err != nil {
				return ArtifactExpr{}, err
			}
			data = []byte(s.text)
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return ArtifactExpr{}, err
		}
		return ArtifactExpr{Kind: AEDataNode, DataNodeType: &nodeType, DataNodeData: data}, nil

	case "DataRelation":
		p.advance()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return ArtifactExpr{}, err
		}
		relType, err := p.parseSymExpr()
		if err != nil {
			return ArtifactExpr{}, err
		}
		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return ArtifactExpr{}, err
		}
		from, err := p.parseSymExpr()
		if err != nil {
			return ArtifactExpr{}, err
		}
		if _, err := p.expect(tokGt, "'>'"); err != nil {
			return ArtifactExpr{}, err
		}
		to, err := p.parseSymExpr()
		if err != nil {
			return ArtifactExpr{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return ArtifactExpr{}, err
		}
		return ArtifactExpr{Kind: AEDataRelation, RelationType: &relType, RelationFrom: &from, RelationTo: &to}, nil
	}
	return ArtifactExpr{}, p.errf("unknown artifact expression " + t.text)
}

// parseSymExpr parses a `:`-separated chain of symbol terms, left-folding
// into nested SymPair nodes (Allege shorthand).
func (p *parser) parseSymExpr() (SymExpr, error) {
	left, err := p.parseSymTerm()
	if err != nil {
		return SymExpr{}, err
	}
	for p.peek().kind == tokColon {
		p.advance()
		right, err := p.parseSymTerm()
		if err != nil {
			return SymExpr{}, err
		}
		l, r := left, right
		left = SymExpr{Kind: SymPair, Left: &l, Right: &r}
	}
	return left, nil
}

func (p *parser) parseSymTerm() (SymExpr, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.advance()
		inner, err := p.parseSymExpr()
		if err != nil {
			return SymExpr{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return SymExpr{}, err
		}
		return inner, nil

	case tokString:
		p.advance()
		ae := ArtifactExpr{Kind: AEFlatText, Text: t.text}
		return SymExpr{Kind: SymLiteral, Artifact: &ae}, nil

	case tokDollar:
		p.advance()
		name, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return SymExpr{}, err
		}
		return SymExpr{Kind: SymVar, VarName: name.text}, nil

	case tokLBrace:
		p.advance()
		g, err := p.parseGroundExpr()
		if err != nil {
			return SymExpr{}, err
		}
		if _, err := p.expect(tokRBrace, "'}'"); err != nil {
			return SymExpr{}, err
		}
		return SymExpr{Kind: SymGround, Ground: &g, Vivify: true}, nil

	case tokBang:
		p.advance()
		if _, err := p.expect(tokLBrace, "'{'"); err != nil {
			return SymExpr{}, err
		}
		g, err := p.parseGroundExpr()
		if err != nil {
			return SymExpr{}, err
		}
		if _, err := p.expect(tokRBrace, "'}'"); err != nil {
			return SymExpr{}, err
		}
		return SymExpr{Kind: SymGround, Ground: &g, Vivify: false}, nil

	case tokAt:
		ae, err := p.parseArtifactExpr()
		if err != nil {
			return SymExpr{}, err
		}
		return SymExpr{Kind: SymLiteral, Artifact: &ae}, nil

	case tokIdent:
		switch t.text {
		case "Allege":
			p.advance()
			if _, err := p.expect(tokLParen, "'('"); err != nil {
				return SymExpr{}, err
			}
			inner, err := p.parseSymExpr()
			if err != nil {
				return SymExpr{}, err
			}
			if inner.Kind != SymPair {
				return SymExpr{}, p.errf("Allege(...) requires a ':' pair")
			}
			if _, err := p.expect(tokRParen, "')'"); err != nil {
				return SymExpr{}, err
			}
			return inner, nil

		case "Symbolize":
			p.advance()
			if _, err := p.expect(tokLParen, "'('"); err != nil {
				return SymExpr{}, err
			}
			ae, err := p.parseArtifactExpr()
			if err != nil {
				return SymExpr{}, err
			}
			if _, err := p.expect(tokRParen, "')'"); err != nil {
				return SymExpr{}, err
			}
			return SymExpr{Kind: SymSymbolize, Artifact: &ae}, nil

		case "Ground":
			p.advance()
			vivify := true
			if p.peek().kind == tokBang {
				p.advance()
				vivify = false
			}
			if _, err := p.expect(tokLParen, "'('"); err != nil {
				return SymExpr{}, err
			}
			g, err := p.parseGroundExpr()
			if err != nil {
				return SymExpr{}, err
			}
			if _, err := p.expect(tokRParen, "')'"); err != nil {
				return SymExpr{}, err
			}
			return SymExpr{Kind: SymGround, Ground: &g, Vivify: vivify}, nil

		case "Agent", "Url", "Text", "DataNode", "DataRelation":
			ae, err := p.parseArtifactExpr()
			if err != nil {
				return SymExpr{}, err
			}
			return SymExpr{Kind: SymLiteral, Artifact: &ae}, nil
		}
	}
	return SymExpr{}, p.errf("expected a symbol expression")
}

// parseGroundExpr parses a `:`-separated chain of ground terms (artifact
// literals, @var, or $var), left-folding into nested GPair nodes.
func (p *parser) parseGroundExpr() (GroundExpr, error) {
	left, err := p.parseGroundTerm()
	if err != nil {
		return GroundExpr{}, err
	}
	for p.peek().kind == tokColon {
		p.advance()
		right, err := p.parseGroundTerm()
		if err != nil {
			return GroundExpr{}, err
		}
		l, r := left, right
		left = GroundExpr{Kind: GPair, Left: &l, Right: &r}
	}
	return left, nil
}

func (p *parser) parseGroundTerm() (GroundExpr, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.advance()
		inner, err := p.parseGroundExpr()
		if err != nil {
			return GroundExpr{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return GroundExpr{}, err
		}
		return inner, nil

	case tokString:
		p.advance()
		ae := ArtifactExpr{Kind: AEFlatText, Text: t.text}
		return GroundExpr{Kind: GArtifact, Artifact: &ae}, nil

	case tokDollar:
		p.advance()
		name, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return GroundExpr{}, err
		}
		return GroundExpr{Kind: GVar, VarName: name.text}, nil

	case tokAt:
		ae, err := p.parseArtifactExpr()
		if err != nil {
			return GroundExpr{}, err
		}
		return GroundExpr{Kind: GArtifact, Artifact: &ae}, nil

	case tokIdent:
		switch t.text {
		case "Agent", "Url", "Text", "DataNode", "DataRelation":
			ae, err := p.parseArtifactExpr()
			if err != nil {
				return GroundExpr{}, err
			}
			return GroundExpr{Kind: GArtifact, Artifact: &ae}, nil
		}
	}
	return GroundExpr{}, p.errf("expected a ground expression")
}
