// Package xport implements MindBase's JSON dump/load format: one record per
// line, each either an Artifact or an Allegation (Claim) tagged by a
// single-key envelope, so a corpus can be moved between stores or inspected
// outside the binary store encoding.
package xport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mindbeam/mindbase/pkg/mindbase"
)

type artifactLine struct {
	Artifact [2]json.RawMessage `json:"Artifact"`
}

type allegationLine struct {
	Allegation [2]json.RawMessage `json:"Allegation"`
}

// probe is decoded first against every line to discover which variant it
// is, without committing to either concrete shape.
type probe struct {
	Artifact   json.RawMessage `json:"Artifact,omitempty"`
	Allegation json.RawMessage `json:"Allegation,omitempty"`
}

// Dump writes every artifact, then every claim, from mb to w as newline-
// delimited JSON records. Artifacts are written first so a fresh load never
// sees a claim referencing an artifact it hasn't written yet.
func Dump(ctx context.Context, mb *mindbase.MindBase, w io.Writer) error {
	enc := json.NewEncoder(w)

	for rec, err := range mb.IterArtifacts(ctx) {
		if err != nil {
			return fmt.Errorf("xport: iterate artifacts: %w", err)
		}
		idJSON, err := json.Marshal(rec.Id)
		if err != nil {
			return fmt.Errorf("xport: encode artifact id: %w", err)
		}
		bodyJSON, err := json.Marshal(rec.Artifact)
		if err != nil {
			return fmt.Errorf("xport: encode artifact: %w", err)
		}
		if err := enc.Encode(artifactLine{Artifact: [2]json.RawMessage{idJSON, bodyJSON}}); err != nil {
			return fmt.Errorf("xport: write artifact record: %w", err)
		}
	}

	for claim, err := range mb.IterClaims(ctx) {
		if err != nil {
			return fmt.Errorf("xport: iterate claims: %w", err)
		}
		idJSON, err := json.Marshal(claim.Id)
		if err != nil {
			return fmt.Errorf("xport: encode claim id: %w", err)
		}
		bodyJSON, err := json.Marshal(claim)
		if err != nil {
			return fmt.Errorf("xport: encode claim: %w", err)
		}
		if err := enc.Encode(allegationLine{Allegation: [2]json.RawMessage{idJSON, bodyJSON}}); err != nil {
			return fmt.Errorf("xport: write allegation record: %w", err)
		}
	}

	return nil
}

// Load reads newline-delimited JSON records from r and writes each into mb.
// Record order is not significant: an Allegation referencing an artifact
// loads fine regardless of whether that artifact's record came before or
// after it, since artifact ids are content hashes rather than forward
// references resolved at load time.
func Load(ctx context.Context, mb *mindbase.MindBase, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p probe
		if err := json.Unmarshal(line, &p); err != nil {
			return fmt.Errorf("xport: line %d: decode record: %w", lineNo, err)
		}
		switch {
		case p.Artifact != nil:
			var pair [2]json.RawMessage
			if err := json.Unmarshal(p.Artifact, &pair); err != nil {
				return fmt.Errorf("xport: line %d: decode artifact pair: %w", lineNo, err)
			}
			var a mindbase.Artifact
			if err := json.Unmarshal(pair[1], &a); err != nil {
				return fmt.Errorf("xport: line %d: decode artifact: %w", lineNo, err)
			}
			if _, err := mb.PutArtifact(ctx, a); err != nil {
				return fmt.Errorf("xport: line %d: put artifact: %w", lineNo, err)
			}

		case p.Allegation != nil:
			var pair [2]json.RawMessage
			if err := json.Unmarshal(p.Allegation, &pair); err != nil {
				return fmt.Errorf("xport: line %d: decode allegation pair: %w", lineNo, err)
			}
			var c mindbase.Claim
			if err := json.Unmarshal(pair[1], &c); err != nil {
				return fmt.Errorf("xport: line %d: decode claim: %w", lineNo, err)
			}
			if err := mb.PutClaim(ctx, c); err != nil {
				return fmt.Errorf("xport: line %d: put claim: %w", lineNo, err)
			}

		default:
			return fmt.Errorf("xport: line %d: record has neither Artifact nor Allegation key", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("xport: scan: %w", err)
	}
	return nil
}
