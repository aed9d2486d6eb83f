// Package genesis seeds a freshly-opened MindBase with a small base
// vocabulary. The vocabulary itself lives in vocabulary.yaml, kept
// separate from the code that turns it into MBQL so the word list stays
// reviewable and editable without touching Go.
package genesis

import (
	_ "embed"
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mindbeam/mindbase/pkg/mbql"
	"github.com/mindbeam/mindbase/pkg/mindbase"
)

//go:embed vocabulary.yaml
var vocabularyYAML []byte

// vocabulary is vocabulary.yaml's shape: a flat word list, each seeded as
// its own Text artifact and Symbolized, plus a handful of Allege
// relations between already-listed words.
type vocabulary struct {
	Words     []string `yaml:"words"`
	Relations []struct {
		Type  string `yaml:"type"`
		Left  string `yaml:"left"`
		Right string `yaml:"right"`
	} `yaml:"relations"`
}

// varName maps a vocabulary word to the MBQL variable name it's bound to:
// spaces aren't legal in an identifier, so they become underscores.
func varName(word string) string {
	return "w" + strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, word)
}

// buildSeedScript renders vocabulary.yaml into an MBQL program: one
// artifact+Symbolize pair per word, followed by one bare Allege statement
// per relation.
func buildSeedScript() (string, error) {
	var v vocabulary
	if err := yaml.Unmarshal(vocabularyYAML, &v); err != nil {
		return "", fmt.Errorf("genesis: parse vocabulary: %w", err)
	}

	var b strings.Builder
	for _, w := range v.Words {
		name := varName(w)
		fmt.Fprintf(&b, "@%s = Text(%q)\n", name, w)
		fmt.Fprintf(&b, "$%s = Symbolize(@%s)\n", name, name)
	}
	for _, rel := range v.Relations {
		fmt.Fprintf(&b, "# %s: %s -> %s\n", rel.Type, rel.Left, rel.Right)
		fmt.Fprintf(&b, "$%s:$%s\n", varName(rel.Left), varName(rel.Right))
	}
	return b.String(), nil
}

// Apply seeds mb with the base vocabulary. It is safe to call on a store
// that already has some or all of the seed: artifacts dedupe by content
// hash, so re-applying mints no new artifacts, only new (but otherwise
// inert) Symbolize/Allege claims restating the same facts.
func Apply(ctx context.Context, mb *mindbase.MindBase) error {
	src, err := buildSeedScript()
	if err != nil {
		return err
	}
	q, err := mbql.NewQuery(mb, src)
	if err != nil {
		return fmt.Errorf("genesis: parse seed vocabulary: %w", err)
	}
	if err := q.Apply(ctx, io.Discard); err != nil {
		return fmt.Errorf("genesis: apply seed vocabulary: %w", err)
	}
	return nil
}
