package fuzzyset

import "testing"

func TestInterrogateAnalogyWithExpansiveCorpus(t *testing.T) {
	c := FromDipole(items("hot", "picante"), items("mild", "suave"))
	q := FromDipole(items("hot"), items("mild"))

	got := c.InterrogateWith(q).String()
	want := "[-hot^0.50 -picante^0.50 : +mild^0.50 +suave^0.50]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	q.InvertPolarity()
	got = c.InterrogateWith(q).String()
	want = "[-mild^0.50 -suave^0.50 : +hot^0.50 +picante^0.50]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	c.InvertPolarity()
	got = c.InterrogateWith(q).String()
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterrogateMinimalPolarInference(t *testing.T) {
	c := FromDipole(items("hot", "picante"), items("mild", "suave"))
	q := FromMonopole(items("hot", "picante"))

	result := c.InterrogateWith(q)
	want := "[-hot^1.00 -picante^1.00 : +mild^1.00 +suave^1.00]"
	if got := result.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	c.InvertPolarity()
	result = c.InterrogateWith(q)
	if got := result.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	pos := FromItems(result.Positive()...)
	if got, want := pos.String(), "{(mild,1.00) (suave,1.00)}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterrogateHalfExpansiveCorpus(t *testing.T) {
	c := FromDipole(items("hot", "picante"), items("mild", "suave"))
	q := FromDipole(items("hot", "picante"), items("mild"))

	got := c.InterrogateWith(q).String()
	want := "[-hot^0.50 -picante^0.50 : +mild^1.00 +suave^1.00]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterrogateReductiveCorpus(t *testing.T) {
	c := FromDipole(items("hot"), items("mild"))
	q := FromDipole(items("hot", "calido"), items("mild", "templado"))

	got := c.InterrogateWith(q).String()
	want := "[-calido^1.00 -hot^1.00 : +mild^1.00 +templado^1.00]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	q.InvertPolarity()
	got = c.InterrogateWith(q).String()
	want = "[-mild^1.00 -templado^1.00 : +calido^1.00 +hot^1.00]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	c.InvertPolarity()
	got = c.InterrogateWith(q).String()
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterrogateLesserWeightsThroughImperfectAnalogy(t *testing.T) {
	a := FromDipole(items("Woman", "Girl"), items("Queen", "Princess"))
	q := FromDipole(items("Queen", "King"), items("Man", "Woman"))

	got := a.InterrogateWith(q).String()
	want := "[-King^0.67 -Princess^0.67 -Queen^0.67 : +Girl^0.67 +Man^0.67 +Woman^0.67]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterrogateDisjointReturnsNil(t *testing.T) {
	a := FromDipole(items("a"), items("b"))
	b := FromDipole(items("x"), items("y"))
	if got := a.InterrogateWith(b); got != nil {
		t.Fatalf("expected nil for disjoint sets, got %v", got)
	}
}
