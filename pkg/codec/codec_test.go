package codec

import "testing"

type sample struct {
	Name  string
	Count int
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sample{Name: "claim", Count: 7}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != Version1 {
		t.Fatalf("version header = %d, want %d", data[0], Version1)
	}

	var out sample
	if err := Decode(data, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	in := sample{Name: "x", Count: 1}
	a, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("Encode should be deterministic for equal inputs")
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	if err := Decode([]byte{0xff, 0x00}, &sample{}); err == nil {
		t.Fatal("expected error for unsupported schema version")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if err := Decode(nil, &sample{}); err == nil {
		t.Fatal("expected error for empty input")
	}
}
