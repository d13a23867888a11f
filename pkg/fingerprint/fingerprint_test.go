package fingerprint

import (
	"errors"
	"math"
	"testing"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

func TestEmbedding_Deterministic(t *testing.T) {
	e := identity.Embedding{0.1, -0.25, 3.5, 0}

	a, err := Embedding(e)
	if err != nil {
		t.Fatalf("Embedding() failed: %v", err)
	}
	b, err := Embedding(e.Clone())
	if err != nil {
		t.Fatalf("Embedding() failed: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical fingerprints, got %s and %s", a, b)
	}
	if !Valid(a) {
		t.Fatalf("expected a valid %d char fingerprint, got %q", Length, a)
	}
}

func TestEmbedding_KnownVector(t *testing.T) {
	// sha256 over the little-endian float64 bytes of [1.0, 2.0]
	got, err := Embedding(identity.Embedding{1.0, 2.0})
	if err != nil {
		t.Fatalf("Embedding() failed: %v", err)
	}
	const want = "dc91ce9a50ddc828740aa26743716897fdb2bb64f1db662fe263a59be56145ae"
	if got != want {
		t.Fatalf("Embedding() = %s, want %s", got, want)
	}
}

func TestEmbedding_DistinctVectorsDiffer(t *testing.T) {
	base := make(identity.Embedding, 128)
	for i := range base {
		base[i] = float64(i) / 128
	}
	other := base.Clone()
	other[127] = math.Nextafter(other[127], 2)

	a, _ := Embedding(base)
	b, _ := Embedding(other)
	if a == b {
		t.Fatal("expected a one-ulp change to change the fingerprint")
	}
}

func TestEmbedding_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		e    identity.Embedding
	}{
		{"nil", nil},
		{"empty", identity.Embedding{}},
		{"nan", identity.Embedding{0.1, math.NaN()}},
		{"inf", identity.Embedding{math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Embedding(tt.e); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	// sha256("pw1")
	const want = "c592df4a86933b92addc9842402ddf198c638ea9be58916ee6e3734e1e3152f8"
	got := Password("pw1")
	if got != want {
		t.Fatalf("Password() = %s, want %s", got, want)
	}
	if got == Password("pw2") {
		t.Fatal("expected different passwords to differ")
	}
	if got != Password("pw1") {
		t.Fatal("expected password fingerprint to be deterministic")
	}
}

func TestValid(t *testing.T) {
	if Valid("abc") {
		t.Fatal("short string must be invalid")
	}
	if Valid(string(make([]byte, Length))) {
		t.Fatal("non-hex string must be invalid")
	}
}
