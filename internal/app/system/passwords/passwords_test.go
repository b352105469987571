package passwords_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/pipapal/internal/app/system/passwords"
)

func TestHash_VerifyRoundTrip(t *testing.T) {
	h, err := passwords.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.Contains(h, ".") {
		t.Fatalf("expected key.salt format, got %q", h)
	}

	ok, err := passwords.Verify("s3cret!", h)
	if err != nil || !ok {
		t.Errorf("Verify correct password: ok=%v err=%v", ok, err)
	}
	ok, err = passwords.Verify("wrong", h)
	if err != nil || ok {
		t.Errorf("Verify wrong password: ok=%v err=%v", ok, err)
	}
}

func TestHash_SaltsDiffer(t *testing.T) {
	a, _ := passwords.Hash("same")
	b, _ := passwords.Hash("same")
	if a == b {
		t.Error("expected different hashes for the same password")
	}
}

func TestVerify_Malformed(t *testing.T) {
	tests := []string{"", "nodot", "zz.00", "00.", ".00"}
	for _, stored := range tests {
		t.Run(stored, func(t *testing.T) {
			ok, err := passwords.Verify("pw", stored)
			if ok {
				t.Error("malformed hash must not verify")
			}
			if !errors.Is(err, passwords.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestRandom_ProducesVerifiableFormat(t *testing.T) {
	h, err := passwords.Random()
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if _, err := passwords.Verify("anything", h); err != nil {
		t.Errorf("random hash should parse: %v", err)
	}
}
