package seal

import (
	"bytes"
	"strings"
	"testing"
)

type payload struct {
	User      map[string]any `json:"user,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`
	Token     string         `json:"token,omitempty"`
}

func testSecret(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestSealUnsealRoundTrip(t *testing.T) {
	sealer, err := New(testSecret('a'))
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}

	in := payload{
		User:      map[string]any{"sub": "u-1"},
		CreatedAt: 1700000000,
		Token:     "opaque-token",
	}

	sealed, err := sealer.Seal("session", in)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if strings.Contains(sealed, "opaque-token") {
		t.Fatal("sealed value must not contain plaintext token")
	}

	var out payload
	if err := sealer.Unseal("session", sealed, &out); err != nil {
		t.Fatalf("unseal failed: %v", err)
	}
	if out.Token != in.Token || out.CreatedAt != in.CreatedAt {
		t.Fatalf("round trip mismatch: in %+v, out %+v", in, out)
	}
	if out.User["sub"] != "u-1" {
		t.Fatalf("user claims mismatch: %v", out.User)
	}
}

func TestUnsealRejectsTamperedValue(t *testing.T) {
	sealer, err := New(testSecret('a'))
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}

	sealed, err := sealer.Seal("session", payload{Token: "t"})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	// Flip one character somewhere in the middle of the value.
	mid := len(sealed) / 2
	flipped := byte('A')
	if sealed[mid] == flipped {
		flipped = 'B'
	}
	tampered := sealed[:mid] + string(flipped) + sealed[mid+1:]

	var out payload
	if err := sealer.Unseal("session", tampered, &out); err == nil {
		t.Fatal("expected unseal of tampered value to fail")
	}
}

func TestUnsealRejectsWrongSecret(t *testing.T) {
	writer, err := New(testSecret('a'))
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}
	reader, err := New(testSecret('b'))
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}

	sealed, err := writer.Seal("session", payload{Token: "t"})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	var out payload
	if err := reader.Unseal("session", sealed, &out); err == nil {
		t.Fatal("expected unseal under a different secret to fail")
	}
}

func TestUnsealRejectsNameMismatch(t *testing.T) {
	sealer, err := New(testSecret('a'))
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}

	sealed, err := sealer.Seal("session", payload{Token: "t"})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	var out payload
	if err := sealer.Unseal("other", sealed, &out); err == nil {
		t.Fatal("expected unseal under a different cookie name to fail")
	}
}

func TestRotatedSecretStillUnseals(t *testing.T) {
	old, err := New(testSecret('a'))
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}
	sealed, err := old.Seal("session", payload{Token: "t"})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	rotated, err := New(testSecret('b'), WithRotatedSecrets(testSecret('a')))
	if err != nil {
		t.Fatalf("new rotated sealer failed: %v", err)
	}

	var out payload
	if err := rotated.Unseal("session", sealed, &out); err != nil {
		t.Fatalf("expected rotated sealer to accept value sealed with old secret: %v", err)
	}
	if out.Token != "t" {
		t.Fatalf("round trip through rotation mismatch: %+v", out)
	}

	// New values must be sealed with the primary secret, unreadable by the
	// old sealer alone.
	resealed, err := rotated.Seal("session", payload{Token: "t2"})
	if err != nil {
		t.Fatalf("seal with rotated sealer failed: %v", err)
	}
	if err := old.Unseal("session", resealed, &out); err == nil {
		t.Fatal("expected old sealer to reject value sealed with new primary secret")
	}
}

func TestNewRejectsShortSecret(t *testing.T) {
	if _, err := New([]byte("short")); err != ErrSecretTooShort {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
	if _, err := New(testSecret('a'), WithRotatedSecrets([]byte("short"))); err != ErrSecretTooShort {
		t.Fatalf("expected ErrSecretTooShort for short rotated secret, got %v", err)
	}
}

func TestDerivedKeysDiffer(t *testing.T) {
	secret := testSecret('a')
	if deriveKey(secret, "integrity") == deriveKey(secret, "encryption") {
		t.Fatal("integrity and encryption keys must not be identical")
	}
}

func FuzzUnsealNeverPanics(f *testing.F) {
	sealer, err := New(testSecret('a'))
	if err != nil {
		f.Fatalf("new sealer failed: %v", err)
	}

	valid, err := sealer.Seal("session", payload{Token: "t"})
	if err != nil {
		f.Fatalf("seal failed: %v", err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("not-base64!!")
	f.Add(valid[:len(valid)/2])

	f.Fuzz(func(t *testing.T, value string) {
		var out payload
		_ = sealer.Unseal("session", value, &out)
	})
}
