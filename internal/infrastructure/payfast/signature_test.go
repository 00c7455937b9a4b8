package payfast

import (
	"strings"
	"testing"
)

func TestCanonicalizeSortsKeysInByteOrder(t *testing.T) {
	fields := map[string]string{
		"merchant_id":  "10000100",
		"amount":       "100.00",
		"m_payment_id": "abc",
		"Zeta":         "z",
	}

	got := Canonicalize(fields, CanonicalOpts{})
	want := "Zeta=z&amount=100.00&m_payment_id=abc&merchant_id=10000100"
	if got != want {
		t.Errorf("canonical string mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestCanonicalizeEncodesSpacesAsPlus(t *testing.T) {
	fields := map[string]string{"item_name": "Wallet top-up now"}

	got := Canonicalize(fields, CanonicalOpts{})
	want := "item_name=Wallet+top-up+now"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCanonicalizeExcludesSignatureByDefault(t *testing.T) {
	fields := map[string]string{
		"amount":    "50.00",
		"signature": "deadbeef",
	}

	got := Canonicalize(fields, CanonicalOpts{})
	if strings.Contains(got, "signature") {
		t.Errorf("signature field leaked into canonical string: %s", got)
	}
}

func TestCanonicalizeIncludeEmpty(t *testing.T) {
	fields := map[string]string{
		"amount":           "50.00",
		"item_description": "",
	}

	dropped := Canonicalize(fields, CanonicalOpts{IncludeEmpty: false})
	if strings.Contains(dropped, "item_description") {
		t.Errorf("empty field should be dropped when IncludeEmpty=false: %s", dropped)
	}

	kept := Canonicalize(fields, CanonicalOpts{IncludeEmpty: true})
	if !strings.Contains(kept, "item_description=") {
		t.Errorf("empty field should be kept when IncludeEmpty=true: %s", kept)
	}
	if dropped == kept {
		t.Error("IncludeEmpty must change the canonical string when empty fields exist")
	}
}

func TestSignRoundTrip(t *testing.T) {
	fields := map[string]string{
		"merchant_id":  "10000100",
		"merchant_key": "46f0cd694581a",
		"m_payment_id": "01HV5K2M3N4P5Q6R7S8T9V0W1X",
		"amount":       "250.00",
		"item_name":    "Wallet top-up",
	}

	sig := Sign(fields, "secret phrase", CanonicalOpts{})
	if len(sig) != 32 {
		t.Fatalf("expected 32-char hex digest, got %d chars: %s", len(sig), sig)
	}
	if sig != strings.ToLower(sig) {
		t.Errorf("signature must be lowercase hex: %s", sig)
	}

	fields[SignatureField] = sig
	if !Verify(fields, "secret phrase", sig, CanonicalOpts{}) {
		t.Error("verification of a freshly signed field set failed")
	}
}

func TestSignIsOrderIndependent(t *testing.T) {
	// Map iteration order is randomized; build the same logical set twice
	// with different insertion orders.
	a := map[string]string{}
	a["amount"] = "10.00"
	a["merchant_id"] = "123"
	a["item_name"] = "thing"

	b := map[string]string{}
	b["item_name"] = "thing"
	b["amount"] = "10.00"
	b["merchant_id"] = "123"

	if Sign(a, "pp", CanonicalOpts{}) != Sign(b, "pp", CanonicalOpts{}) {
		t.Error("signature must not depend on field insertion order")
	}
}

func TestSignPassphraseChangesSignature(t *testing.T) {
	fields := map[string]string{"amount": "10.00"}

	if Sign(fields, "", CanonicalOpts{}) == Sign(fields, "pp", CanonicalOpts{}) {
		t.Error("passphrase must affect the signature")
	}
	if Sign(fields, "pp1", CanonicalOpts{}) == Sign(fields, "pp2", CanonicalOpts{}) {
		t.Error("different passphrases must produce different signatures")
	}
}

func TestVerifyRejectsTamperedFields(t *testing.T) {
	fields := map[string]string{
		"m_payment_id": "pay-1",
		"amount":       "100.00",
	}
	sig := Sign(fields, "pp", CanonicalOpts{IncludeEmpty: true})

	fields["amount"] = "999.00"
	if Verify(fields, "pp", sig, CanonicalOpts{IncludeEmpty: true}) {
		t.Error("tampered amount must fail verification")
	}
}

func TestVerifyRejectsWrongLength(t *testing.T) {
	fields := map[string]string{"amount": "1.00"}
	if Verify(fields, "pp", "abc", CanonicalOpts{}) {
		t.Error("truncated signature must fail verification")
	}
}

func TestVerifyAcceptsUppercaseHex(t *testing.T) {
	fields := map[string]string{"amount": "1.00"}
	sig := Sign(fields, "pp", CanonicalOpts{})

	if !Verify(fields, "pp", strings.ToUpper(sig), CanonicalOpts{}) {
		t.Error("uppercase hex signature should verify")
	}
}
