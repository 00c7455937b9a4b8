package payfast

import (
	"crypto/md5"
	"crypto/subtle"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SignatureField is the field name excluded from canonicalization by default.
const SignatureField = "signature"

// CanonicalOpts controls field selection during canonicalization.
//
// The gateway contract is asymmetric: outbound creation requests are signed
// with empty optional fields dropped (IncludeEmpty=false), but inbound
// webhook and query callbacks must be verified over exactly the fields the
// gateway sent, empties included (IncludeEmpty=true). Conflating the two is
// the classic integration bug.
type CanonicalOpts struct {
	IncludeEmpty bool
	ExcludeKeys  []string // defaults to just the signature field
}

// Canonicalize produces the exact wire string the keyed digest is computed
// over: excluded keys dropped, keys sorted in byte order, values
// percent-encoded with space as '+', joined as key=value pairs with '&'.
func Canonicalize(fields map[string]string, opts CanonicalOpts) string {
	excluded := map[string]bool{SignatureField: true}
	if opts.ExcludeKeys != nil {
		excluded = make(map[string]bool, len(opts.ExcludeKeys))
		for _, k := range opts.ExcludeKeys {
			excluded[k] = true
		}
	}

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if excluded[k] {
			continue
		}
		if !opts.IncludeEmpty && v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fields[k]))
	}
	return b.String()
}

// Sign computes the lowercase-hex MD5 signature over the canonical string.
// A non-empty passphrase is appended raw, without percent-encoding.
func Sign(fields map[string]string, passphrase string, opts CanonicalOpts) string {
	payload := Canonicalize(fields, opts)
	if passphrase != "" {
		payload += "&passphrase=" + passphrase
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(payload)))
}

// Verify recomputes the signature and compares it in constant time.
// A mismatch is a hard rejection, never a retry.
func Verify(fields map[string]string, passphrase, received string, opts CanonicalOpts) bool {
	expected := Sign(fields, passphrase, opts)
	if len(received) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(received)), []byte(expected)) == 1
}
