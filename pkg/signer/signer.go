// Package signer canonicalizes call parameters and computes their HMAC-SHA256 signature.
//
// The canonical string sorts keys byte-wise and renders each pair as
// key=QueryEscape(value), joined by '&'. Upstream recomputes the signature over
// the same string, so any divergence here fails every signed call.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"slices"
	"strings"

	"signproxy/pkg/core"
)

// Canonicalize renders params as the canonical string that is signed.
func Canonicalize(params core.Params) (string, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, k := range keys {
		v, err := core.FormatValue(params[k])
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String(), nil
}

// Sign returns the lowercase hex HMAC-SHA256 of canonical keyed by secret.
func Sign(secret, canonical string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature matches canonical under secret in constant time.
func Verify(secret, canonical, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(canonical))
	return hmac.Equal(h.Sum(nil), want)
}
