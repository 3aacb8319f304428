// Package signature implements Twilio's request signing scheme: the full
// request URL with the sorted POST parameters appended is HMAC-SHA1 signed
// with the account auth token and base64 encoded.
//
// See https://www.twilio.com/docs/usage/security#validating-requests
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// Compute returns the expected X-Twilio-Signature value for a request to
// url carrying the given POST form parameters.
func Compute(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validator checks X-Twilio-Signature headers against one auth token.
type Validator struct {
	token string
}

// NewValidator creates a Validator bound to the account auth token.
func NewValidator(authToken string) *Validator {
	return &Validator{token: authToken}
}

// Validate reports whether got is the correct signature for url and params.
// The comparison is constant time.
func (v *Validator) Validate(url string, params map[string]string, got string) bool {
	want := Compute(v.token, url, params)
	return hmac.Equal([]byte(want), []byte(got))
}
