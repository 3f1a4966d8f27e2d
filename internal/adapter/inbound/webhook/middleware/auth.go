package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/jonny/stayhub/pkg/apierror"
)

// BearerAuth returns middleware that validates a Bearer token in the
// Authorization header.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierror.Write(w, apierror.Unauthorized("missing authorization header"))
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				apierror.Write(w, apierror.Unauthorized("invalid authorization header format"))
				return
			}

			if !hmac.Equal([]byte(strings.TrimSpace(token)), []byte(secret)) {
				apierror.Write(w, apierror.Unauthorized("invalid bearer token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SignatureHeader carries the hex HMAC-SHA256 of the request body, optionally
// prefixed with "sha256=".
const SignatureHeader = "X-Signature"

// HMACAuth returns middleware that validates an HMAC-SHA256 body signature.
// It must run inside BodyReader.
func HMACAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sigHeader := r.Header.Get(SignatureHeader)
			if sigHeader == "" {
				apierror.Write(w, apierror.Unauthorized("missing signature header"))
				return
			}

			providedSig, err := hex.DecodeString(strings.TrimPrefix(sigHeader, "sha256="))
			if err != nil {
				apierror.Write(w, apierror.Unauthorized("invalid signature encoding"))
				return
			}

			body, ok := RawBody(r.Context())
			if !ok {
				apierror.Write(w, apierror.Internal("request body not available for signature verification"))
				return
			}

			if !hmac.Equal(Sign(secret, body), providedSig) {
				apierror.Write(w, apierror.Unauthorized("invalid HMAC signature"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
