package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/jonny/stayhub/pkg/apierror"
)

const maxBodyBytes = 1 << 20

type rawBodyKey struct{}

// BodyReader buffers the request body so it can be read more than once, for
// signature checks and then decoding. The bytes are also stored in the
// request context.
func BodyReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			apierror.Write(w, apierror.BadRequest("failed to read request body"))
			return
		}
		_ = r.Body.Close()

		r.Body = io.NopCloser(bytes.NewReader(body))
		ctx := context.WithValue(r.Context(), rawBodyKey{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RawBody returns the body buffered by BodyReader.
func RawBody(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(rawBodyKey{}).([]byte)
	return body, ok
}
