package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
)

// APIKeyHeader carries the shared service key on mutating requests.
const APIKeyHeader = "api_key"

// APIKeyGuard rejects requests whose api_key header does not match the
// configured key. An empty key disables the check.
func APIKeyGuard(key string) func(next http.Handler) http.Handler {
	if key == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	want := sha256.Sum256([]byte(key))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := sha256.Sum256([]byte(r.Header.Get(APIKeyHeader)))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
