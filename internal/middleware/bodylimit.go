package middleware

import "net/http"

// BodyLimit caps request body size. Base64 image pairs are large, so the
// cap is generous; anything beyond it fails the JSON decode with a
// MaxBytesError and surfaces as a 400.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
