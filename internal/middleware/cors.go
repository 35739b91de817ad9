package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
)

var ErrWildcardOrigin = errors.New("wildcard CORS origin is not allowed")

// CORS only admits the listed origins. An empty list or any wildcard entry is
// rejected: these endpoints start real payments.
func CORS(origins []string) (func(next http.Handler) http.Handler, error) {
	if len(origins) == 0 {
		return nil, fmt.Errorf("at least one allowed origin is required")
	}
	for _, o := range origins {
		if strings.Contains(o, "*") {
			return nil, fmt.Errorf("%w: %q", ErrWildcardOrigin, o)
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         int((12 * time.Hour).Seconds()),
	}), nil
}
