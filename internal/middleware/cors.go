package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS lets the configured frontends call the API with credentials. A
// wildcard origin cannot be combined with credentials, so "*" turns them off.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowCredentials := true
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
		}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		MaxAge:           3600,
		AllowCredentials: allowCredentials,
	})

	return handler.Handler
}
