package chi

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware returns a permissive CORS middleware. The API fronts
// browser and GPT-action integrations, so any origin may call it; auth
// still gates the actual requests.
func CORSMiddleware() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler
}
