package types

import (
	"os"
	"strings"
)

const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"
	RequestIDHeader     = "X-Request-ID"
	TokenCookieName     = "token"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	return ParseOrigins(os.Getenv("CLIENT_URL"), os.Getenv("ALLOWED_ORIGINS"))
}

// ParseOrigins merges the development defaults, the client URL and a comma-separated list.
func ParseOrigins(clientURL, allowed string) []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL = strings.TrimSpace(clientURL); clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(allowed, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}

func OriginAllowed(origin string) bool {
	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
