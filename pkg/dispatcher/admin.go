package dispatcher

import (
	"encoding/json"
	"net/http"
)

// AdminServer exposes the selection policy's verdict-cache diagnostics the
// original implementation's a2a_admin.py offered as `cache-info`/`clear-cache`
// CLI actions: GET reports occupancy, DELETE purges both caches.
type AdminServer struct {
	Policy *Policy
}

func NewAdminServer(policy *Policy) *AdminServer {
	return &AdminServer{Policy: policy}
}

// Handlers returns the path -> handler map the host application mounts
// alongside transport.Server.Handlers() and RegistryServer.Handlers().
func (s *AdminServer) Handlers() map[string]http.Handler {
	return map[string]http.Handler{
		"/dispatcher/cache": http.HandlerFunc(s.handleCache),
	}
}

func (s *AdminServer) handleCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.Policy.CacheInfo())
	case http.MethodDelete:
		s.Policy.ClearCache()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
