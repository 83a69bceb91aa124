package dispatcher

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/catalog"
)

// RegistryServer exposes the host agent's catalog.Registry over the three
// endpoints CatalogClient expects: POST /agent to register, GET
// /.well-known/catalog.json to list, GET /agent/{name} to resolve one.
type RegistryServer struct {
	Registry *catalog.Registry
}

func NewRegistryServer(registry *catalog.Registry) *RegistryServer {
	return &RegistryServer{Registry: registry}
}

// Handlers returns the path -> handler map the host application mounts
// alongside its own transport.Server.Handlers().
func (s *RegistryServer) Handlers() map[string]http.Handler {
	return map[string]http.Handler{
		"/agent":                    http.HandlerFunc(s.handleRegister),
		"/.well-known/catalog.json": http.HandlerFunc(s.handleList),
		"/agent/":                   http.HandlerFunc(s.handleGet),
	}
}

func (s *RegistryServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var card a2a.AgentCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.Registry.AddAgent(card)
	w.WriteHeader(http.StatusOK)
}

func (s *RegistryServer) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Registry.GetAgents()); err != nil {
		log.Error("failed to encode catalog", "err", err)
	}
}

func (s *RegistryServer) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/agent/")
	agent := s.Registry.GetAgent(name)
	if agent.Name == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(agent); err != nil {
		log.Error("failed to encode agent", "err", err)
	}
}
