package catalog

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"
	"github.com/theapemachine/a2a-go/pkg/a2a"
)

// CatalogClient connects to the host agent's catalog, so a remote agent can
// register its card and the dispatcher can resolve any registered agent by
// name.
type CatalogClient struct {
	baseURL string
	conn    *fiberClient.Client
}

type CatalogClientOption func(*CatalogClient)

func NewCatalogClient(baseURL string, opts ...CatalogClientOption) *CatalogClient {
	client := &CatalogClient{
		baseURL: baseURL,
		conn:    fiberClient.New().SetBaseURL(baseURL).SetTimeout(5 * time.Second),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (client *CatalogClient) Register(card *a2a.AgentCard) error {
	resp, err := client.conn.Post("/agent", fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   card,
	})
	if err != nil {
		log.Error("failed to register agent", "error", err)
		return &ConnectionError{Message: "registration failed", Err: err}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		log.Error("failed to register agent", "error", resp.Status())
		return &RegistrationError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	return nil
}

// GetAgents retrieves every registered agent card from the catalog.
func (client *CatalogClient) GetAgents() ([]a2a.AgentCard, error) {
	resp, err := client.conn.Get("/.well-known/catalog.json")
	if err != nil {
		return nil, &ConnectionError{Message: "failed to get agents", Err: err}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return nil, &ConnectionError{Message: fmt.Sprintf("catalog returned non-OK status: %d", resp.StatusCode())}
	}

	var agents []a2a.AgentCard
	if err = resp.JSON(&agents); err != nil {
		return nil, &DecodingError{Message: "failed to decode agents list", Err: err}
	}
	return agents, nil
}

// GetAgent retrieves a specific agent card by name from the catalog.
func (client *CatalogClient) GetAgent(id string) (*a2a.AgentCard, error) {
	resp, err := client.conn.Get(fmt.Sprintf("/agent/%s", url.PathEscape(id)))
	if err != nil {
		return nil, &ConnectionError{Message: "failed to get agent", Err: err}
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, &NotFoundError{AgentID: id}
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return nil, &ConnectionError{Message: fmt.Sprintf("catalog returned non-OK status: %d", resp.StatusCode())}
	}

	var agent a2a.AgentCard
	if err = resp.JSON(&agent); err != nil {
		return nil, &DecodingError{Message: "failed to decode agent", Err: err}
	}
	return &agent, nil
}
