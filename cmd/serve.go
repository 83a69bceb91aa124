package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/auth"
	"github.com/theapemachine/a2a-go/pkg/catalog"
	"github.com/theapemachine/a2a-go/pkg/dispatcher"
	"github.com/theapemachine/a2a-go/pkg/executor"
	"github.com/theapemachine/a2a-go/pkg/provider"
	"github.com/theapemachine/a2a-go/pkg/push"
	"github.com/theapemachine/a2a-go/pkg/stores"
	"github.com/theapemachine/a2a-go/pkg/tasks"
	"github.com/theapemachine/a2a-go/pkg/transport"
)

var (
	hostFlag      string
	portFlag      int
	agentTypeFlag string
	llmProviderFlag string
	modelNameFlag string
	catalogURLFlag string
	requireAuthFlag bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve an A2A agent",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&hostFlag, "host", "localhost", "address to bind to")
	serveCmd.Flags().IntVar(&portFlag, "port", 3210, "port to serve on")
	serveCmd.Flags().StringVar(&agentTypeFlag, "agent-type", "auto", "agent executor: auto (host dispatcher), echo, or llm")
	serveCmd.Flags().StringVar(&llmProviderFlag, "llm-provider", "", "LLM backend for --agent-type=llm or the dispatcher arbiter (anthropic|openai|ollama|cohere|deepseek|google)")
	serveCmd.Flags().StringVar(&modelNameFlag, "model-name", "", "model name passed to the selected LLM provider")
	serveCmd.Flags().StringVar(&catalogURLFlag, "catalog", "", "catalog URL the dispatcher's registry is seeded from (agent-type=auto only)")
	serveCmd.Flags().BoolVar(&requireAuthFlag, "require-auth", false, "require a bearer token on every request except the well-known discovery documents and /health")
}

// runServe builds an executor for --agent-type, wires it into a task
// manager and HTTP transport, and serves until interrupted. Exit code 1
// signals a configuration error, 2 a bind failure, per the CLI surface's
// contract.
func runServe() error {
	url := fmt.Sprintf("http://%s:%d", hostFlag, portFlag)

	exec, skills, policy, err := buildExecutor()
	if err != nil {
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}

	card := a2a.AgentCard{
		Name:    viper.GetString("agent.name"),
		URL:     url,
		Version: viper.GetString("agent.version"),
		Capabilities: a2a.AgentCapabilities{
			Streaming:              true,
			PushNotifications:      true,
			StateTransitionHistory: viper.GetBool("agent.capabilities.stateTransitionHistory"),
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills:             skills,
	}
	if card.Name == "" {
		card.Name = fmt.Sprintf("a2a-go (%s)", agentTypeFlag)
	}
	if card.Version == "" {
		card.Version = "0.1.0"
	}

	keys, err := push.NewKeySet()
	if err != nil {
		log.Error("configuration error: failed to generate push notification keys", "err", err)
		os.Exit(1)
	}

	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), exec, push.NewNotifier(keys))
	server := transport.NewServer(card, manager, keys)

	mux := http.NewServeMux()
	for path, handler := range server.Handlers() {
		mux.Handle(path, handler)
	}
	if policy != nil {
		for path, handler := range dispatcher.NewAdminServer(policy).Handlers() {
			mux.Handle(path, handler)
		}
	}

	var rootHandler http.Handler = mux
	if requireAuthFlag {
		rootHandler = auth.NewServiceFromConfig().Middleware(mux)
	}

	if catalogURLFlag != "" {
		if err := catalog.NewCatalogClient(catalogURLFlag).Register(&card); err != nil {
			log.Warn("failed to register with catalog", "catalog", catalogURLFlag, "err", err)
		}
	}

	srv := &http.Server{Addr: fmt.Sprintf("%s:%d", hostFlag, portFlag), Handler: rootHandler}

	errCh := make(chan error, 1)
	go func() {
		log.Info("a2a agent listening", "addr", srv.Addr, "agent_type", agentTypeFlag)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("failed to bind listener", "err", err)
		os.Exit(2)
	case <-stop:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}
	return nil
}

// buildExecutor constructs the executor.Interface named by --agent-type.
// "auto" is the host-agent dispatcher: it proxies to whatever registered
// agent its selection policy picks, seeded from --catalog. Anything else
// either matches a built-in executor name or is rejected as a
// configuration error.
func buildExecutor() (executor.Interface, []a2a.AgentSkill, *dispatcher.Policy, error) {
	switch agentTypeFlag {
	case "auto":
		registry := catalog.NewRegistry()
		if catalogURLFlag != "" {
			if agents, err := catalog.NewCatalogClient(catalogURLFlag).GetAgents(); err == nil {
				for _, a := range agents {
					registry.AddAgent(a)
				}
			} else {
				log.Warn("failed to seed dispatcher registry from catalog", "catalog", catalogURLFlag, "err", err)
			}
		}

		var arbiter *dispatcher.Arbiter
		if llmProviderFlag != "" {
			p, err := provider.New(provider.Name(llmProviderFlag))
			if err != nil {
				return nil, nil, nil, err
			}
			arbiter = dispatcher.NewArbiter(p, modelNameFlag)
		}

		policy := dispatcher.NewPolicy(arbiter, viper.GetDuration("dispatcher.cache.ttl"))
		return dispatcher.NewExecutor(registry, policy), nil, policy, nil

	case "llm":
		if llmProviderFlag == "" {
			return nil, nil, nil, fmt.Errorf("--agent-type=llm requires --llm-provider")
		}
		p, err := provider.New(provider.Name(llmProviderFlag))
		if err != nil {
			return nil, nil, nil, err
		}
		return executor.NewLLM(p, modelNameFlag), []a2a.AgentSkill{{ID: "chat", Name: "Chat"}}, nil, nil

	case "echo":
		return executor.Echo{}, []a2a.AgentSkill{{ID: "echo", Name: "Echo"}}, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown --agent-type %q (want auto, llm, or echo)", agentTypeFlag)
	}
}

var longServe = `
Serve a single A2A agent.

--agent-type selects what executes each task:
  auto  proxies every task to whichever registered agent the host
        dispatcher's selection policy picks (optionally seeded from
        --catalog, optionally arbitrated by --llm-provider)
  llm   answers every task with a single configured model backend
  echo  reflects the incoming message back (reference/conformance testing)

Examples:
  # Serve a host-agent dispatcher on port 8080, seeded from a catalog
  a2a-go serve --port 8080 --catalog http://localhost:3210

  # Serve a single Claude-backed agent
  a2a-go serve --agent-type llm --llm-provider anthropic --model-name claude-3-5-sonnet-latest
`
