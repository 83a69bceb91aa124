package cmd

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-go/pkg/catalog"
	"github.com/theapemachine/a2a-go/pkg/dispatcher"
)

var (
	catalogHostFlag string
	catalogPortFlag int

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Run the agent catalog",
		Long:  longCatalog,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog()
		},
	}
)

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(&catalogHostFlag, "host", "localhost", "address to bind to")
	catalogCmd.Flags().IntVar(&catalogPortFlag, "port", 3210, "port to serve on")
}

func runCatalog() error {
	registry := catalog.NewRegistry()
	server := dispatcher.NewRegistryServer(registry)

	mux := http.NewServeMux()
	for path, handler := range server.Handlers() {
		mux.Handle(path, handler)
	}

	addr := fmt.Sprintf("%s:%d", catalogHostFlag, catalogPortFlag)
	log.Info("catalog listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

var longCatalog = `
Serve the agent catalog: the registry remote agents POST their card to and
the host-agent dispatcher resolves registered agents from.

Examples:
  # Serve the agent catalog on port 3210
  a2a-go catalog
`
