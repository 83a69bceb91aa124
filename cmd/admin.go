package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	adminURLFlag string

	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Inspect and manage a running dispatcher's state",
		Long:  `Admin operations against a host-agent dispatcher (--agent-type=auto)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cacheInfoCmd = &cobra.Command{
		Use:   "cache-info",
		Short: "Report verdict-cache occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheInfo()
		},
	}

	clearCacheCmd = &cobra.Command{
		Use:   "clear-cache",
		Short: "Purge the dispatcher's verdict cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClearCache()
		},
	}
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(cacheInfoCmd)
	adminCmd.AddCommand(clearCacheCmd)

	adminCmd.PersistentFlags().StringVar(&adminURLFlag, "url", "http://localhost:3210", "base URL of the target dispatcher")
}

func runCacheInfo() error {
	resp, err := http.Get(adminURLFlag + "/dispatcher/cache")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dispatcher returned %s: %s", resp.Status, body)
	}

	var info struct {
		ScorerEntries  int `json:"ScorerEntries"`
		ArbiterEntries int `json:"ArbiterEntries"`
		TTL            int `json:"TTL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return err
	}

	fmt.Printf("scorer entries:  %d\n", info.ScorerEntries)
	fmt.Printf("arbiter entries: %d\n", info.ArbiterEntries)
	fmt.Printf("ttl (ns):        %d\n", info.TTL)
	return nil
}

func runClearCache() error {
	req, err := http.NewRequest(http.MethodDelete, adminURLFlag+"/dispatcher/cache", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dispatcher returned %s: %s", resp.Status, body)
	}

	fmt.Println("cache cleared")
	return nil
}
