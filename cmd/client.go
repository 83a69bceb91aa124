package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/catalog"
	"github.com/theapemachine/a2a-go/pkg/client"
)

var (
	clientURLFlag     string
	clientCatalogFlag string
	clientTaskIDFlag  string

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "A2A client operations",
		Long:  `Run client operations against A2A agents`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	sendCmd = &cobra.Command{
		Use:   "send <message>",
		Short: "Send a single task to an agent and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(args[0])
		},
	}

	demoCmd = &cobra.Command{
		Use:   "demo <message>",
		Short: "Discover agents from a catalog and route a message to the first matching skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(args[0])
		},
	}
)

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(sendCmd)
	clientCmd.AddCommand(demoCmd)

	sendCmd.Flags().StringVar(&clientURLFlag, "url", "http://localhost:3210", "base URL of the target agent")
	sendCmd.Flags().StringVar(&clientTaskIDFlag, "task-id", "", "task id to use (generated if empty)")

	demoCmd.Flags().StringVar(&clientCatalogFlag, "catalog", "http://localhost:3210", "URL of the agent catalog")
}

func runSend(message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	card, err := client.FetchAgentCard(ctx, clientURLFlag)
	if err != nil {
		return fmt.Errorf("failed to fetch agent card from %s: %w", clientURLFlag, err)
	}

	agentClient := client.NewAgentClient(card)

	taskID := clientTaskIDFlag
	if taskID == "" {
		taskID = time.Now().UTC().Format("20060102T150405.000000000")
	}

	reply, err := agentClient.SendTaskText(ctx, taskID, message)
	if err != nil {
		return err
	}

	fmt.Println(reply)
	return nil
}

func runDemo(message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalogClient := catalog.NewCatalogClient(clientCatalogFlag)
	agents, err := catalogClient.GetAgents()
	if err != nil {
		return fmt.Errorf("failed to reach catalog at %s: %w", clientCatalogFlag, err)
	}
	if len(agents) == 0 {
		return fmt.Errorf("no agents registered in catalog at %s", clientCatalogFlag)
	}

	log.Info("discovered agents", "count", len(agents))
	for _, a := range agents {
		log.Info("catalog entry", "name", a.Name, "url", a.URL, "skills", skillNames(a))
	}

	target := selectBySkill(agents, message)
	log.Info("routing message", "agent", target.Name)

	agentClient := client.NewAgentClient(target)
	taskID := time.Now().UTC().Format("20060102T150405.000000000")
	reply, err := agentClient.SendTaskText(ctx, taskID, message)
	if err != nil {
		return err
	}

	fmt.Println(reply)
	return nil
}

// selectBySkill returns the first agent with a skill tag that appears as a
// substring of message, falling back to the first registered agent. Agent
// names are not matched.
func selectBySkill(agents []a2a.AgentCard, message string) a2a.AgentCard {
	for _, agent := range agents {
		for _, skill := range agent.Skills {
			for _, tag := range skill.Tags {
				if tag != "" && strings.Contains(strings.ToLower(message), strings.ToLower(tag)) {
					return agent
				}
			}
		}
	}
	return agents[0]
}

func skillNames(card a2a.AgentCard) []string {
	names := make([]string, 0, len(card.Skills))
	for _, skill := range card.Skills {
		names = append(names, skill.Name)
	}
	return names
}
