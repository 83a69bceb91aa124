package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/client"
)

var (
	testURLFlag string

	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Run a protocol conformance smoke test against a running agent",
		Long:  longTest,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConformanceTests()
		},
	}
)

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().StringVar(&testURLFlag, "url", "http://localhost:3210", "base URL of the agent under test")
}

type conformanceCheck struct {
	name string
	run  func(ctx context.Context, agentClient *client.AgentClient) error
}

var conformanceChecks = []conformanceCheck{
	{"tasks/send completes a task", checkSendCompletes},
	{"tasks/get returns a previously sent task", checkGetRoundTrips},
	{"tasks/sendSubscribe streams a final status event", checkStreamReachesFinal},
	{"tasks/cancel rejects an already-terminal task", checkCancelRejectsTerminal},
}

func runConformanceTests() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	card, err := client.FetchAgentCard(ctx, testURLFlag)
	if err != nil {
		return fmt.Errorf("failed to fetch agent card from %s: %w", testURLFlag, err)
	}
	agentClient := client.NewAgentClient(card)

	fmt.Printf("testing %s at %s\n", card.Name, testURLFlag)

	for _, check := range conformanceChecks {
		start := time.Now()
		if err := check.run(ctx, agentClient); err != nil {
			fmt.Printf("FAIL  %-55s (%v): %v\n", check.name, time.Since(start), err)
			return fmt.Errorf("conformance check %q failed: %w", check.name, err)
		}
		fmt.Printf("PASS  %-55s (%v)\n", check.name, time.Since(start))
	}

	fmt.Println("all conformance checks passed")
	return nil
}

func checkSendCompletes(ctx context.Context, agentClient *client.AgentClient) error {
	taskID := newTestTaskID("send")
	task, err := agentClient.SendTask(ctx, a2a.TaskSendParams{
		ID:      taskID,
		Message: a2a.NewTextMessage("user", "conformance check: basic send"),
	})
	if err != nil {
		return err
	}
	if !task.Status.State.Terminal() {
		return fmt.Errorf("expected a terminal state after tasks/send, got %q", task.Status.State)
	}
	return nil
}

func checkGetRoundTrips(ctx context.Context, agentClient *client.AgentClient) error {
	taskID := newTestTaskID("get")
	if _, err := agentClient.SendTask(ctx, a2a.TaskSendParams{
		ID:      taskID,
		Message: a2a.NewTextMessage("user", "conformance check: round trip"),
	}); err != nil {
		return err
	}

	task, err := agentClient.GetTask(ctx, a2a.TaskQueryParams{ID: taskID})
	if err != nil {
		return err
	}
	if task.ID != taskID {
		return fmt.Errorf("expected task id %q, got %q", taskID, task.ID)
	}
	return nil
}

func checkStreamReachesFinal(ctx context.Context, agentClient *client.AgentClient) error {
	taskID := newTestTaskID("stream")

	var sawFinal bool
	err := agentClient.StreamTask(ctx, a2a.TaskSendParams{
		ID:      taskID,
		Message: a2a.NewTextMessage("user", "conformance check: streaming"),
	}, func(evt any) {
		if status, ok := evt.(a2a.TaskStatusUpdateEvent); ok && status.Final {
			sawFinal = true
		}
	})
	if err != nil {
		return err
	}
	if !sawFinal {
		return fmt.Errorf("stream closed without a final status event")
	}
	return nil
}

func checkCancelRejectsTerminal(ctx context.Context, agentClient *client.AgentClient) error {
	taskID := newTestTaskID("cancel")
	if _, err := agentClient.SendTask(ctx, a2a.TaskSendParams{
		ID:      taskID,
		Message: a2a.NewTextMessage("user", "conformance check: cancel-after-terminal"),
	}); err != nil {
		return err
	}

	if _, err := agentClient.CancelTask(ctx, taskID); err == nil {
		return fmt.Errorf("expected tasks/cancel to fail for an already-terminal task, got nil error")
	} else if !strings.Contains(err.Error(), "cancel") {
		return fmt.Errorf("expected a task-not-cancelable error, got: %w", err)
	}
	return nil
}

func newTestTaskID(check string) string {
	return fmt.Sprintf("conformance-%s-%d", check, time.Now().UnixNano())
}

var longTest = `
Run a protocol conformance smoke test against a running agent: send,
get, stream, and cancel each exercised once against the testable
properties spec.md requires of every conformant implementation.

Examples:
  a2a-go test --url http://localhost:3210
`
