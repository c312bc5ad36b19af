// Command demo lists the account's agents and streams one run end to end.
//
// Configuration comes from the environment (or a .env file):
//
//	TRELLIS_API_KEY  (required)
//	TRELLIS_BASE_URL (optional)
//	TRELLIS_TIMEOUT  (optional, e.g. "90s")
package main

import (
	"context"
	"fmt"
	"os"

	trellis "github.com/trellis-ai/trellis-go"
	"github.com/trellis-ai/trellis-go/sse"
)

func main() {
	ctx := context.Background()

	c, err := trellis.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	agents, err := c.ListAgents(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list agents:", err)
		os.Exit(1)
	}
	if len(agents) == 0 {
		fmt.Println("No agents configured. Create one first.")
		return
	}

	fmt.Println("Agents:")
	for _, a := range agents {
		fmt.Printf("  %s  %s\n", a.ID, a.Name)
	}

	agent := agents[0]
	input := "Introduce yourself in one sentence."
	if len(os.Args) > 1 {
		input = os.Args[1]
	}

	fmt.Printf("\nStreaming run on %q...\n", agent.Name)
	run, err := c.StreamRun(ctx, agent.ID, trellis.RunRequest{Input: input},
		trellis.WithStreamHandler(func(m sse.Message) {
			fmt.Printf("  event=%s %s\n", m.Event, m.Data)
		}),
	)
	if err != nil {
		if trellis.IsTimeout(err) {
			fmt.Fprintln(os.Stderr, "run timed out; check its state with GetRun")
		}
		fmt.Fprintln(os.Stderr, "stream run:", err)
		os.Exit(1)
	}

	fmt.Printf("\nRun %s finished with status %s\n", run.ID, run.Status)
	if len(run.Output) > 0 {
		fmt.Println(string(run.Output))
	}
}
