package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

var (
	simPage     int
	simPageSize int

	simName        string
	simAgentID     int
	simCalls       int
	simConcurrency int
	simDuration    int
	simFile        string

	simUpdateFile string
	simUpdateData string
	simForce      bool
)

var simulationsCmd = &cobra.Command{
	Use:     "simulations",
	Aliases: []string{"sim", "simulation"},
	Short:   "Run scripted test calls against an agent",
}

var simulationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List simulations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Simulation.List(cmd.Context(), simPage, simPageSize)
		if err != nil {
			return err
		}
		return render(cmd, resp, views.SimulationColumns(), views.SimulationListKeys...)
	},
}

var simulationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a simulation",
	Long: `Create a simulation from flags or a JSON/YAML file. Scenarios can only
be given in the file; flags override the file's top-level values.`,
	Example: `  omnidim simulations create --name "Booking flow" --agent-id 42
  omnidim simulations create --file simulation.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req omnidim.CreateSimulationRequest
		if simFile != "" {
			if err := payload.LoadInto(simFile, &req); err != nil {
				return err
			}
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			req.Name = simName
		}
		if flags.Changed("agent-id") {
			req.AgentID = simAgentID
		}
		if flags.Changed("calls") {
			req.NumberOfCallToMake = simCalls
		}
		if flags.Changed("concurrency") {
			req.ConcurrentCallCount = simConcurrency
		}
		if flags.Changed("duration") {
			req.MaxCallDurationInMinutes = simDuration
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Simulation.Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		return reportCreated(cmd, "Simulation", resp)
	},
}

var simulationsUpdateCmd = &cobra.Command{
	Use:   "update <simulation-id>",
	Short: "Update a simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "simulation ID")
		if err != nil {
			return err
		}
		data, err := payload.FromFileOrInline(simUpdateFile, simUpdateData)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Simulation.Update(cmd.Context(), id, data)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Simulation %d updated", id)
	},
}

var simulationsDeleteCmd = &cobra.Command{
	Use:   "delete <simulation-id>",
	Short: "Delete a simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "simulation ID")
		if err != nil {
			return err
		}
		if ok, err := confirm(cmd, fmt.Sprintf("Delete simulation %d", id), simForce); err != nil || !ok {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Simulation.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Simulation %d deleted", id)
	},
}

// simulationCmd builds a subcommand that runs op on one simulation ID. An
// empty message shows the response body instead of a success line.
func simulationCmd(use, short string, op func(*omnidim.SimulationService, context.Context, int) (*omnidim.Response, error), message string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <simulation-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args, 0, "simulation ID")
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := op(client.Simulation, cmd.Context(), id)
			if err != nil {
				return err
			}
			if message == "" {
				return render(cmd, resp, nil)
			}
			return done(cmd, resp, message, id)
		},
	}
}

func init() {
	simulationsListCmd.Flags().IntVar(&simPage, "page", 1, "page number")
	simulationsListCmd.Flags().IntVar(&simPageSize, "page-size", 10, "simulations per page")

	f := simulationsCreateCmd.Flags()
	f.StringVar(&simName, "name", "", "simulation name")
	f.IntVar(&simAgentID, "agent-id", 0, "agent to test")
	f.IntVar(&simCalls, "calls", 1, "number of calls to make")
	f.IntVar(&simConcurrency, "concurrency", 3, "calls running at once")
	f.IntVar(&simDuration, "duration", 3, "maximum call duration in minutes")
	f.StringVarP(&simFile, "file", "f", "", "JSON or YAML file with the simulation and its scenarios")

	simulationsUpdateCmd.Flags().StringVar(&simUpdateFile, "file", "", "JSON or YAML file with the fields to update")
	simulationsUpdateCmd.Flags().StringVar(&simUpdateData, "data", "", "inline JSON object with the fields to update")

	simulationsDeleteCmd.Flags().BoolVar(&simForce, "force", false, "delete without confirmation")

	simulationsCmd.AddCommand(
		simulationsListCmd,
		simulationCmd("get", "Show a simulation with its scenarios and results", (*omnidim.SimulationService).Get, ""),
		simulationsCreateCmd,
		simulationsUpdateCmd,
		simulationsDeleteCmd,
		simulationCmd("start", "Start placing the simulation's calls", (*omnidim.SimulationService).Start, "Simulation %d started"),
		simulationCmd("stop", "Stop a running simulation", (*omnidim.SimulationService).Stop, "Simulation %d stopped"),
		simulationCmd("enhance-prompt", "Suggest prompt improvements from the results", (*omnidim.SimulationService).EnhancePrompt, ""),
	)
	rootCmd.AddCommand(simulationsCmd)
}
