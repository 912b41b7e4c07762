package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cblmemo/HeterogeneousLBSimulator/pkg/scenario"
	"github.com/cblmemo/HeterogeneousLBSimulator/pkg/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Runs the simulation described by a scenario file",
	Long: `Loads the given YAML scenario, runs the tick loop to its configured
maximum tick and writes the JSONL trace to the scenario's output path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}

		logger := log.Logger
		clients, balancer, replicas, opts, err := sc.Build(&logger)
		if err != nil {
			return err
		}

		simulator, err := sim.New(clients, balancer, replicas, opts, &logger)
		if err != nil {
			return err
		}
		return simulator.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
