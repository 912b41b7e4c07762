package cmd

import (
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/cblmemo/HeterogeneousLBSimulator/pkg/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <trace.jsonl[.xz]>",
	Short: "Summarizes a simulation trace",
	Long: `Replays the finished requests recorded in a trace and prints the
failure rate along with mean and tail latencies (in ticks).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := report.Read(args[0])
		if err != nil {
			return err
		}

		colorstring.Printf("[blue][bold]==>[reset] %s\n", args[0])
		colorstring.Printf("[green][bold]  ->[reset] Finished requests: %d\n", summary.Finished)
		colorstring.Printf("[green][bold]  ->[reset] Failure rate: %.2f\n", summary.FailureRate)
		colorstring.Printf("[green][bold]  ->[reset] Average latency: %.2f\n", summary.MeanLatency)
		colorstring.Printf("[green][bold]  ->[reset] 95th percentile latency: %d\n", summary.P95)
		colorstring.Printf("[green][bold]  ->[reset] 99th percentile latency: %d\n", summary.P99)
		colorstring.Printf("[green][bold]  ->[reset] 99.9th percentile latency: %d\n", summary.P999)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
