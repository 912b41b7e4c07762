package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cblmemo/HeterogeneousLBSimulator/pkg/check"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Runs the code-quality pass over the Python files in the current directory",
	Long: `Formats with black, type checks with mypy, sorts imports with isort and
lints with pylint, in that order. Every step runs even when an earlier one
fails; the process exits with the lint step's status.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := check.NewRunner(".")
		code, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
