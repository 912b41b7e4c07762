package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cblmemo/HeterogeneousLBSimulator/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "lbsim",
	Short: "Simulator for load-balancing policies over heterogeneous replicas",
	Long: `lbsim simulates load-balancing policies over replicas with different
accelerators. Scenarios are described in YAML files; each run writes a JSONL
trace that the report command can summarize.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func getConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: out}
	writer.TimeFormat = "02.01.2006 15:04:05 MST"

	writer.FormatFieldValue = func(value interface{}) string {
		str, ok := value.(string)
		if ok && strings.Contains(str, "\\n") && strings.Contains(str, "\\t") {
			// unquote values that contain line breaks and tabs because they're most likely stack traces
			str, err := strconv.Unquote(str)
			if err == nil {
				return str
			}
		}
		return fmt.Sprintf("%s", value)
	}
	return writer
}

func setupLogging() error {
	cfg, loader := config.Loader()
	if err := loader.Load(); err != nil {
		return eris.Wrap(err, "failed to load configuration")
	}

	if cfg.Log.JSON {
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return eris.ToJSON(err, true)
		}
	} else {
		log.Logger = log.Output(getConsoleWriter(os.Stderr))
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return eris.ToString(err, true)
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	zerolog.SetGlobalLevel(cfg.LogLevel())
	if cfg.Log.File != "" {
		logFile, err := os.Create(cfg.Log.File)
		if err != nil {
			return eris.Wrap(err, "failed to open log file")
		}

		var out io.Writer = logFile
		if !cfg.Log.JSON {
			writer := getConsoleWriter(logFile)
			writer.NoColor = true
			out = writer
		}
		log.Logger = log.Output(out)
	}
	return nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
