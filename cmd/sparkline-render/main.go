// Command sparkline-render draws chart definition files to PNG images.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"git.sr.ht/~whereswaldon/sparkline/chart"
	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "sparkline-render",
		Short: "Render sparkline charts to images",
		Long:  `Render the charts described by YAML or CSV definition files into PNG images.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewKindsCmd())
	return cmd
}

func NewKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported chart types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range chart.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}
