// Package cmd wires the Cobra CLI for the leadgen service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadgen",
		Short: "Lead-generation outreach pipeline.",
		Long: `leadgen discovers businesses for a niche across target cities, crawls
their websites for contact emails, and sends templated outreach while
streaming live progress to a dashboard.`,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
