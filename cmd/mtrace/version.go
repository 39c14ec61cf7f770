package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mtracecli/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version must work without a valid config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, contracts.Version)
				return
			}

			info := contracts.GetVersionInfo()
			fmt.Fprintln(out, contracts.GetFullVersionString())
			fmt.Fprintf(out, "  Data format: %s\n", info.DataFormat)
			fmt.Fprintf(out, "  API:         %s\n", info.APIVersion)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	return cmd
}
