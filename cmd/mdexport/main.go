package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "mdexport",
		Short:         "Export chat messages as PDF or Word documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(exportCmd(), inspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
