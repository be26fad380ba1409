package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand attaches a `version` subcommand to root once.
func AttachCobraVersionCommand(root *cobra.Command) {
	for _, existing := range root.Commands() {
		if existing.Name() == "version" {
			return
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the packager version together with the commit hash and build timestamp injected through ldflags.",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	})
}
