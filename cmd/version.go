package cmd

import (
	"javasegment/internal/version"

	"github.com/spf13/cobra"
)

// Version information set via ldflags by build systems that target the cmd
// package instead of internal/version.
//
//nolint:gochecknoglobals // Required by ldflags injection.
var (
	Version   string
	Commit    string
	BuildTime string
)

// newVersionCmd creates and returns the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the javasegment version, commit, build time and Go version.`,
		// Printing the version must not depend on a loadable configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}

func runVersion(cmd *cobra.Command, short bool) error {
	syncLegacyVersionVars()
	return version.GetVersion().Write(cmd.OutOrStdout(), short)
}

// syncLegacyVersionVars copies cmd-level ldflags values into the version package.
func syncLegacyVersionVars() {
	if Version != "" || Commit != "" || BuildTime != "" {
		version.SetBuildVars(Version, Commit, BuildTime)
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newVersionCmd())
}
