package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/release"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version of the omnidim CLI, optionally checking GitHub for a newer release",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "omnidim version %s\n", version)
		fmt.Fprintf(out, "SDK %s, %s %s/%s\n", omnidim.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "https://github.com/%s\n", release.Repo)
		if !versionCheck {
			return nil
		}

		checker := &release.Checker{UserAgent: "omnidim-cli/" + version}
		latest, err := checker.LatestTag(cmd.Context(), release.Repo)
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}
		switch {
		case !release.Valid(version):
			output.Warning(out, "Development build; latest release is %s", latest)
		case release.Compare(version, latest) < 0:
			output.Warning(out, "A newer omnidim CLI is available (%s -> %s). Update with:", version, latest)
			fmt.Fprintf(out, "  go install github.com/%s/cmd/omnidim@latest\n", release.Repo)
		default:
			output.Success(out, "Up to date: %s", version)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
