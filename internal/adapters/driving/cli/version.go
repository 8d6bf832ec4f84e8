package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		if jsonOutput {
			_ = writeJSON(cmd, map[string]string{
				"version": version,
				"go":      runtime.Version(),
			})
			return
		}
		cmd.Printf("lecturelens version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
