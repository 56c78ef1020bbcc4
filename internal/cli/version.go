package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set by the build.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sqljobctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sqljobctl %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
