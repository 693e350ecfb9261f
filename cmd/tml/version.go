package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"tml/internal/version"
)

var versionAsJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionAsJSON, "json", false, "emit version info as JSON")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionAsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Tool      string `json:"tool"`
				Version   string `json:"version"`
				GitCommit string `json:"git_commit,omitempty"`
				BuildDate string `json:"build_date,omitempty"`
			}{
				Tool:      "tml",
				Version:   version.Version,
				GitCommit: version.GitCommit,
				BuildDate: version.BuildDate,
			})
		}
		cmd.Printf("tml %s\n", version.Pretty())
		if version.GitCommit != "" {
			cmd.Printf("commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			cmd.Printf("built:  %s\n", version.BuildDate)
		}
		return nil
	},
}
