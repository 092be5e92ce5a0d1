package main

import (
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server's media store status",
	Long: `Show which media store the server uses and whether it is configured.
Requires admin credentials.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var debugCmd = &cobra.Command{
	Use:   "debug <album-id>",
	Short: "Inspect an album, placeholders included",
	Long: `List every asset in an album folder, marking placeholder assets, to
diagnose albums that look empty or miscounted. Requires admin credentials.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebug,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	status, err := client.Status(cmd.Context())
	if err != nil {
		return err
	}

	return getFormatter().FormatStatus(os.Stdout, status)
}

func runDebug(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	debug, err := client.DebugAlbum(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatDebug(os.Stdout, debug)
}
