package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <public-id> [public-id...]",
	Short: "Delete images",
	Long: `Delete one or more images by their full public ID, as shown by
"folio-cli images".

Examples:
  folio-cli delete elijah-gallery/summer-2024/beach
  folio-cli delete -q elijah-gallery/a elijah-gallery/b`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), args)
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
