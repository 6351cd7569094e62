package cli

import (
	"github.com/spf13/cobra"

	"github.com/jzx17/gobulk/pkg/batch"
	"github.com/jzx17/gobulk/pkg/documents"
)

func newCreateCmd(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create documents",
		Long: `Create one document per item. Each item is an object with a "data"
object and optional "documentId" (default unique()) and "permissions".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocuments(cmd, flags, documents.ParseCreateItems,
				func(c *documents.Client) batch.Operation[documents.CreateItem, documents.Document] {
					return c.CreateDocument
				})
		},
	}
}

func newUpdateCmd(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update documents",
		Long:  `Update one document per item. Each item needs a "documentId" string and a "data" object.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocuments(cmd, flags, documents.ParseUpdateItems,
				func(c *documents.Client) batch.Operation[documents.UpdateItem, documents.Document] {
					return c.UpdateDocument
				})
		},
	}
}

func newDeleteCmd(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete documents",
		Long:  `Delete one document per item. Each item needs a "documentId" string.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocuments(cmd, flags, documents.ParseDeleteItems,
				func(c *documents.Client) batch.Operation[documents.DeleteItem, string] {
					return c.DeleteDocument
				})
		},
	}
}
