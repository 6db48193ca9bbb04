package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDatabasesCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"db"},
		Short:   "Manage catalog databases",
	}
	cmd.AddCommand(newDatabasesListCmd(client))
	cmd.AddCommand(newDatabasesCreateCmd(client))
	return cmd
}

func newDatabasesListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := client.ListDatabases()
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"databases": names})
			}
			rows := make([][]string, len(names))
			for i, n := range names {
				rows[i] = []string{n}
			}
			printTable(cmd.OutOrStdout(), []string{"NAME"}, rows)
			return nil
		},
	}
}

func newDatabasesCreateCmd(client *Client) *cobra.Command {
	var comment, owner string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := client.CreateDatabase(args[0], comment, owner)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created database %s at %s\n", d.Name, d.Location)
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Database comment")
	cmd.Flags().StringVar(&owner, "owner", "", "Database owner")
	return cmd
}
