package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTablesCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage catalog tables",
	}
	cmd.AddCommand(newTablesListCmd(client))
	cmd.AddCommand(newTablesCreateCmd(client))
	cmd.AddCommand(newTablesDescribeCmd(client))
	cmd.AddCommand(newTablesLayoutCmd(client))
	return cmd
}

func newTablesListCmd(client *Client) *cobra.Command {
	var schema, table string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tables, optionally filtered by exact schema and table name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := client.ListTables(schema, table)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"tables": tables})
			}
			rows := make([][]string, len(tables))
			for i, t := range tables {
				rows[i] = []string{t.Schema, t.Table}
			}
			printTable(cmd.OutOrStdout(), []string{"SCHEMA", "TABLE"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "Exact schema name filter")
	cmd.Flags().StringVar(&table, "table", "", "Exact table name filter")
	return cmd
}

// parseColumnSpec splits a "name:type" column argument.
func parseColumnSpec(spec string) (ColumnDef, error) {
	name, typ, ok := strings.Cut(spec, ":")
	if !ok || name == "" || typ == "" {
		return ColumnDef{}, fmt.Errorf("invalid column spec %q: want name:type", spec)
	}
	return ColumnDef{Name: name, Type: typ}, nil
}

func newTablesCreateCmd(client *Client) *cobra.Command {
	var (
		schema   string
		columns  []string
		format   string
		fiberKey string
		function string
		timeKey  string
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a table",
		Long: `Create a table in a database. Columns are given as name:type pairs,
for example --column customer:bigint --column ts:timestamp.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := CreateTableRequest{
				Name:     args[0],
				Format:   format,
				FiberKey: fiberKey,
				Function: function,
				TimeKey:  timeKey,
			}
			for _, spec := range columns {
				col, err := parseColumnSpec(spec)
				if err != nil {
					return err
				}
				req.Columns = append(req.Columns, col)
			}
			t, err := client.CreateTable(schema, req)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created table %s.%s at %s\n", t.Schema, t.Name, t.Location)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "default", "Database to create the table in")
	cmd.Flags().StringArrayVar(&columns, "column", nil, "Column as name:type (repeatable)")
	cmd.Flags().StringVar(&format, "format", "", "Storage format (parquet, orc, csv)")
	cmd.Flags().StringVar(&fiberKey, "fiber-key", "", "Partition key column")
	cmd.Flags().StringVar(&function, "fiber-function", "", "Partition function name")
	cmd.Flags().StringVar(&timeKey, "time-key", "", "Time key column")
	return cmd
}

func newTablesDescribeCmd(client *Client) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "describe TABLE",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := client.ListColumns(schema, args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"columns": cols})
			}
			rows := make([][]string, len(cols))
			for i, c := range cols {
				rows[i] = []string{c.Name, c.Type, c.Role}
			}
			printTable(cmd.OutOrStdout(), []string{"COLUMN", "TYPE", "ROLE"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "default", "Database of the table")
	return cmd
}

func newTablesLayoutCmd(client *Client) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "layout TABLE",
		Short: "Show the partitioning layout of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := client.GetTableLayout(schema, args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), layout)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Table:    %s.%s\n", layout.Handle.Schema, layout.Handle.Table)
			fmt.Fprintf(out, "Location: %s\n", layout.Handle.Location)
			fmt.Fprintf(out, "Format:   %s\n", layout.Format)
			if layout.FiberColumn == nil {
				fmt.Fprintln(out, "Partitioning: none")
				return nil
			}
			fmt.Fprintf(out, "Fiber key: %s (%s)\n", layout.FiberColumn.Name, layout.FiberColumn.Type)
			fmt.Fprintf(out, "Function:  %s\n", layout.Function)
			if layout.TimeColumn != nil {
				fmt.Fprintf(out, "Time key:  %s (%s)\n", layout.TimeColumn.Name, layout.TimeColumn.Type)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "default", "Database of the table")
	return cmd
}

func newFunctionsCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List registered partition functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := client.ListFunctions()
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"functions": names})
			}
			rows := make([][]string, len(names))
			for i, n := range names {
				rows[i] = []string{n}
			}
			printTable(cmd.OutOrStdout(), []string{"FUNCTION"}, rows)
			return nil
		},
	}
}
