package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newFibersCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fibers",
		Short: "Register fibers and data segments",
	}
	cmd.AddCommand(newFibersRegisterCmd(client))
	cmd.AddCommand(newFibersRangesCmd(client))
	cmd.AddCommand(newFibersAddRangeCmd(client))
	return cmd
}

func fiberValueArg(arg string) (int64, error) {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fiber value %q", arg)
	}
	return v, nil
}

func newFibersRegisterCmd(client *Client) *cobra.Command {
	var schema, table string
	cmd := &cobra.Command{
		Use:   "register VALUE",
		Short: "Register a fiber value for a partitioned table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := fiberValueArg(args[0])
			if err != nil {
				return err
			}
			f, err := client.RegisterFiber(schema, table, value)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), f)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered fiber %d for %s.%s (id %d)\n",
				f.Value, schema, table, f.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "default", "Database of the table")
	cmd.Flags().StringVar(&table, "table", "", "Table name")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func newFibersAddRangeCmd(client *Client) *cobra.Command {
	var schema, table, begin, end, path string
	cmd := &cobra.Command{
		Use:   "add-range VALUE",
		Short: "Register a data segment and its time window for a fiber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := fiberValueArg(args[0])
			if err != nil {
				return err
			}
			beginT, err := time.Parse(time.RFC3339, begin)
			if err != nil {
				return fmt.Errorf("invalid begin %q: want RFC3339", begin)
			}
			endT, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("invalid end %q: want RFC3339", end)
			}
			tr, err := client.RegisterFiberRange(schema, table, value, beginT, endT, path)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), tr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered segment %s (id %d)\n", tr.Path, tr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "default", "Database of the table")
	cmd.Flags().StringVar(&table, "table", "", "Table name")
	cmd.Flags().StringVar(&begin, "begin", "", "Window begin (RFC3339)")
	cmd.Flags().StringVar(&end, "end", "", "Window end (RFC3339)")
	cmd.Flags().StringVar(&path, "path", "", "Segment file path")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("begin")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newFibersRangesCmd(client *Client) *cobra.Command {
	var schema, table, begin, end string
	cmd := &cobra.Command{
		Use:   "ranges VALUE",
		Short: "List the data segments of a fiber overlapping a time window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := fiberValueArg(args[0])
			if err != nil {
				return err
			}
			ranges, err := client.ListFiberRanges(schema, table, value, begin, end)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"ranges": ranges})
			}
			rows := make([][]string, len(ranges))
			for i, tr := range ranges {
				rows[i] = []string{
					tr.Begin.Format(time.RFC3339),
					tr.End.Format(time.RFC3339),
					tr.Path,
				}
			}
			printTable(cmd.OutOrStdout(), []string{"BEGIN", "END", "PATH"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "default", "Database of the table")
	cmd.Flags().StringVar(&table, "table", "", "Table name")
	cmd.Flags().StringVar(&begin, "begin", "", "Window begin (RFC3339), unbounded if empty")
	cmd.Flags().StringVar(&end, "end", "", "Window end (RFC3339), unbounded if empty")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
