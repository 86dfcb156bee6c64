// Command evtab inspects and converts the columnar files the directors
// produce: LZ4 snapshots (.evtb) and parquet files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vegasq/evtab/director"
	"github.com/vegasq/evtab/output"
	"github.com/vegasq/evtab/table"
)

func fatal(format string, args ...interface{}) {
	color.Red("Error: "+format, args...)
	os.Exit(1)
}

func openTable(path string) (*table.Table, error) {
	if strings.HasSuffix(path, ".evtb") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return director.ReadSnapshotAny(f)
	}
	return director.OpenParquet(path)
}

func newFormatter(format string) (output.Formatter, error) {
	switch format {
	case "jsonl":
		return output.NewJSONFormatter(os.Stdout), nil
	case "csv":
		return output.NewCSVFormatter(os.Stdout), nil
	case "table":
		return output.NewTextFormatter(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want jsonl, csv or table)", format)
	}
}

func newCatCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "cat <file>",
		Short: "Print a snapshot or parquet file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := openTable(args[0])
			if err != nil {
				fatal("%s", err)
			}
			f, err := newFormatter(format)
			if err != nil {
				fatal("%s", err)
			}
			if err := f.Format(t); err != nil {
				fatal("%s", err)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Output format: jsonl, csv, table")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>",
		Short: "Show a file's columns and types",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := openTable(args[0])
			if err != nil {
				fatal("%s", err)
			}
			s := t.Schema()
			for i := 0; i < s.NumColumns(); i++ {
				desc := s.Descriptor(i)
				fmt.Printf("%-24s %-10s %s\n", desc.Name, desc.Kind, desc.Type)
			}
			fmt.Printf("%d columns, %d rows\n", s.NumColumns(), t.Len())
		},
	}
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between snapshot (.evtb) and parquet files",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			in, out := args[0], args[1]
			t, err := openTable(in)
			if err != nil {
				fatal("%s", err)
			}
			switch {
			case strings.HasSuffix(out, ".evtb"):
				err = director.WriteSnapshotFile(out, t)
			case strings.HasSuffix(out, ".parquet"):
				kind := strings.TrimSuffix(filepath.Base(out), ".parquet")
				err = director.WriteParquet(out, kind, t)
			default:
				err = fmt.Errorf("unknown output extension for %q (want .evtb or .parquet)", out)
			}
			if err != nil {
				fatal("%s", err)
			}
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:   "evtab",
		Short: "Inspect and convert columnar event files",
	}
	root.AddCommand(newCatCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newConvertCmd())
	if err := root.Execute(); err != nil {
		fatal("%s", err)
	}
}
