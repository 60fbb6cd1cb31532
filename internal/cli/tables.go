package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tupledb/internal/ast"
)

var createTableCmd = &cobra.Command{
	Use:   "create-table <name> <col:type>...",
	Short: "Create a table; each column is given as name:TYPE, e.g. id:INT or name:VARCHAR(32)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  createTableRun,
}

var dropTableCmd = &cobra.Command{
	Use:   "drop-table <name>",
	Short: "Drop a table and its data, schema, and index files",
	Args:  cobra.ExactArgs(1),
	RunE:  dropTableRun,
}

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List every table known to the store",
	Args:  cobra.NoArgs,
	RunE:  listTablesRun,
}

var vacuumCmd = &cobra.Command{
	Use:   "vacuum <table>",
	Short: "Compact a table, reclaiming space held by tombstoned records",
	Args:  cobra.ExactArgs(1),
	RunE:  vacuumRun,
}

func createTableRun(cmd *cobra.Command, args []string) error {
	s, e, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	cols := make([]ast.ColumnDef, 0, len(args)-1)
	for _, spec := range args[1:] {
		name, typeLabel, ok := strings.Cut(spec, ":")
		if !ok {
			return fmt.Errorf("tupledb: malformed column spec %q, want name:TYPE", spec)
		}
		cols = append(cols, ast.ColumnDef{Name: name, TypeLabel: typeLabel})
	}

	if err := e.CreateTable(&ast.CreateTable{TableName: args[0], Columns: cols}); err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	fmt.Printf("created table %s\n", args[0])
	return nil
}

func dropTableRun(cmd *cobra.Command, args []string) error {
	s, _, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DropTable(args[0]); err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	fmt.Printf("dropped table %s\n", args[0])
	return nil
}

func listTablesRun(cmd *cobra.Command, args []string) error {
	s, _, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	for _, name := range s.ListTables() {
		fmt.Println(name)
	}
	return nil
}

func vacuumRun(cmd *cobra.Command, args []string) error {
	s, _, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Vacuum(args[0]); err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	fmt.Printf("vacuumed table %s\n", args[0])
	return nil
}
