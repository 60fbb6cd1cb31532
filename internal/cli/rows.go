package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tupledb/internal/ast"
	"tupledb/internal/exec"
	"tupledb/internal/schema"
	"tupledb/internal/store"
)

func columnNames(sch schema.Table) []string {
	names := make([]string, len(sch.Columns))
	for i, c := range sch.Columns {
		names[i] = c.Name
	}
	return names
}

var insertCmd = &cobra.Command{
	Use:   "insert <table> <value>...",
	Short: "Insert one row given positionally as one value per column",
	Args:  cobra.MinimumNArgs(1),
	RunE:  insertRun,
}

var getCmd = &cobra.Command{
	Use:   "get <table> <record-id>",
	Short: "Fetch a single record by its numeric record id",
	Args:  cobra.ExactArgs(2),
	RunE:  getRun,
}

var updateCmd = &cobra.Command{
	Use:   "update <table> <record-id> <value>...",
	Short: "Overwrite a record's values given positionally as one value per column",
	Args:  cobra.MinimumNArgs(2),
	RunE:  updateRun,
}

var findCmd = &cobra.Command{
	Use:   "find <table> <key>",
	Short: "Look up the hash index bucket for a column-0 key and print its matching rows",
	Args:  cobra.ExactArgs(2),
	RunE:  findRun,
}

var scanWhere string
var scanLimit int

var scanCmd = &cobra.Command{
	Use:   "scan <table>",
	Short: "Scan a table, optionally filtered and limited",
	Args:  cobra.ExactArgs(1),
	RunE:  scanRun,
}

func init() {
	scanCmd.Flags().StringVar(&scanWhere, "where", "", "`column op value`, e.g. \"age > 30\"")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "stop after this many matching rows")
}

func insertRun(cmd *cobra.Command, args []string) error {
	s, e, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := e.Insert(&ast.Insert{TableName: args[0], Values: args[1:]})
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	fmt.Printf("inserted record %d\n", uint32(id))
	return nil
}

func getRun(cmd *cobra.Command, args []string) error {
	s, _, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("tupledb: bad record id %q: %w", args[1], err)
	}
	id := store.RecordID(n)

	body, found, err := s.Get(args[0], id)
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	if !found {
		fmt.Println("not found")
		return nil
	}

	sch, err := s.TableSchema(args[0])
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	values, err := exec.Unpack(sch, body)
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	renderTable(columnNames(sch), [][]string{values})
	return nil
}

func updateRun(cmd *cobra.Command, args []string) error {
	s, _, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("tupledb: bad record id %q: %w", args[1], err)
	}
	id := store.RecordID(n)

	sch, err := s.TableSchema(args[0])
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	body := exec.Pack(sch, args[2:])

	found, err := s.Update(args[0], id, body)
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	if !found {
		fmt.Println("not found")
		return nil
	}
	fmt.Printf("updated record %d\n", uint32(id))
	return nil
}

func findRun(cmd *cobra.Command, args []string) error {
	s, _, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := s.Find(args[0], args[1])
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}

	sch, err := s.TableSchema(args[0])
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}

	var rows [][]string
	for _, id := range ids {
		body, found, err := s.Get(args[0], id)
		if err != nil {
			return fmt.Errorf("tupledb: %w", err)
		}
		if !found {
			continue
		}
		values, err := exec.Unpack(sch, body)
		if err != nil {
			return fmt.Errorf("tupledb: %w", err)
		}
		rows = append(rows, values)
	}
	renderTable(columnNames(sch), rows)
	return nil
}

func scanRun(cmd *cobra.Command, args []string) error {
	s, e, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	sel := &ast.Select{TableName: args[0], Limit: scanLimit}
	if scanWhere != "" {
		pred, err := parseWhere(scanWhere)
		if err != nil {
			return fmt.Errorf("tupledb: %w", err)
		}
		sel.Where = pred
	}

	cols, rows, err := e.Select(sel)
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	renderTable(cols, rows)
	return nil
}

// parseWhere reads "column op value" out of a single flag argument, e.g.
// "age > 30" or "name=ada".
func parseWhere(s string) (*ast.Predicate, error) {
	for _, op := range []ast.Op{ast.Ge, ast.Le, ast.Neq, ast.Eq, ast.Gt, ast.Lt} {
		if idx := strings.Index(s, string(op)); idx > 0 {
			return &ast.Predicate{
				Column: strings.TrimSpace(s[:idx]),
				Op:     op,
				Value:  strings.TrimSpace(s[idx+len(op):]),
			}, nil
		}
	}
	return nil, fmt.Errorf("malformed predicate %q", s)
}

func renderTable(cols []string, rows [][]string) {
	renderTableTo(os.Stdout, cols, rows)
}

func renderTableTo(w io.Writer, cols []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(cols)
	for _, row := range rows {
		tw.Append(row)
	}
	tw.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}
