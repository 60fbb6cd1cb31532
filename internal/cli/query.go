package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tupledb/internal/ast"
	"tupledb/internal/exec"
	"tupledb/internal/lower"
)

var querySQL string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Lower and execute a single SQL statement passed with --sql",
	Args:  cobra.NoArgs,
	RunE:  queryRun,
}

func init() {
	queryCmd.Flags().StringVar(&querySQL, "sql", "", "the SQL `statement` to run")
}

func queryRun(cmd *cobra.Command, args []string) error {
	if querySQL == "" {
		return fmt.Errorf("tupledb: --sql is required")
	}
	s, e, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	return runStatement(e, querySQL, os.Stdout)
}

// runStatement lowers one SQL string and executes it, writing a tabular
// result for SELECT, the new record id for INSERT, a row count for DELETE
// and CREATE TABLE AS, and a one-line confirmation for CREATE TABLE. It is
// shared between the one-shot query command and the REPL.
func runStatement(e *exec.Executor, sql string, w io.Writer) error {
	stmt, err := lower.Lower(sql)
	if err != nil {
		return err
	}

	switch s := stmt.(type) {
	case *ast.CreateTable:
		if err := e.CreateTable(s); err != nil {
			return err
		}
		fmt.Fprintf(w, "created table %s\n", s.TableName)
	case *ast.Insert:
		id, err := e.Insert(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "inserted record %d\n", uint32(id))
	case *ast.Select:
		cols, rows, err := e.Select(s)
		if err != nil {
			return err
		}
		renderTableTo(w, cols, rows)
	case *ast.Delete:
		count, err := e.Delete(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted %d rows\n", count)
	case *ast.CTAS:
		count, err := e.CTAS(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "created table %s with %d rows\n", s.TableName, count)
	default:
		return fmt.Errorf("tupledb: unrecognized statement %T", stmt)
	}
	return nil
}
