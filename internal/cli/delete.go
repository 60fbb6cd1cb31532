package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tupledb/internal/ast"
)

var deleteWhere string

var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete rows matching --where, or every row if omitted",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteRun,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteWhere, "where", "", "`column op value`, e.g. \"age > 30\"")
	rootCmd.AddCommand(deleteCmd)
}

func deleteRun(cmd *cobra.Command, args []string) error {
	s, e, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	del := &ast.Delete{TableName: args[0]}
	if deleteWhere != "" {
		pred, err := parseWhere(deleteWhere)
		if err != nil {
			return fmt.Errorf("tupledb: %w", err)
		}
		del.Where = pred
	}

	count, err := e.Delete(del)
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	fmt.Printf("deleted %d rows\n", count)
	return nil
}
