package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"tupledb/internal/exec"
)

const historyFile = ".tupledb_history"

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run an interactive console session, one SQL statement per line",
	Args:  cobra.NoArgs,
	RunE:  replRun,
}

func replRun(cmd *cobra.Command, args []string) error {
	s, e, err := openExecutor()
	if err != nil {
		return err
	}
	defer s.Close()

	line := liner.NewLiner()
	defer line.Close()

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	runRepl(e, line, os.Stdout)

	if f, err := os.Create(historyFile); err != nil {
		fmt.Fprintf(os.Stderr, "tupledb: error writing history file, %s: %s\n", historyFile, err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
	return nil
}

func runRepl(e *exec.Executor, line *liner.State, w io.Writer) {
	for {
		input, err := line.Prompt("tupledb> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			return
		}
		if err != nil {
			fmt.Fprintln(w, err)
			return
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := runStatement(e, input, w); err != nil {
			fmt.Fprintln(w, err)
		}
	}
}
