package cli

import (
	"tupledb/internal/exec"
	"tupledb/internal/store"
)

func openExecutor() (*store.Store, *exec.Executor, error) {
	s := store.New(cfg.DataDir)
	if err := s.Open(); err != nil {
		return nil, nil, err
	}
	return s, exec.New(s), nil
}
