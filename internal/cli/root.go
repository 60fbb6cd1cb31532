// Package cli wires tupledb's storage and executor packages into an
// interactive and scriptable command-line surface, in the cobra/pflag/hcl
// style of the example CLI this package's command tree is patterned on.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tupledb/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:               "tupledb",
		Short:             "An embeddable relational data engine",
		PersistentPreRunE: rootPreRun,
		PersistentPostRun: rootPostRun,
	}

	cfg        = config.Default()
	configFile = "tupledb.hcl"
	noConfig   = false
	logWriter  io.WriteCloser

	usedFlags = map[string]bool{}
)

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "`directory` holding table files")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel,
		"log level: trace, debug, info, warn, error, fatal, or panic")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "`file` to use for logging")
	fs.BoolVarP(&cfg.LogStderr, "log-stderr", "s", cfg.LogStderr, "log to standard error")
	fs.StringVar(&configFile, "config-file", configFile, "`file` to load config from")
	fs.BoolVar(&noConfig, "no-config", noConfig, "don't load a config file")

	rootCmd.AddCommand(createTableCmd, dropTableCmd, listTablesCmd,
		insertCmd, getCmd, updateCmd, scanCmd, findCmd, vacuumCmd, queryCmd, replCmd)
}

// Execute runs the root command tree; main() exits non-zero on its error.
func Execute() error {
	return rootCmd.Execute()
}

func rootPreRun(cmd *cobra.Command, args []string) error {
	cmd.Flags().Visit(func(flg *pflag.Flag) {
		usedFlags[flg.Name] = true
	})

	if configFile != "" && !noConfig {
		raw, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("tupledb: %w", err)
		}
		if raw != nil {
			if err := config.Apply(&cfg, raw, usedFlags); err != nil {
				return fmt.Errorf("tupledb: %w", err)
			}
		}
	}

	if !cfg.LogStderr && cfg.LogFile != "" {
		var err error
		logWriter, err = os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logWriter = nil
			return fmt.Errorf("tupledb: %w", err)
		}
		logrus.SetOutput(logWriter)
	}

	logrus.SetFormatter(&logrus.TextFormatter{DisableLevelTruncation: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("tupledb: %w", err)
	}
	logrus.SetLevel(level)

	logrus.WithField("pid", os.Getpid()).Debug("tupledb starting")
	return nil
}

func rootPostRun(cmd *cobra.Command, args []string) {
	logrus.WithField("pid", os.Getpid()).Debug("tupledb done")
	if logWriter != nil {
		logWriter.Close()
	}
}
