package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmos/iavlx"
	"github.com/cosmos/iavlx/bench/util"
)

const envPrefix = "IAVLX"

// env is shared by all subcommands and set up before any of them runs.
type env struct {
	v          *viper.Viper
	logger     *slog.Logger
	treeLogger log.Logger
	closer     io.Closer
	registry   *prometheus.Registry
}

func newEnv() *env {
	e := &env{v: viper.New()}
	e.v.SetEnvPrefix(envPrefix)
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()
	return e
}

// close releases the log file. Cobra skips post-run hooks when a command
// fails, so this runs after Execute instead.
func (e *env) close() error {
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}

// execute runs the root command with args and releases the env afterwards.
func execute(e *env, args []string, out io.Writer) error {
	cmd := newRootCmd(e)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	err := cmd.Execute()
	if closeErr := e.close(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "iavlx",
		Short:        "In-memory IAVL tree tools: replay changesets, render trees and hashes.",
		SilenceUsage: true,
	}
	pf := cmd.PersistentFlags()
	pf.String("log-type", "text", "Log output format: text, json or plain.")
	pf.String("log-level", "info", "Minimum log level.")
	pf.String("log-file", "", "Write logs to this file instead of stderr.")
	pf.String("tree-options", "", `Tree options as JSON, e.g. {"zero_copy":true,"verify_hashes":true}.`)
	pf.Bool("print-metrics", false, "Print the collected tree metrics when the command finishes.")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := e.v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		logger, treeLogger, closer, err := util.NewLogger(util.LoggerConfig{
			Type:  e.v.GetString("log-type"),
			Level: e.v.GetString("log-level"),
			File:  e.v.GetString("log-file"),
		})
		if err != nil {
			return err
		}
		e.logger, e.treeLogger, e.closer = logger, treeLogger, closer
		e.registry = prometheus.NewRegistry()
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if e.v.GetBool("print-metrics") {
			return printMetrics(cmd.OutOrStdout(), e.registry)
		}
		return nil
	}

	cmd.AddCommand(
		replayCmd(e),
		dotCmd(e),
		demoCmd(e),
	)
	return cmd
}

func (e *env) treeOptions() (iavlx.Options, error) {
	var opts iavlx.Options
	raw := e.v.GetString("tree-options")
	if raw == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, fmt.Errorf("error parsing tree options: %w", err)
	}
	return opts, nil
}

func printMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var labels []string
			for _, label := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}
			sort.Strings(labels)
			var value float64
			if c := metric.GetCounter(); c != nil {
				value = c.GetValue()
			} else if g := metric.GetGauge(); g != nil {
				value = g.GetValue()
			}
			if _, err := fmt.Fprintf(w, "%s{%s} %g\n", family.GetName(), strings.Join(labels, ","), value); err != nil {
				return err
			}
		}
	}
	return nil
}
