package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmos/iavlx/bench/util"
)

// Plan replays one changeset directory several times with different tree options.
// Fields left empty on a run are taken from the plan.
type Plan struct {
	ChangesetDir string    `json:"changeset_dir"`
	Versions     int64     `json:"versions"`
	Runner       string    `json:"runner"`
	Runs         []RunPlan `json:"runs"`
}

// RunPlan is one replay. Options are passed to the runner as --tree-options.
type RunPlan struct {
	RunName      string          `json:"name"`
	Runner       string          `json:"runner"`
	Options      json.RawMessage `json:"options"`
	ChangesetDir string          `json:"changeset_dir"`
	Versions     int64           `json:"versions"`
}

func main() {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "iavlx-bench-all [plan-file]",
		Short: "Replays a changeset directory once per plan entry and checks that all runs commit the same hash.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the runner commands without executing them.")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		planFile := args[0]
		plan, err := loadPlan(planFile)
		if err != nil {
			return err
		}
		logger := slog.Default()

		resultDir, err := filepath.Abs(filepath.Join(filepath.Dir(planFile), time.Now().Format("20060102_150405")))
		if err != nil {
			return fmt.Errorf("error getting absolute path of result dir: %w", err)
		}
		logger.Info("writing results", "dir", resultDir)
		if dryRun {
			for _, run := range plan.Runs {
				logger.Info("dry run", "run", run.RunName, "cmd", runCommand(run, resultDir).String())
			}
			return nil
		}
		if err := os.MkdirAll(resultDir, 0o755); err != nil {
			return fmt.Errorf("error creating result dir: %w", err)
		}

		var failed []error
		for _, run := range plan.Runs {
			if err := runOne(logger, run, resultDir); err != nil {
				failed = append(failed, err)
			}
		}
		if len(failed) > 0 {
			return errors.Join(failed...)
		}
		return compareRuns(logger, plan.Runs, resultDir)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadPlan reads planFile and fills every run's defaults from the plan.
func loadPlan(planFile string) (Plan, error) {
	bz, err := os.ReadFile(planFile)
	if err != nil {
		return Plan{}, fmt.Errorf("error reading plan file: %w", err)
	}
	var plan Plan
	if err := json.Unmarshal(bz, &plan); err != nil {
		return Plan{}, fmt.Errorf("error unmarshaling plan file: %w", err)
	}
	if len(plan.Runs) == 0 {
		return Plan{}, fmt.Errorf("plan %s has no runs", planFile)
	}
	if plan.Runner == "" {
		plan.Runner = "iavlx"
	}
	names := map[string]struct{}{}
	for i := range plan.Runs {
		run := &plan.Runs[i]
		if run.RunName == "" {
			return Plan{}, fmt.Errorf("run %d has no name", i)
		}
		if _, ok := names[run.RunName]; ok {
			return Plan{}, fmt.Errorf("duplicate run name %q", run.RunName)
		}
		names[run.RunName] = struct{}{}
		if run.ChangesetDir == "" {
			run.ChangesetDir = plan.ChangesetDir
		}
		if run.ChangesetDir == "" {
			return Plan{}, fmt.Errorf("run %s has no changeset dir", run.RunName)
		}
		if run.Versions == 0 {
			run.Versions = plan.Versions
		}
		if run.Runner == "" {
			run.Runner = plan.Runner
		}
	}
	return plan, nil
}

func runCommand(run RunPlan, resultDir string) *exec.Cmd {
	args := []string{
		"replay",
		"--changeset-dir", run.ChangesetDir,
		"--tree-dir", filepath.Join(resultDir, run.RunName),
		"--log-type", "json",
		"--log-file", filepath.Join(resultDir, run.RunName+".jsonl"),
	}
	if len(run.Options) > 0 {
		args = append(args, "--tree-options", string(run.Options))
	}
	if run.Versions > 0 {
		args = append(args, "--versions", strconv.FormatInt(run.Versions, 10))
	}
	return exec.Command(run.Runner, args...)
}

func runOne(logger *slog.Logger, run RunPlan, resultDir string) error {
	cmd := runCommand(run, resultDir)
	logger.Info("starting run", "run", run.RunName, "cmd", cmd.String())
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Error("run failed", "run", run.RunName, "error", err, "output", string(out))
		return fmt.Errorf("run %s failed: %w", run.RunName, err)
	}
	logger.Info("run done", "run", run.RunName, "output", string(out))
	return nil
}

// compareRuns requires every run to have committed the same version, the planned one
// when set, with the same hash. Tree options must never change the committed hashes.
func compareRuns(logger *slog.Logger, runs []RunPlan, resultDir string) error {
	var (
		errs      []error
		first     util.Info
		firstName string
	)
	for _, run := range runs {
		info, err := util.LoadInfo(filepath.Join(resultDir, run.RunName))
		if err != nil {
			errs = append(errs, fmt.Errorf("error loading info of run %s: %w", run.RunName, err))
			continue
		}
		if info.Version == 0 {
			errs = append(errs, fmt.Errorf("run %s did not commit any version", run.RunName))
			continue
		}
		logger.Info("run result", "run", run.RunName, "version", info.Version, "hash", info.Hash)
		if run.Versions > 0 && info.Version != run.Versions {
			errs = append(errs, fmt.Errorf("run %s stopped at version %d, planned %d", run.RunName, info.Version, run.Versions))
			continue
		}
		if firstName == "" {
			first, firstName = info, run.RunName
			continue
		}
		if info.Version != first.Version {
			errs = append(errs, fmt.Errorf("runs %s and %s stopped at versions %d and %d",
				firstName, run.RunName, first.Version, info.Version))
			continue
		}
		if info.Hash != first.Hash {
			errs = append(errs, fmt.Errorf("runs %s and %s disagree at version %d: %s != %s",
				firstName, run.RunName, info.Version, first.Hash, info.Hash))
		}
	}
	return errors.Join(errs...)
}
