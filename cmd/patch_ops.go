// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"srodbpatch/cli/internal/catalog"
	apperrors "srodbpatch/cli/internal/errors"
	"srodbpatch/cli/internal/logging"
	"srodbpatch/cli/internal/runner"
	"srodbpatch/cli/internal/sqlexec"
	"srodbpatch/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// patchAction describes one of the commands that run against a patch's
// tables: backup, restore and apply.
type patchAction struct {
	use   string
	short string
	long  string

	// prompt returns the text shown before the confirmation question.
	prompt     func(p catalog.Patch) string
	defaultYes bool

	working      string
	successTitle string
	failureTitle string

	operation func(e *sqlexec.Executor, p catalog.Patch) runner.Operation
}

func (a patchAction) command() *cobra.Command {
	var yes bool
	c := &cobra.Command{
		Use:   a.use + " <patch>",
		Short: a.short,
		Long:  a.long,
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := resolvePatch(strings.Join(args, " "))
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(a.prompt(patch), a.defaultYes)
				if err != nil {
					return err
				}
				if !ok {
					pterm.Info.Println("Cancelled.")
					return nil
				}
			}

			s, err := effectiveSettings()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			exec, db, err := openExecutor(ctx, s)
			if err != nil {
				pterm.Println(logging.FormatConnectionError(err.Error()))
				return errReported
			}
			defer db.Close()

			if a.use == "apply" && !exec.Dialect().Native() {
				pterm.Warning.Printf("Patch statements are written for SQL Server; on %s they may fail or touch other tables than the backup covers.\n",
					exec.Dialect().Name())
			}

			logger.Info("operation started", "command", a.use, "patch", patch.Name)
			res, err := runOperation(ctx, fmt.Sprintf("%s '%s'", a.working, patch.Name), a.operation(exec, patch))
			if err != nil {
				return err
			}
			showResultBox(res.Success, a.successTitle, a.failureTitle, res.Message)
			if !res.Success {
				logger.Error("operation failed", "command", a.use, "patch", patch.Name,
					"kind", string(apperrors.KindOf(res.Err)), "error", res.Err)
				return errReported
			}
			logger.Info("operation succeeded", "command", a.use, "patch", patch.Name)
			return nil
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return c
}

// runOperation runs op on a Runner and renders its progress until the
// terminal event.
func runOperation(ctx context.Context, title string, op runner.Operation) (sqlexec.Result, error) {
	r := runner.New(logger)
	if err := r.Start(ctx, op); err != nil {
		return sqlexec.Result{}, err
	}

	view := startProgress(title, !verbose && terminal.IsInteractive())
	for ev := range r.Events() {
		if ev.Type == runner.EventProgress {
			logger.Debug("progress", "message", ev.Message)
			view.Update(ev.Message)
		}
	}
	view.Stop()
	return r.Wait(), nil
}

// resolvePatch accepts a patch name or its 1-based position in the catalog.
func resolvePatch(arg string) (catalog.Patch, error) {
	arg = strings.TrimSpace(arg)
	p, err := catalog.Lookup(arg)
	if err == nil {
		return p, nil
	}
	if n, convErr := strconv.Atoi(arg); convErr == nil {
		if all := catalog.All(); n >= 1 && n <= len(all) {
			return all[n-1], nil
		}
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Patch{}, apperrors.Wrap(apperrors.PatchNotFound,
			fmt.Sprintf("unknown patch %q (run 'srodbpatch patches' to list them)", arg), err)
	}
	return catalog.Patch{}, err
}

// confirm shows text and asks a yes/no question. Without a terminal it
// refuses, since destructive commands must not run unattended by accident.
func confirm(text string, defaultYes bool) (bool, error) {
	if !terminal.IsInteractive() {
		return false, errors.New("confirmation needs an interactive terminal; pass --yes to proceed")
	}
	pterm.Println(text)
	pterm.Println()
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultYes).
		Show("Continue?")
}

var backupCmd = patchAction{
	use:   "backup",
	short: "Back up the tables a patch touches",
	long: `Copies every table the patch touches into <table>_Backup. An existing backup
of the same table is replaced.`,
	prompt: func(p catalog.Patch) string {
		return fmt.Sprintf("This will create a backup for patch: %s\n\nTables to backup: %s\n\nExisting backups will be replaced.",
			p.Name, strings.Join(p.BackupTables, ", "))
	},
	defaultYes:   true,
	working:      "Creating backup for",
	successTitle: "Backup Complete",
	failureTitle: "Backup Failed",
	operation: func(e *sqlexec.Executor, p catalog.Patch) runner.Operation {
		return func(ctx context.Context, progress sqlexec.Progress) sqlexec.Result {
			return e.Backup(ctx, p.BackupTables, progress)
		}
	},
}.command()

var restoreCmd = patchAction{
	use:   "restore",
	short: "Restore the tables a patch touches from their backups",
	long: `Replaces every row of the patch's tables with the rows of <table>_Backup.
Nothing is changed unless a backup exists for every table.`,
	prompt: func(p catalog.Patch) string {
		return pterm.Warning.Sprintf("This will restore tables for patch: %s\n\nTables to restore: %s\n\n"+
			"ALL current data in these tables will be DELETED and replaced with backup data.\n\nThis cannot be undone.",
			p.Name, strings.Join(p.BackupTables, ", "))
	},
	working:      "Restoring",
	successTitle: "Restore Complete",
	failureTitle: "Restore Failed",
	operation: func(e *sqlexec.Executor, p catalog.Patch) runner.Operation {
		return func(ctx context.Context, progress sqlexec.Progress) sqlexec.Result {
			return e.Restore(ctx, p.BackupTables, progress)
		}
	},
}.command()

var applyCmd = patchAction{
	use:   "apply",
	short: "Apply a patch",
	long: `Runs the patch's statements in order inside one transaction. When any of the
patch's tables has no backup yet, all of them are backed up first.`,
	prompt: func(p catalog.Patch) string {
		return fmt.Sprintf("This will apply patch: %s\n\n%s\n\n"+
			"A backup will be created automatically before applying.\nYou can restore from backup at any time.",
			p.Name, p.Description)
	},
	working:      "Applying",
	successTitle: "Patch Applied",
	failureTitle: "Patch Failed",
	operation: func(e *sqlexec.Executor, p catalog.Patch) runner.Operation {
		return func(ctx context.Context, progress sqlexec.Progress) sqlexec.Result {
			return e.Apply(ctx, p, progress)
		}
	},
}.command()

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd, applyCmd)
}
