/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/locflow/internal/journal"
)

var (
	historyDBPath string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect journaled runs",
	Long:  `List past runs and their problem units from the local run journal.`,
}

var historyListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List journaled runs, newest first",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()

		runs, err := j.ListRuns(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No journaled runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tPROJECT\tSCOPE\tSERVICE\tDONE\tSKIP\tFAIL\tFLAGS")
		for _, r := range runs {
			var flags []byte
			if r.DryRun {
				flags = append(flags, 'D')
			}
			if r.Canceled {
				flags = append(flags, 'C')
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"),
				r.Project, r.Components, r.Languages, r.Service,
				r.Succeeded, r.Skipped, r.Failed, flags)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:          "show <run-id>",
	Short:        "Show the problem units of one run",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()

		outcomes, err := j.ListOutcomes(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list outcomes: %w", err)
		}
		if len(outcomes) == 0 {
			fmt.Println("No problem units recorded for this run.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COMPONENT\tLANG\tKEY\tOUTCOME\tREASON\tATTEMPTS\tDETAIL")
		for _, o := range outcomes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				o.Component, o.Language, o.UnitKey,
				o.Outcome, o.Reason, o.Attempts, o.Detail)
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove all journaled runs",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()

		n, err := j.Clear(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear journal: %w", err)
		}
		fmt.Printf("Cleared %d runs from the journal.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "./data/locflow.db", "Journal database path")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}
