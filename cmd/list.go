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
	"time"

	"github.com/spf13/cobra"
)

var (
	listProject string
	listTimeout time.Duration
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Inspect what the platform serves for a project",
}

var listComponentsCmd = &cobra.Command{
	Use:          "components",
	Short:        "List a project's translatable components",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildPlatformClient(listTimeout)
		if err != nil {
			return err
		}

		components, err := client.ListComponents(context.Background(), listProject)
		if err != nil {
			return fmt.Errorf("failed to list components: %w", err)
		}
		if len(components) == 0 {
			fmt.Println("No components.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tNAME")
		for _, c := range components {
			fmt.Fprintf(w, "%s\t%s\n", c.Slug, c.Name)
		}
		return w.Flush()
	},
}

var listLanguagesCmd = &cobra.Command{
	Use:          "languages <component>",
	Short:        "List the languages a component is translated into",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildPlatformClient(listTimeout)
		if err != nil {
			return err
		}

		languages, err := client.ListLanguages(context.Background(), listProject, args[0])
		if err != nil {
			return fmt.Errorf("failed to list languages: %w", err)
		}
		if len(languages) == 0 {
			fmt.Println("No languages.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME")
		for _, l := range languages {
			fmt.Fprintf(w, "%s\t%s\n", l.Code, l.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.PersistentFlags().StringVarP(&listProject, "project", "p", "", "Project slug on the platform (required)")
	listCmd.PersistentFlags().DurationVar(&listTimeout, "timeout", 30*time.Second, "Per-request timeout")
	listCmd.MarkPersistentFlagRequired("project")

	listCmd.AddCommand(listComponentsCmd)
	listCmd.AddCommand(listLanguagesCmd)
}
