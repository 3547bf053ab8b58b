//go:build !js && !wasip1 && !cloudflare

package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Template library commands",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured templates",
	RunE:  runTemplatesList,
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configured templates",
	RunE:  runTemplatesValidate,
}

func init() {
	templatesCmd.AddCommand(templatesListCmd, templatesValidateCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := newApp(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer app.Close()

	lib := app.library
	usedBy := make(map[int][]string)
	for kind, id := range lib.Kinds() {
		usedBy[id] = append(usedBy[id], string(kind))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPAGE TYPE\tELEMENTS\tUSED BY")
	for _, id := range lib.IDs() {
		t := lib.ByID(id)
		kinds := usedBy[id]
		sort.Strings(kinds)
		used := "-"
		if len(kinds) > 0 {
			used = fmt.Sprint(kinds)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.PageType, len(t.Elements), used)
	}
	return w.Flush()
}

func runTemplatesValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := newApp(cmd.Context(), cfg, false)
	if err != nil {
		return fmt.Errorf("templates are invalid: %w", err)
	}
	defer app.Close()

	source := "embedded"
	switch {
	case cfg.Templates.Dir != "":
		source = cfg.Templates.Dir
	case cfg.Templates.URL != "":
		source = cfg.Templates.URL
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Templates are valid\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Source: %s\n", source)
	fmt.Fprintf(cmd.OutOrStdout(), "  Count: %d\n", len(app.library.IDs()))
	fmt.Fprintf(cmd.OutOrStdout(), "  Default: %d\n", app.library.Default().ID)
	return nil
}
