//go:build !js && !wasip1 && !cloudflare

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/outline"
)

var parseDeck bool

var parseCmd = &cobra.Command{
	Use:   "parse <markdown>",
	Short: "Parse outline markdown (use - for stdin)",
	Long: `Parse outline markdown and print its title, outline and per-slide content.
With --deck the normalised deck JSON is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseDeck, "deck", false, "print the normalised deck JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if !parseDeck {
		return enc.Encode(outline.Parse(string(input)))
	}

	d, _, err := outline.Decode(input)
	if err != nil {
		return err
	}
	d.Normalize()
	for _, t := range pageTitles(d) {
		fmt.Fprintln(cmd.ErrOrStderr(), t)
	}
	return enc.Encode(d)
}

// pageTitles lists "kind: title" for every page of d
func pageTitles(d *deck.Deck) []string {
	titles := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		titles[i] = fmt.Sprintf("%s: %s", p.Kind(), deck.Title(p))
	}
	return titles
}
