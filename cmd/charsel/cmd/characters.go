package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var charactersCmd = &cobra.Command{
	Use:   "characters <dataset>",
	Short: "List the selectable characters of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := newCache().GetOrLoad(cmd.Context(), args[0])
		for _, name := range entry.List {
			fmt.Println(name)
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <dataset> <alias>",
	Short: "Resolve a display name or localized name to its record",
	Long: `Resolve looks an alias up in a dataset. Any of the display name,
the Chinese name or the English name resolves to the same record.

Examples:
  charsel resolve genshin.json 雷电将军
  charsel resolve genshin.json "Raiden Shogun"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := newCache().GetOrLoad(cmd.Context(), args[0])
		rec, ok := entry.Index.Resolve(args[1])
		if !ok {
			return fmt.Errorf("%q not found in %s", args[1], args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(struct {
			DisplayName string `json:"display_name"`
			NameCN      string `json:"name_cn,omitempty"`
			NameEN      string `json:"name_en,omitempty"`
			IconURL     string `json:"icon_url,omitempty"`
		}{rec.DisplayName(), rec.NameCN, rec.NameEN, rec.IconURL})
	},
}
