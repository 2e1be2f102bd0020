package cmd

import (
	"encoding/json"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"charselect/internal/binding"
	"charselect/internal/preview"
	"charselect/internal/widget"
)

var (
	previewOut   string
	previewWidth int
)

var previewCmd = &cobra.Command{
	Use:   "preview <dataset> [character]",
	Short: "Render the preview widget for a character to PNG",
	Long: `Preview builds a headless node with a dataset selector, a character
selector and the preview widget, selects the given character (or keeps the
first one) and writes the rendered widget once the image has settled.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		node := widget.NewNode(previewWidth, 0)
		datasets := widget.NewCombo("json_file", args[0], []string{args[0]})
		character := widget.NewCombo("character", "", nil)

		b := binding.New(node, datasets, character, newCache(),
			preview.NewHTTPFetcher(clientConfig().ImageTimeout),
			binding.Options{Preview: previewOptions()})

		if len(args) == 2 {
			character.Select(args[1])
		}
		b.Preview().Wait()

		size := node.Size()
		surface := preview.NewImageSurface(size.X, size.Y)
		b.Draw(surface, 0)

		if err := writePNG(previewOut, surface); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		st := b.Preview().State()
		return enc.Encode(struct {
			Character string `json:"character"`
			State     string `json:"state"`
			URL       string `json:"url,omitempty"`
			Output    string `json:"output"`
		}{character.Value(), st.Kind.String(), st.URL, previewOut})
	},
}

func writePNG(path string, s *preview.ImageSurface) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, s.Dst); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "preview.png", "output PNG path")
	previewCmd.Flags().IntVar(&previewWidth, "width", 320, "node width in pixels")
}
