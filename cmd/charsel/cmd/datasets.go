package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"charselect/internal/catalog"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List available dataset files",
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if dataDir != "" {
			files = catalog.NewStore(dataDir, nil).Files()
		} else {
			var err error
			files, err = fetchDatasets(cmd.Context(), apiBase)
			if err != nil {
				return err
			}
		}

		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}

func fetchDatasets(ctx context.Context, base string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/datasets", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := &http.Client{Timeout: datasetTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list datasets: status %d", resp.StatusCode)
	}

	var body struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode datasets: %w", err)
	}
	return body.Files, nil
}
