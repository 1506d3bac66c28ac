package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rentscope/geointel/internal/application/market"
)

func newPredictCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Price one listing or a batch of listings from a JSON file",
		Long: `Reads a JSON object (one listing) or array (a batch) and prints the
prediction(s).  Use "-" to read from stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}

			svc := market.NewService(market.Deps{})
			ctx := cmd.Context()

			var batch []map[string]interface{}
			if err := json.Unmarshal(data, &batch); err == nil {
				result, err := svc.PredictBatch(ctx, batch)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			var single map[string]interface{}
			if err := json.Unmarshal(data, &single); err != nil {
				return fmt.Errorf("input must be a JSON listing object or array: %w", err)
			}
			pred, err := svc.PredictPrice(ctx, single)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pred)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file, or - for stdin")
	return cmd
}

func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
