package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rentscope/geointel/internal/domain/clustering"
	"github.com/rentscope/geointel/internal/domain/geo"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
)

func newClusterCommand() *cobra.Command {
	var file string
	var k int

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a JSON array of points into k groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}
			var points []geo.Point
			if err := json.Unmarshal(data, &points); err != nil {
				return fmt.Errorf("input must be a JSON array of {lat, lng, price} points: %w", err)
			}

			engine := clustering.NewEngine(clustering.DefaultOptions(), logging.NewNopLogger())
			clusters, info, err := engine.Cluster(points, k)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"clusters":       clusters,
				"algorithm_info": info,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file, or - for stdin")
	cmd.Flags().IntVarP(&k, "k", "k", 8, "maximum number of clusters")
	return cmd
}
