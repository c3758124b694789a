package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/landsuit/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "landsuit",
	Short: "Binary land-suitability raster engine",
	Long:  "Crops geospatial datasets to a target area, evaluates per-dataset eligibility, combines the results into a suitability mask and publishes it as a GeoTIFF.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
