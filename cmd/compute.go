package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/pipeline"
	"github.com/sells-group/landsuit/internal/publish"
	"github.com/sells-group/landsuit/internal/target"
)

var (
	computeRequest   string
	computeShapefile string
	computeOutDir    string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute a suitability raster from a request file",
	Long: `Reads a request (JSON or YAML) with the dataset list and target area,
computes the suitability raster and prints the published URL and pixel summary.
--shapefile replaces the request's target with the polygons of an ESRI shapefile.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		req, err := readRequest(computeRequest)
		if err != nil {
			return err
		}
		specs, err := req.ChosenSpecs()
		if err != nil {
			return err
		}
		area, err := computeTarget(req)
		if err != nil {
			return err
		}

		var pub publish.Publisher
		if computeOutDir != "" {
			if pub, err = publish.NewLocal(computeOutDir, ""); err != nil {
				return err
			}
		}

		env, err := initPipeline(ctx, "compute", pub)
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Pipeline.Execute(ctx, specs, area)
		if err != nil {
			return err
		}
		return printOutput(cmd, out)
	},
}

// readRequest loads a request file. Files ending in .yaml or .yml are
// converted to JSON first so both forms share one decoder.
func readRequest(file string) (*model.Request, error) {
	if file == "" {
		return nil, eris.New("--request is required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, eris.Wrapf(err, "read request %s", file)
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "parse request %s: %v", file, err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, eris.Wrapf(model.ErrInvalidInput, "convert request %s: %v", file, err)
		}
	}
	return model.DecodeRequest(data)
}

func computeTarget(req *model.Request) (*target.Area, error) {
	if computeShapefile != "" {
		return target.ReadShapefile(computeShapefile)
	}
	return target.ParseGeoJSON(req.Target)
}

func printOutput(cmd *cobra.Command, out *pipeline.Output) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "encode output")
	}
	s := out.Summary
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%dx%d grid: %d suitable, %d unsuitable, %d no-data (%.1f%% of valid samples suitable)\n",
		s.Height, s.Width, s.Suitable, s.Unsuitable, s.NoData, 100*s.SuitableFraction())
	return nil
}

func init() {
	computeCmd.Flags().StringVar(&computeRequest, "request", "", "request file (.json, .yaml or .yml)")
	computeCmd.Flags().StringVar(&computeShapefile, "shapefile", "", "ESRI shapefile to use as the target area")
	computeCmd.Flags().StringVar(&computeOutDir, "out-dir", "", "copy the raster into this directory instead of the configured publisher")
	rootCmd.AddCommand(computeCmd)
}
