package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/job"
	"github.com/mastercactapus/gcam/machine/grbl"
	"github.com/mastercactapus/gcam/units"
)

// meshFile is the part of a job file written by probe.
type meshFile struct {
	Mesh job.MeshConfig `yaml:"mesh"`
}

// newMesh builds a mesh section with heights relative to the first probe,
// which is taken at the starting position.
func newMesh(points []coord.Point, granularity float64) meshFile {
	var f meshFile
	f.Mesh.Granularity = granularity
	f.Mesh.Points = make([][3]float64, len(points))
	for i, p := range points {
		f.Mesh.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	if len(points) > 0 {
		f.Mesh.Reference = points[0].Z
	}
	return f
}

func writeMesh(w io.Writer, f meshFile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe a grid on a Grbl controller and write a job mesh section",
	Long: `Probes the work surface starting at the current position. The result is a
YAML mesh section that can be pasted into a job file to level its paths.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		baud, _ := cmd.Flags().GetInt("baud")
		poll, _ := cmd.Flags().GetDuration("poll")
		output, _ := cmd.Flags().GetString("output")
		feed, _ := cmd.Flags().GetFloat64("feed")
		travel, _ := cmd.Flags().GetFloat64("travel")
		x, _ := cmd.Flags().GetFloat64("x")
		y, _ := cmd.Flags().GetFloat64("y")
		granularity, _ := cmd.Flags().GetFloat64("granularity")

		ctrl, err := openController(port, baud, poll)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := waitStatus(ctx, ctrl); err != nil {
			return err
		}
		points, err := ctrl.ProbeGrid(ctx, grbl.ProbeGridOptions{
			ProbeOptions: grbl.ProbeOptions{
				FeedRate:  units.MillimetersPerMinute(feed),
				MaxTravel: units.Millimeters(-travel),
			},
			DistanceX:   units.Millimeters(x),
			DistanceY:   units.Millimeters(y),
			Granularity: units.Millimeters(granularity),
		})
		if err != nil {
			return err
		}
		log.Info("probe complete", zap.Int("points", len(points)))

		var w io.Writer = cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return writeMesh(w, newMesh(points, granularity))
	},
}

// waitStatus blocks until the first status report arrives.
func waitStatus(ctx context.Context, ctrl *controller) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ctrl.Updates():
		return nil
	}
}

func init() {
	rootCmd.AddCommand(probeCmd)
	addSerialFlags(probeCmd, "/dev/ttyUSB0")
	probeCmd.Flags().StringP("output", "o", "-", "Output file, - for stdout.")
	probeCmd.Flags().Float64("feed", 100, "Probe feed rate in mm/min.")
	probeCmd.Flags().Float64("travel", 10, "Maximum probe depth in mm.")
	probeCmd.Flags().Float64("x", 100, "Grid size along X in mm.")
	probeCmd.Flags().Float64("y", 100, "Grid size along Y in mm.")
	probeCmd.Flags().Float64("granularity", 10, "Longest distance between probe points in mm.")
}
