package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateCmd = &cobra.Command{
	Use:   "generate <job.yaml>",
	Short: "Write the G-code program for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		comments, _ := cmd.Flags().GetBool("comments")

		p, res, err := runJob(args[0], 0)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if _, err := io.WriteString(w, p.Format(comments)); err != nil {
			return err
		}

		log.Info("generated program",
			zap.String("job", args[0]),
			zap.Int("lines", len(p.Lines())),
			zap.Stringer("length", res.Length),
			zap.Stringer("rapidTime", res.RapidTime),
			zap.Stringer("cutTime", res.CutTime),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("output", "o", "-", "Output file, - for stdout.")
	generateCmd.Flags().Bool("comments", true, "Include comments and section headers.")
}
