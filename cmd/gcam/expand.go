package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <job.yaml>",
	Short: "Print the discretized toolpath of every move in a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		density, _ := cmd.Flags().GetFloat64("density")

		_, res, err := runJob(args[0], density)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, mv := range res.Moves {
			fmt.Fprintf(w, "# %d %s %s\n", mv.Index, mv.Kind, mv.Path.Length)
			for _, s := range mv.Path.Steps {
				fmt.Fprintln(w, s)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
	expandCmd.Flags().Float64P("density", "d", 0, "Samples per millimeter or radian; 0 uses the job's.")
}
