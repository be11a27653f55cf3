package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sendCmd = &cobra.Command{
	Use:   "send <job.yaml>",
	Short: "Stream a job to a Grbl controller over serial",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		baud, _ := cmd.Flags().GetInt("baud")
		poll, _ := cmd.Flags().GetDuration("poll")

		p, res, err := runJob(args[0], 0)
		if err != nil {
			return err
		}
		log.Info("job ready",
			zap.Int("lines", len(p.Blocks())),
			zap.Stringer("rapidTime", res.RapidTime),
			zap.Stringer("cutTime", res.CutTime),
		)

		ctrl, err := openController(port, baud, poll)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = ctrl.Send(ctx, p)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addSerialFlags(sendCmd, "/dev/ttyUSB0")
}
