package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/tarm/serial"
	"go.uber.org/zap"

	"github.com/mastercactapus/gcam/machine/grbl"
)

// controller is an open Grbl device and the loop polling it.
type controller struct {
	*grbl.Controller

	port   *serial.Port
	cancel context.CancelFunc
	done   chan struct{}
}

// openController opens a serial port and starts polling the device on it.
// Reads block; Close unblocks them by closing the port.
func openController(name string, baud int, poll time.Duration) (*controller, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &controller{
		Controller: grbl.NewController(port, log.Named("grbl")),
		port:       port,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		err := c.Run(ctx, poll)
		if err != nil && ctx.Err() == nil {
			log.Error("controller stopped", zap.String("port", name), zap.Error(err))
		}
	}()
	log.Info("controller connected", zap.String("port", name), zap.Int("baud", baud))
	return c, nil
}

func (c *controller) Close() error {
	c.cancel()
	c.Controller.Close()
	err := c.port.Close()
	<-c.done
	return err
}

func addSerialFlags(cmd *cobra.Command, port string) {
	cmd.Flags().String("port", port, "Serial port of the Grbl controller.")
	cmd.Flags().Int("baud", 115200, "Serial baud rate.")
	cmd.Flags().Duration("poll", 200*time.Millisecond, "Status report interval.")
}
