package grbl

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mastercactapus/gcam/gcode"
)

// Controller tracks the status of a Grbl device and sends programs to it.
type Controller struct {
	*Conn

	log *zap.Logger

	mx      sync.Mutex
	last    Status
	probes  []Probe
	updates chan Status
}

func NewController(rw io.ReadWriter, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		Conn:    NewConn(rw),
		log:     log,
		updates: make(chan Status, 1),
	}
}

// Run reads from the device and polls its status every interval until ctx
// is done or the connection fails. Close the controller to unblock a
// pending read.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.readLoop() }()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-t.C:
			if err := c.WriteByte('?'); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) readLoop() error {
	buf := make([]byte, 1024)
	for {
		n, err := c.Read(buf)
		if errors.Is(err, io.ErrShortBuffer) {
			buf = make([]byte, 2*len(buf))
			continue
		}
		if err != nil {
			return err
		}
		c.handle(string(buf[:n]))
	}
}

func (c *Controller) handle(data string) {
	if len(data) == 0 {
		return
	}
	switch data[0] {
	case '<':
		c.mx.Lock()
		stat, err := ParseStatus(c.last, data)
		if err == nil {
			c.last = stat
		}
		c.mx.Unlock()
		if err != nil {
			c.log.Warn("parse status", zap.String("data", data), zap.Error(err))
			return
		}
		select {
		case <-c.updates:
		default:
		}
		c.updates <- stat
	case '[':
		prb, err := ParseProbe(data)
		if err != nil {
			c.log.Debug("push message", zap.String("data", data))
			return
		}
		c.log.Info("probe", zap.Stringer("pose", prb.Pose), zap.Bool("valid", prb.Valid))
		c.mx.Lock()
		c.probes = append(c.probes, *prb)
		c.mx.Unlock()
	default:
		c.log.Debug("device", zap.String("data", data))
	}
}

// Status returns the most recent status report.
func (c *Controller) Status() Status {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.last
}

// Updates delivers the latest status report. Older reports are dropped if
// nobody is reading.
func (c *Controller) Updates() <-chan Status { return c.updates }

// Probes returns the probe results seen so far.
func (c *Controller) Probes() []Probe {
	c.mx.Lock()
	defer c.mx.Unlock()
	res := make([]Probe, len(c.probes))
	copy(res, c.probes)
	return res
}

// ResetProbes forgets all probe results.
func (c *Controller) ResetProbes() {
	c.mx.Lock()
	c.probes = nil
	c.mx.Unlock()
}

// Send streams the blocks of p, without comments, to the device.
func (c *Controller) Send(ctx context.Context, p *gcode.Program) (int64, error) {
	start := time.Now()
	n, err := c.Stream(ctx, gcode.NewBuffer(p.Reader()))
	if err != nil {
		c.log.Error("send program", zap.Int64("bytes", n), zap.Error(err))
		return n, err
	}
	c.log.Info("program sent", zap.Int64("bytes", n), zap.Duration("elapsed", time.Since(start)))
	return n, nil
}
