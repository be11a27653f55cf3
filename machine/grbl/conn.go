// Package grbl streams programs to a Grbl controller over a serial line.
package grbl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// bufferSize is the size of the Grbl serial receive buffer. Lines are only
// sent while the unacknowledged total fits.
const bufferSize = 128

// ErrGrblReset will be returned from write methods if a reset is encountered
// before all commands are run.
var ErrGrblReset = errors.New("grbl reset")

// ErrLineTooLong is returned for a line that can never fit the device buffer.
var ErrLineTooLong = errors.New("line exceeds grbl buffer")

// Conn represents a direct connection to a Grbl controller.
//
// Something must call Read in a loop for acknowledgements to be seen.
type Conn struct {
	rw io.ReadWriter

	readBuf []byte
	scan    *bufio.Scanner
	ackCh   chan error
	resetCh chan struct{}
	closeCh chan struct{}
	once    sync.Once

	mx  sync.Mutex
	wMx sync.Mutex

	deviceBuf int
	lineSize  []int

	wroteLines int64
	readLines  int64
}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		scan:    bufio.NewScanner(rw),
		rw:      rw,
		// one slot per byte of device buffer; outstanding lines never exceed it
		ackCh:   make(chan error, bufferSize),
		resetCh: make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
}

// Close will abort any in-progress writes and close the
// underlying ReadWriter, if it implements io.Closer.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closeCh)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

func (c *Conn) recordBufferSpace(n int) int64 {
	c.deviceBuf += n
	c.wroteLines++
	c.lineSize = append(c.lineSize, n)
	return c.wroteLines
}

func (c *Conn) waitForBufferSpace(ctx context.Context, n int) error {
	for c.deviceBuf+n > bufferSize {
		err := c.next(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Conn) reset() error {
drain:
	for {
		select {
		case <-c.ackCh:
		default:
			break drain
		}
	}
	c.deviceBuf = 0
	c.lineSize = nil
	c.readLines = c.wroteLines
	return ErrGrblReset
}

func (c *Conn) next(ctx context.Context) error {
	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	default:
	}

	select {
	case <-c.resetCh:
		return c.reset()
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closeCh:
		return io.ErrClosedPipe
	case <-c.resetCh:
		return c.reset()
	case e := <-c.ackCh:
		if len(c.lineSize) == 0 {
			// ack for a line not sent through Stream
			return e
		}
		c.readLines++
		c.deviceBuf -= c.lineSize[0]
		c.lineSize = c.lineSize[1:]
		return e
	}
}

// waitForLine returns once line id has been acknowledged. The first error
// seen is returned, but waiting continues past device errors.
func (c *Conn) waitForLine(ctx context.Context, id int64) (err error) {
	for c.readLines < id {
		e := c.next(ctx)
		if err == nil {
			err = e
		}
		switch {
		case errors.Is(e, ErrGrblReset), errors.Is(e, io.ErrClosedPipe),
			errors.Is(e, context.Canceled), errors.Is(e, context.DeadlineExceeded):
			return err
		}
	}
	return err
}

// writeLine will block until line has been written to the serial device in full.
//
// It returns the line index.
func (c *Conn) writeLine(ctx context.Context, line []byte) (id int64, err error) {
	if len(line) > bufferSize {
		return 0, ErrLineTooLong
	}
	err = c.waitForBufferSpace(ctx, len(line))
	if err != nil {
		return 0, err
	}
	c.mx.Lock()
	_, err = c.rw.Write(line)
	c.mx.Unlock()
	if err != nil {
		return 0, err
	}
	id = c.recordBufferSpace(len(line))
	return id, nil
}

func splitLinesKeepN(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, io.ErrUnexpectedEOF
	}
	return 0, nil, nil
}

// Stream sends every line of r and returns after all of them have been
// executed, ctx is done, or the device reports an error.
func (c *Conn) Stream(ctx context.Context, r io.Reader) (n int64, err error) {
	c.wMx.Lock()
	defer c.wMx.Unlock()
	select {
	case <-c.closeCh:
		return 0, io.ErrClosedPipe
	default:
	}

	scanner := bufio.NewScanner(r)
	scanner.Split(splitLinesKeepN)

	lastID := c.wroteLines
	for scanner.Scan() {
		lastID, err = c.writeLine(ctx, scanner.Bytes())
		if err != nil {
			return n, err
		}
		n += int64(len(scanner.Bytes()))
	}
	if err := scanner.Err(); err != nil {
		return n, err
	}

	return n, c.waitForLine(ctx, lastID)
}

// ReadFrom returns after all lines have been sent and executed.
func (c *Conn) ReadFrom(r io.Reader) (int64, error) {
	return c.Stream(context.Background(), r)
}

// Write will return after all lines have been sent and executed.
func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.ReadFrom(bytes.NewReader(p))
	return int(n), err
}

// WriteByte will write directly to the serial device without
// accounting for buffering.
//
// Use for realtime commands like `?`.
func (c *Conn) WriteByte(p byte) (err error) {
	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	default:
	}
	c.mx.Lock()
	_, err = c.rw.Write([]byte{p})
	c.mx.Unlock()
	return err
}

// Read will read the next line from the device.
func (c *Conn) Read(p []byte) (n int, err error) {
	select {
	case <-c.closeCh:
		return 0, io.ErrClosedPipe
	default:
	}

	if c.readBuf != nil {
		if len(p) < len(c.readBuf) {
			return 0, io.ErrShortBuffer
		}
		n = copy(p, c.readBuf)
		c.readBuf = nil
		return n, nil
	}
	if !c.scan.Scan() {
		if err := c.scan.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	data := bytes.TrimSpace(c.scan.Bytes())

	if bytes.Equal(data, []byte("ok")) {
		select {
		case c.ackCh <- nil:
		case <-c.closeCh:
			return n, io.ErrClosedPipe
		}
	} else if bytes.HasPrefix(data, []byte("error:")) {
		select {
		case c.ackCh <- errors.New(strings.TrimSpace(string(data))):
		case <-c.closeCh:
			return n, io.ErrClosedPipe
		}
	} else if bytes.HasPrefix(data, []byte("Grbl")) {
		select {
		case c.resetCh <- struct{}{}:
		default:
		}
	}

	if len(p) < len(data) {
		c.readBuf = data
		return 0, io.ErrShortBuffer
	}

	return copy(p, data), nil
}
