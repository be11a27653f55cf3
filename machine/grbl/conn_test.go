package grbl

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mastercactapus/gcam/gcode"
)

// device is a fake controller answering each line with reply(line).
type device struct {
	io.Reader
	io.Writer

	mx    sync.Mutex
	lines []string
}

func newDevice(t *testing.T, reply func(string) string) *device {
	hostR, devW := io.Pipe()
	devR, hostW := io.Pipe()
	d := &device{Reader: hostR, Writer: hostW}
	t.Cleanup(func() {
		devW.Close()
		hostW.Close()
	})

	go func() {
		br := bufio.NewReader(devR)
		var line []byte
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			switch b {
			case '?':
				io.WriteString(devW, "<Idle|MPos:1.000,2.000,3.000|FS:0,0>\n")
				continue
			case '\n':
			default:
				line = append(line, b)
				continue
			}

			d.mx.Lock()
			d.lines = append(d.lines, string(line))
			d.mx.Unlock()
			if r := reply(string(line)); r != "" {
				io.WriteString(devW, r+"\n")
			}
			line = line[:0]
		}
	}()
	return d
}

func (d *device) Lines() []string {
	d.mx.Lock()
	defer d.mx.Unlock()
	return append([]string(nil), d.lines...)
}

func readLoop(c *Conn) {
	buf := make([]byte, 1024)
	for {
		if _, err := c.Read(buf); err != nil && err != io.ErrShortBuffer {
			return
		}
	}
}

func TestConn_Stream(t *testing.T) {
	dev := newDevice(t, func(string) string { return "ok" })
	c := NewConn(dev)
	go readLoop(c)

	n, err := c.Stream(context.Background(), strings.NewReader("G0 X1\nG1 Y2\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
	assert.Equal(t, []string{"G0 X1", "G1 Y2"}, dev.Lines())
}

func TestConn_StreamError(t *testing.T) {
	dev := newDevice(t, func(line string) string {
		if strings.HasPrefix(line, "G5") {
			return "error:20"
		}
		return "ok"
	})
	c := NewConn(dev)
	go readLoop(c)

	_, err := c.Stream(context.Background(), strings.NewReader("G0 X1\nG5\nG0 X2\n"))
	require.Error(t, err)
	assert.Equal(t, "error:20", err.Error())
	assert.Len(t, dev.Lines(), 3)
}

func TestConn_StreamErrorBufferFull(t *testing.T) {
	dev := newDevice(t, func(line string) string {
		if line == "G5" {
			return "error:20"
		}
		return "ok"
	})
	c := NewConn(dev)
	go readLoop(c)

	var prog strings.Builder
	for i := 0; i < 40; i++ {
		prog.WriteString("G0 X1\n")
		if i == 3 {
			prog.WriteString("G5\n")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Stream(ctx, strings.NewReader(prog.String()))
	require.Error(t, err)
	assert.Equal(t, "error:20", err.Error())
	assert.Contains(t, dev.Lines(), "G5")
	assert.Less(t, len(dev.Lines()), 41)
}

func TestConn_StreamCancel(t *testing.T) {
	dev := newDevice(t, func(string) string { return "" })
	c := NewConn(dev)
	go readLoop(c)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Stream(ctx, strings.NewReader("G4 P10\n"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_Send(t *testing.T) {
	dev := newDevice(t, func(string) string { return "ok" })
	c := NewController(dev, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, 10*time.Millisecond)

	var p gcode.Program
	p.AddLine(gcode.Comment("dropped"))
	p.AddLine(gcode.NewLine("move", gcode.Word{W: 'G', Arg: 0}, gcode.Word{W: 'X', Arg: 3}))
	p.AddLine(gcode.NewLine("", gcode.Word{W: 'M', Arg: 2}))

	_, err := c.Send(ctx, &p)
	require.NoError(t, err)
	assert.Equal(t, []string{"G0 X3", "M2"}, dev.Lines())

	select {
	case stat := <-c.Updates():
		assert.Equal(t, "Idle", stat.State)
	case <-time.After(time.Second):
		t.Fatal("no status update")
	}
	assert.Equal(t, "Idle", c.Status().State)
}
