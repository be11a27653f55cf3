package machine

import (
	"fmt"

	"github.com/mastercactapus/gcam/coord"
)

var (
	ErrSpindleStopped  = fmt.Errorf("%w: spindle is stopped", coord.ErrInvalidInput)
	ErrZeroFeedRate    = fmt.Errorf("%w: feed rate is 0", coord.ErrInvalidInput)
	ErrHelixAxis       = fmt.Errorf("%w: wrong helix axis", coord.ErrInvalidInput)
	ErrArcPlane        = fmt.Errorf("%w: arc defined only on planes XY, ZX, YZ", coord.ErrInvalidInput)
	ErrUnknownTool     = fmt.Errorf("%w: unknown tool", coord.ErrInvalidInput)
	ErrToolType        = fmt.Errorf("%w: tool does not fit machine", coord.ErrInvalidInput)
	ErrNoBlock         = fmt.Errorf("%w: no open block", coord.ErrInvalidInput)
	ErrPositionRestore = fmt.Errorf("%w: cannot restore position", coord.ErrUnsupported)

	// ErrClosed is returned by every operation after Close.
	ErrClosed = fmt.Errorf("%w: machine closed", coord.ErrInvariant)
)
