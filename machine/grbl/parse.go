package grbl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mastercactapus/gcam/coord"
	"github.com/mastercactapus/gcam/units"
)

var (
	ErrCoords  = errors.New("invalid number of elements")
	ErrMessage = errors.New("unknown push message")
)

// Status is a parsed realtime status report.
type Status struct {
	State string

	// MPos is the machine position, WCO the work coordinate offset. Grbl
	// only sends WCO occasionally, so it carries over between reports.
	MPos coord.Pose
	WCO  coord.Pose
}

// WPos returns the work position.
func (s Status) WPos() coord.Pose { return s.MPos.Sub(s.WCO) }

// Probe is the result of a G38 probing cycle.
type Probe struct {
	Pose  coord.Pose
	Valid bool
}

// coordAxes is the order grbl reports axis values in.
var coordAxes = [...]coord.Axis{coord.X, coord.Y, coord.Z, coord.A, coord.B, coord.C}

func parseCoords(data string) (p coord.Pose, err error) {
	parts := strings.Split(data, ",")
	if len(parts) < 3 || len(parts) > len(coordAxes) {
		return p, fmt.Errorf("%w: %q", ErrCoords, data)
	}
	for i, s := range parts {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, err
		}
		a := coordAxes[i]
		o := coord.L(a, units.Millimeters(v))
		if a.IsRotary() {
			o = coord.R(a, units.Degrees(v))
		}
		p, err = p.With(o)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

// ParseProbe parses a `[PRB:x,y,z:1]` push message.
func ParseProbe(data string) (*Probe, error) {
	data = strings.TrimSpace(data)
	data = strings.TrimPrefix(data, "[")
	data = strings.TrimSuffix(data, "]")
	parts := strings.Split(data, ":")
	var err error
	switch parts[0] {
	case "PRB":
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %s", ErrMessage, data)
		}
		var res Probe
		res.Valid = parts[2] == "1"
		res.Pose, err = parseCoords(parts[1])
		if err != nil {
			return nil, err
		}

		return &res, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrMessage, data)
}

// ParseStatus parses a `<Idle|MPos:..|WCO:..>` report on top of the previous
// status. A report with WPos instead of MPos is converted using the last
// known WCO.
func ParseStatus(stat Status, data string) (Status, error) {
	data = strings.TrimSpace(data)
	data = strings.TrimPrefix(data, "<")
	data = strings.TrimSuffix(data, ">")
	parts := strings.Split(data, "|")
	stat.State = parts[0]

	var (
		wpos    coord.Pose
		hasWPos bool
		err     error
	)
	for _, s := range parts[1:] {
		sParts := strings.SplitN(s, ":", 2)
		if len(sParts) != 2 {
			continue
		}
		switch sParts[0] {
		case "MPos":
			stat.MPos, err = parseCoords(sParts[1])
		case "WPos":
			wpos, err = parseCoords(sParts[1])
			hasWPos = true
		case "WCO":
			stat.WCO, err = parseCoords(sParts[1])
		}
		if err != nil {
			return stat, err
		}
	}
	if hasWPos {
		stat.MPos = wpos.Add(stat.WCO)
	}
	return stat, nil
}
