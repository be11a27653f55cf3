package machine

import (
	"math"

	"github.com/mastercactapus/gcam/units"
)

// ToolType is the kind of machine a tool fits.
type ToolType byte

const (
	MillTool ToolType = iota
	LatheTool
)

func (t ToolType) String() string {
	if t == LatheTool {
		return "Lathe"
	}
	return "Mill"
}

// Tool is a cutter that can be loaded into the spindle.
type Tool struct {
	Name     string
	Type     ToolType
	Diameter units.Length
	Flutes   int
}

// ToolTable maps tool ids to tools. Id 0 is the empty spindle and cannot be
// assigned.
type ToolTable struct {
	tools map[int]Tool
}

// AddTool registers tool under id. It returns false if the id is reserved or
// already taken.
func (t *ToolTable) AddTool(id int, tool Tool) bool {
	if id <= 0 {
		return false
	}
	if _, ok := t.tools[id]; ok {
		return false
	}
	if t.tools == nil {
		t.tools = make(map[int]Tool)
	}
	t.tools[id] = tool
	return true
}

// RemoveTool deletes a tool. It returns false if there was nothing to remove.
func (t *ToolTable) RemoveTool(id int) bool {
	if _, ok := t.tools[id]; !ok {
		return false
	}
	delete(t.tools, id)
	return true
}

func (t *ToolTable) Get(id int) (bool, Tool) {
	tool, ok := t.tools[id]
	return ok, tool
}

// MillFeedRate is the feed needed for a chip load per tooth at the given
// spindle speed (RPM).
func MillFeedRate(chipLoad units.Length, flutes int, spindleSpeed float64) units.Velocity {
	return units.MillimetersPerMinute(chipLoad.Millimeters() * float64(flutes) * spindleSpeed)
}

// MillSpindleSpeed is the spindle speed (RPM) giving a surface cutting
// speed for a cutter of the given diameter.
func MillSpindleSpeed(cuttingSpeed units.Velocity, diameter units.Length) float64 {
	return cuttingSpeed.MillimetersPerMinute() / (math.Pi * diameter.Millimeters())
}
