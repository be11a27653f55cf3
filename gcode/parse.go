package gcode

import (
	"io"
	"strings"
)

// Parse returns the blocks of a G-code text, without comments.
func Parse(data string) ([]Block, error) {
	return ReadAll(NewParser(strings.NewReader(data)))
}

// ParseProgram reads a whole program, keeping comments. Section headers
// written by Format come back as plain comment lines.
func ParseProgram(r io.Reader) (*Program, error) {
	pr := NewParser(r)
	var p Program
	for {
		l, err := pr.ReadLine()
		if err == io.EOF {
			return &p, nil
		}
		if err != nil {
			return nil, err
		}
		p.AddLine(l)
	}
}
