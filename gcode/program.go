package gcode

import (
	"bytes"
	"io"
	"strings"
)

// Line is one block of a program with an optional trailing comment. A Line
// with no words is a comment line.
type Line struct {
	Block   Block
	Comment string
}

// Comment returns a comment-only line.
func Comment(text string) Line { return Line{Comment: text} }

// NewLine returns a line of words with an optional comment.
func NewLine(comment string, words ...Word) Line {
	return Line{Block: Block(words), Comment: comment}
}

// A ';' comment runs to the end of the line, so only line breaks need
// replacing to keep comment text out of the block stream.
var commentReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func commentText(s string) string { return "; " + commentReplacer.Replace(s) }

func (l Line) String() string {
	switch {
	case l.Comment == "":
		return l.Block.String()
	case len(l.Block) == 0:
		return commentText(l.Comment)
	}
	return l.Block.String() + " " + commentText(l.Comment)
}

// Section is a named run of lines in a Program. Sections nest; Depth is 0
// for a top-level section.
type Section struct {
	Name  string
	Depth int

	// Start and End index the program's lines, End exclusive. End is -1
	// while the section is open.
	Start, End int
}

// Program collects emitted lines, grouped into named sections.
//
// The zero value is an empty program ready to use.
type Program struct {
	lines    []Line
	sections []Section
	open     []int
}

// BeginSection opens a new section nested in the current one.
func (p *Program) BeginSection(name string) {
	p.sections = append(p.sections, Section{
		Name:  name,
		Depth: len(p.open),
		Start: len(p.lines),
		End:   -1,
	})
	p.open = append(p.open, len(p.sections)-1)
}

// EndSection closes the innermost open section. It does nothing when no
// section is open.
func (p *Program) EndSection() {
	if len(p.open) == 0 {
		return
	}
	idx := p.open[len(p.open)-1]
	p.open = p.open[:len(p.open)-1]
	p.sections[idx].End = len(p.lines)
}

func (p *Program) AddLine(l Line) {
	l.Block = l.Block.Clone()
	p.lines = append(p.lines, l)
}

// Lines returns a copy of every line added so far.
func (p *Program) Lines() []Line {
	res := make([]Line, len(p.lines))
	copy(res, p.lines)
	return res
}

// Sections returns a copy of the section table.
func (p *Program) Sections() []Section {
	res := make([]Section, len(p.sections))
	copy(res, p.sections)
	return res
}

// Blocks returns the non-empty blocks of the program, dropping comments.
func (p *Program) Blocks() []Block {
	res := make([]Block, 0, len(p.lines))
	for _, l := range p.lines {
		if len(l.Block) > 0 {
			res = append(res, l.Block.Clone())
		}
	}
	return res
}

// Reader returns a Reader over the program blocks.
func (p *Program) Reader() *BlocksReader {
	return &BlocksReader{Blocks: p.Blocks()}
}

// Format renders the program as text, one line per block. With comments
// disabled, comment lines and section headers are dropped and lines are not
// indented.
func (p *Program) Format(comments bool) string {
	var buf bytes.Buffer
	p.write(&buf, comments)
	return buf.String()
}

// WriteTo writes the program, including comments, to w.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	p.write(&buf, true)
	return buf.WriteTo(w)
}

func (p *Program) write(buf *bytes.Buffer, comments bool) {
	next := 0
	depth := func(i int) int {
		d := 0
		for _, s := range p.sections {
			if s.Start <= i && (s.End == -1 || i < s.End) {
				d = s.Depth + 1
			}
		}
		return d
	}

	for i, l := range p.lines {
		if !comments {
			if len(l.Block) > 0 {
				buf.WriteString(l.Block.String())
				buf.WriteByte('\n')
			}
			continue
		}
		for next < len(p.sections) && p.sections[next].Start == i {
			s := p.sections[next]
			buf.WriteString(strings.Repeat("  ", s.Depth))
			buf.WriteString(commentText(s.Name) + "\n")
			next++
		}
		buf.WriteString(strings.Repeat("  ", depth(i)))
		buf.WriteString(l.String())
		buf.WriteByte('\n')
	}
	for ; comments && next < len(p.sections); next++ {
		s := p.sections[next]
		buf.WriteString(strings.Repeat("  ", s.Depth))
		buf.WriteString(commentText(s.Name) + "\n")
	}
}
