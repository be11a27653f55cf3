package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parser reads G-code text. Both `; comment` and `(comment)` forms are
// understood; comments stay attached to the line they appear on.
type Parser struct {
	br   *bufio.Reader
	line int
}

func NewParser(r io.Reader) *Parser {
	if br, ok := r.(*bufio.Reader); ok {
		return &Parser{br: br}
	}

	return &Parser{br: bufio.NewReader(r)}
}

// ReadLine returns the next line that has words or a comment. Blank lines
// and `%` tape markers are skipped.
func (p *Parser) ReadLine() (Line, error) {
	for {
		s, err := p.br.ReadString('\n')
		if err == io.EOF && s != "" {
			err = nil
		}
		if err != nil {
			return Line{}, err
		}
		p.line++

		s = strings.TrimSpace(s)
		if s == "" || s == "%" {
			continue
		}
		l, err := parseLine(s)
		if err != nil {
			return Line{}, fmt.Errorf("line %d: %w", p.line, err)
		}
		return l, nil
	}
}

// Read returns the next block of words, skipping comment-only lines.
func (p *Parser) Read() (Block, error) {
	for {
		l, err := p.ReadLine()
		if err != nil {
			return nil, err
		}
		if len(l.Block) > 0 {
			return l.Block, nil
		}
	}
}

func isNumber(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func parseLine(s string) (Line, error) {
	var (
		l        Line
		comments []string
	)
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == ';':
			comments = append(comments, strings.TrimSpace(s[i+1:]))
			i = len(s)
		case c == '(':
			end := strings.IndexByte(s[i:], ')')
			if end == -1 {
				return l, fmt.Errorf("%w: unterminated comment %q", ErrInvalidWord, s[i:])
			}
			comments = append(comments, strings.TrimSpace(s[i+1:i+end]))
			i += end + 1
		default:
			w := c
			if w >= 'a' && w <= 'z' {
				w -= 'a' - 'A'
			}
			if w < 'A' || w > 'Z' {
				return l, fmt.Errorf("%w: %q", ErrInvalidWord, s[i:])
			}
			j := i + 1
			for j < len(s) && s[j] == ' ' {
				j++
			}
			k := j
			for k < len(s) && isNumber(s[k]) {
				k++
			}
			arg, err := strconv.ParseFloat(s[j:k], 64)
			if err != nil {
				return l, fmt.Errorf("%w: %q", ErrInvalidWord, s[i:k])
			}
			l.Block = append(l.Block, Word{W: w, Arg: arg})
			i = k
		}
	}
	l.Comment = strings.Join(comments, " ")
	return l, nil
}
