package gcode

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidWord   = errors.New("invalid word in block")
	ErrRepeatedWord  = errors.New("word was repeated in a block")
	ErrModalConflict = errors.New("multiple words from same modal group")
)

// Block is a single line of words.
type Block []Word

// Arg returns the argument of the first word with letter w.
func (b Block) Arg(w byte) (bool, float64) {
	for _, g := range b {
		if g.W == w {
			return true, g.Arg
		}
	}
	return false, 0
}

func (b Block) Clone() Block {
	if b == nil {
		return nil
	}
	c := make(Block, len(b))
	copy(c, b)
	return c
}

func (b Block) String() string {
	s := make([]string, len(b))
	for i, w := range b {
		s[i] = w.String()
	}
	return strings.Join(s, " ")
}

// Validate checks that the block could be executed: letters only, no
// repeated words other than G and M, and at most one word per modal group.
func (b Block) Validate() error {
	var checkWord [256]bool
	var checkModal [256]bool

	for _, g := range b {
		if !g.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidWord, g.W)
		}
		if g.W != 'G' && g.W != 'M' && checkWord[g.W] {
			return fmt.Errorf("%w: %c", ErrRepeatedWord, g.W)
		}
		checkWord[g.W] = true
		m := g.ModalGroup()
		if m != ModalGroupNone && checkModal[m] {
			return fmt.Errorf("%w: %s in group %s", ErrModalConflict, g, m)
		}
		checkModal[m] = true
	}

	return nil
}
