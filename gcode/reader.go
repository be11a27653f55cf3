package gcode

import "io"

// Reader returns blocks one at a time; io.EOF ends the stream.
type Reader interface {
	Read() (Block, error)
}

type BlocksReader struct {
	Blocks []Block
	n      int
}

func (b *BlocksReader) Read() (Block, error) {
	if b.n == len(b.Blocks) {
		return nil, io.EOF
	}

	b.n++
	return b.Blocks[b.n-1], nil
}

// ReadAll reads r until io.EOF.
func ReadAll(r Reader) ([]Block, error) {
	var res []Block
	for {
		b, err := r.Read()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
}
