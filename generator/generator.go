// Package generator produces deterministic subject input without an external generator binary.
package generator

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
)

// Biochemical classes accepted by the subject program
var classes = []byte("PNABT")

// Chain holds one generated instance.
type Chain struct {
	Potentials []int
	Classes    string
}

// NewChain builds a chain of the given size. Potentials are drawn from [1, maxValue].
// The same seed always yields the same chain.
func NewChain(size, maxValue int, seed int64) (Chain, error) {
	if size <= 0 {
		return Chain{}, fmt.Errorf("size must be positive, got %d", size)
	}
	if maxValue <= 0 {
		return Chain{}, fmt.Errorf("max value must be positive, got %d", maxValue)
	}

	rng := rand.New(rand.NewSource(seed))
	potentials := make([]int, size)
	for i := range potentials {
		potentials[i] = rng.Intn(maxValue) + 1
	}
	cls := make([]byte, size)
	for i := range cls {
		cls[i] = classes[rng.Intn(len(classes))]
	}
	return Chain{Potentials: potentials, Classes: string(cls)}, nil
}

// WriteTo writes the chain as: size line, potentials line, class string line.
func (c Chain) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	add := func(k int, err error) error {
		n += int64(k)
		return err
	}

	if err := add(fmt.Fprintln(bw, len(c.Potentials))); err != nil {
		return n, err
	}
	buf := make([]byte, 0, 8)
	for i, p := range c.Potentials {
		buf = buf[:0]
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(p), 10)
		if err := add(bw.Write(buf)); err != nil {
			return n, err
		}
	}
	if err := add(fmt.Fprintf(bw, "\n%s\n", c.Classes)); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// Generate writes one instance for (size, maxValue, seed) to w.
func Generate(w io.Writer, size, maxValue int, seed int64) error {
	chain, err := NewChain(size, maxValue, seed)
	if err != nil {
		return err
	}
	_, err = chain.WriteTo(w)
	return err
}
