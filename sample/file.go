package sample

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Kind names a sample set directory.
type Kind string

const (
	Train    Kind = "train"
	Validate Kind = "validate"
)

const symbolDelimiter = " "

// Sample is one labelled image.
type Sample struct {
	Expected []float64
	Input    *mat.Dense
}

// Class is the index of the strongest expected value.
func (s Sample) Class() int {
	return floats.MaxIdx(s.Expected)
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// Encode writes the expected vector on the first line followed by one line of
// space separated pixels per input row.
func Encode(w io.Writer, s Sample) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(joinFloats(s.Expected) + "\n"); err != nil {
		return errors.Wrap(err, "writing expected line")
	}
	rows, _ := s.Input.Dims()
	for i := 0; i < rows; i++ {
		if _, err := bw.WriteString(joinFloats(s.Input.RawRowView(i)) + "\n"); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "flushing sample")
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strings.Join(parts, symbolDelimiter)
}

// Decode parses a sample written by Encode. The image must be inputSize ×
// inputSize with every pixel 0 or 1, and the expected vector must have
// outputSize entries. Blank lines after the image are ignored.
func Decode(r io.Reader, inputSize, outputSize int) (Sample, error) {
	scanner := bufio.NewScanner(r)
	var (
		s       Sample
		lineNum int
		row     int
	)
	s.Input = mat.NewDense(inputSize, inputSize, nil)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if lineNum == 1 {
			values, err := parseLine(line, lineNum, outputSize)
			if err != nil {
				return Sample{}, errors.Wrap(err, "parsing expected")
			}
			s.Expected = values
			continue
		}

		if row == inputSize {
			if line != "" {
				return Sample{}, errors.Errorf("at line %d, expected end of sample after %d rows", lineNum, inputSize)
			}
			continue
		}

		values, err := parseLine(line, lineNum, inputSize)
		if err != nil {
			return Sample{}, errors.Wrap(err, "parsing input")
		}
		for j, v := range values {
			if v != 0 && v != 1 {
				return Sample{}, errors.Errorf("at line %d, pixel %d is %v, want 0 or 1", lineNum, j, v)
			}
		}
		s.Input.SetRow(row, values)
		row++
	}
	if err := scanner.Err(); err != nil {
		return Sample{}, errors.Wrap(err, "reading sample")
	}

	if s.Expected == nil {
		return Sample{}, errors.New("empty sample")
	}
	if row != inputSize {
		return Sample{}, errors.Errorf("expected %d input rows, got %d", inputSize, row)
	}
	return s, nil
}

func parseLine(line string, lineNum, expected int) ([]float64, error) {
	splits := strings.Fields(line)
	if len(splits) != expected {
		return nil, errInvalidLine{
			lineNum:  lineNum,
			splits:   len(splits),
			expected: expected,
		}
	}

	values := make([]float64, len(splits))
	for i, split := range splits {
		num, err := strconv.ParseFloat(split, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "at line %d", lineNum)
		}
		values[i] = num
	}
	return values, nil
}

// SetDir is the directory holding the samples of kind under root.
func SetDir(root string, kind Kind) string {
	return filepath.Join(root, string(kind))
}

// WriteSet generates count samples of every shape into the kind directory
// under root, creating it when missing.
func WriteSet(root string, kind Kind, gen *Generator, count int) error {
	dir := SetDir(root, kind)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	for _, shape := range Shapes {
		for i := 0; i < count; i++ {
			name := filepath.Join(dir, fmt.Sprintf("%s_%d.txt", shape, i))
			if err := writeFile(name, gen.Generate(shape)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(name string, s Sample) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	if err := Encode(f, s); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", name)
	}
	return errors.Wrapf(f.Close(), "closing %s", name)
}

// Iterate decodes every .txt file of the kind directory in lexical order and
// hands each sample to fn, stopping at the first error.
func Iterate(root string, kind Kind, inputSize, outputSize int, fn func(Sample) error) error {
	dir := SetDir(root, kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "reading %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		name := filepath.Join(dir, entry.Name())
		s, err := readFile(name, inputSize, outputSize)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func readFile(name string, inputSize, outputSize int) (Sample, error) {
	f, err := os.Open(name)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()

	s, err := Decode(f, inputSize, outputSize)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "decoding %s", name)
	}
	return s, nil
}

// LoadSet reads the whole kind directory into memory.
func LoadSet(root string, kind Kind, inputSize, outputSize int) ([]Sample, error) {
	var samples []Sample
	err := Iterate(root, kind, inputSize, outputSize, func(s Sample) error {
		samples = append(samples, s)
		return nil
	})
	return samples, err
}
