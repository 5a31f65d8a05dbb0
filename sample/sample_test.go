package sample

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestShapeNames(t *testing.T) {
	for i, s := range Shapes {
		parsed, err := ParseShape(strings.ToUpper(s.String()))
		require.NoError(t, err)
		require.Equal(t, s, parsed)
		require.Equal(t, i, int(s))
	}

	_, err := ParseShape("hexagon")
	require.Error(t, err)
	require.Equal(t, "unknown", Shape(9).String())
}

func TestShapeExpectedIsOneHot(t *testing.T) {
	require.Equal(t, []float64{1, 0, 0}, Circle.Expected())
	require.Equal(t, []float64{0, 1, 0}, Square.Expected())
	require.Equal(t, []float64{0, 0, 1}, Triangle.Expected())

	v := Square.Expected()
	v[0] = 5
	require.Equal(t, []float64{0, 1, 0}, Square.Expected(), "Expected must return a fresh slice")
}

func TestTemplatesAreBinaryAndDistinct(t *testing.T) {
	for _, s := range Shapes {
		m := s.Template()
		r, c := m.Dims()
		require.Equal(t, TemplateSize, r)
		require.Equal(t, TemplateSize, c)
		for _, v := range m.RawMatrix().Data {
			require.Contains(t, []float64{0, 1}, v)
		}
	}

	require.False(t, mat.Equal(Circle.Template(), Square.Template()))
	require.False(t, mat.Equal(Square.Template(), Triangle.Template()))
	require.False(t, mat.Equal(Circle.Template(), Triangle.Template()))
}

func TestGenerateFlipsAtMostFivePixels(t *testing.T) {
	gen := NewGenerator(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		shape := Shapes[i%len(Shapes)]
		s := gen.Generate(shape)

		require.Equal(t, shape.Expected(), s.Expected)
		require.Equal(t, int(shape), s.Class())

		var diff mat.Dense
		diff.Sub(s.Input, shape.Template())
		flipped := 0
		for _, v := range diff.RawMatrix().Data {
			if v != 0 {
				flipped++
			}
		}
		require.LessOrEqual(t, flipped, maxNoise)
		for _, v := range s.Input.RawMatrix().Data {
			require.Contains(t, []float64{0, 1}, v)
		}
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	a := NewGenerator(rand.NewSource(99))
	b := NewGenerator(rand.NewSource(99))
	for i := 0; i < 10; i++ {
		require.True(t, mat.Equal(a.Generate(Triangle).Input, b.Generate(Triangle).Input))
	}
}

func TestEncodeDecode(t *testing.T) {
	s := NewGenerator(rand.NewSource(3)).Generate(Circle)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, TemplateSize+1)
	require.Equal(t, "1 0 0", lines[0])

	decoded, err := Decode(&buf, TemplateSize, len(Shapes))
	require.NoError(t, err)
	require.Equal(t, s.Expected, decoded.Expected)
	require.True(t, mat.Equal(s.Input, decoded.Input))
}

func TestDecodeAcceptsMissingTrailingNewlineAndCRLF(t *testing.T) {
	text := "0 1\r\n1 0\r\n0 1"
	s, err := Decode(strings.NewReader(text), 2, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, s.Expected)
	require.Equal(t, []float64{1, 0, 0, 1}, s.Input.RawMatrix().Data)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"short expected", "1\n0 0\n0 0\n"},
		{"missing row", "1 0\n0 0\n"},
		{"short row", "1 0\n0 0\n0\n"},
		{"not a number", "1 0\n0 x\n0 0\n"},
		{"not binary", "1 0\n0 2\n0 0\n"},
		{"extra row", "1 0\n0 0\n0 0\n1 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.text), 2, 2)
			require.Error(t, err)
		})
	}
}

func TestDecodeReportsLineNumber(t *testing.T) {
	_, err := Decode(strings.NewReader("1 0\n0 0\n0 0 0\n"), 2, 2)
	require.ErrorContains(t, err, "at line 3, expected 2 values, got 3")
}

func TestWriteAndLoadSet(t *testing.T) {
	root := t.TempDir()
	gen := NewGenerator(rand.NewSource(5))

	require.NoError(t, WriteSet(root, Train, gen, 4))
	// stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(SetDir(root, Train), "README"), []byte("x"), 0644))

	samples, err := LoadSet(root, Train, TemplateSize, len(Shapes))
	require.NoError(t, err)
	require.Len(t, samples, 4*len(Shapes))

	counts := make(map[int]int)
	for _, s := range samples {
		counts[s.Class()]++
	}
	for _, shape := range Shapes {
		require.Equal(t, 4, counts[int(shape)])
	}

	_, err = os.Stat(filepath.Join(root, "train", "triangle_3.txt"))
	require.NoError(t, err)
}

func TestIterateStopsOnError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, WriteSet(root, Validate, NewGenerator(rand.NewSource(1)), 2))

	seen := 0
	stop := os.ErrClosed
	err := Iterate(root, Validate, TemplateSize, len(Shapes), func(Sample) error {
		seen++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, seen)
}

func TestLoadSetMissingDirectory(t *testing.T) {
	_, err := LoadSet(t.TempDir(), Validate, TemplateSize, len(Shapes))
	require.Error(t, err)
}

func TestLoadSetNamesBadFile(t *testing.T) {
	root := t.TempDir()
	dir := SetDir(root, Train)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("1 0 0\n"), 0644))

	_, err := LoadSet(root, Train, TemplateSize, len(Shapes))
	require.ErrorContains(t, err, "broken.txt")
}
