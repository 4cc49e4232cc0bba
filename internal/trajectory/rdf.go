package trajectory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrColumns = errors.New("trajectory: columns of unequal length")

// WriteRDF writes the columns side by side, one row per bin, every value as
// %.18e separated by a single space.
func WriteRDF(w io.Writer, cols ...[]float64) error {
	if len(cols) == 0 {
		return nil
	}
	rows := len(cols[0])
	for _, c := range cols[1:] {
		if len(c) != rows {
			return fmt.Errorf("%w: %d and %d", ErrColumns, rows, len(c))
		}
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < rows; i++ {
		for j, c := range cols {
			if j > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%.18e", c[i])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteRDFFile writes the table to path.
func WriteRDFFile(path string, cols ...[]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rdf table: %w", err)
	}
	if err := WriteRDF(f, cols...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadRDF parses a whitespace table back into columns. Lines starting with
// '#' are skipped.
func ReadRDF(r io.Reader) ([][]float64, error) {
	sc := bufio.NewScanner(r)
	var cols [][]float64
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if cols == nil {
			cols = make([][]float64, len(fields))
		}
		if len(fields) != len(cols) {
			return nil, fmt.Errorf("line %d: %w: %d fields, want %d", line, ErrColumns, len(fields), len(cols))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			cols[i] = append(cols[i], v)
		}
	}
	return cols, sc.Err()
}

// ReadRDFFile reads the table at path.
func ReadRDFFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRDF(f)
}
