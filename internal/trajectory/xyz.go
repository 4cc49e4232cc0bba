package trajectory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/spatial/r3"
)

// Atom is one line of an XYZ frame.
type Atom struct {
	Label string
	Pos   r3.Vec
}

// Frame is one snapshot. Time is in nanoseconds.
type Frame struct {
	Time  float64
	Atoms []Atom
}

// XYZWriter appends frames to an XYZ stream.
type XYZWriter struct {
	w      *bufio.Writer
	closer []io.Closer
	frames int
}

// NewXYZWriter writes plain frames to w. Close flushes but does not close w.
func NewXYZWriter(w io.Writer) *XYZWriter {
	return &XYZWriter{w: bufio.NewWriter(w)}
}

// CreateXYZ creates the trajectory file at path. With compress set the
// stream is zstd compressed and ".zst" is appended to the name. It returns
// the path actually written.
func CreateXYZ(path string, compress bool) (*XYZWriter, string, error) {
	if compress && !strings.HasSuffix(path, ".zst") {
		path += ".zst"
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create trajectory: %w", err)
	}
	if !compress {
		x := NewXYZWriter(f)
		x.closer = []io.Closer{f}
		return x, path, nil
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("create zstd encoder: %w", err)
	}
	x := NewXYZWriter(enc)
	x.closer = []io.Closer{enc, f}
	return x, path, nil
}

// WriteFrame writes the atom count, the "t(ns) = " comment line and one
// "<label> x y z" line per atom.
func (x *XYZWriter) WriteFrame(fr Frame) error {
	fmt.Fprintf(x.w, "%d\n", len(fr.Atoms))
	fmt.Fprintf(x.w, "t(ns) = %s\n", FormatFloat(fr.Time))
	for _, a := range fr.Atoms {
		fmt.Fprintf(x.w, "%s %s %s %s\n", a.Label,
			FormatFloat(a.Pos.X), FormatFloat(a.Pos.Y), FormatFloat(a.Pos.Z))
	}
	x.frames++
	// surface write errors per frame rather than at Close
	return x.w.Flush()
}

// Frames is the number of frames written so far.
func (x *XYZWriter) Frames() int { return x.frames }

func (x *XYZWriter) Close() error {
	err := x.w.Flush()
	for _, c := range x.closer {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// OpenXYZ opens a trajectory for reading, decompressing ".zst" files.
func OpenXYZ(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReadCloser{dec: dec, f: f}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// ReadFrames parses every frame of an XYZ stream.
func ReadFrames(r io.Reader) ([]Frame, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var frames []Frame
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}
	for {
		head, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(head) == "" {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(head, "%d", &n); err != nil {
			return nil, fmt.Errorf("line %d: atom count: %w", line, err)
		}
		comment, ok := next()
		if !ok {
			return nil, fmt.Errorf("line %d: missing comment line", line)
		}
		var fr Frame
		if _, err := fmt.Sscanf(comment, "t(ns) = %g", &fr.Time); err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		fr.Atoms = make([]Atom, n)
		for i := 0; i < n; i++ {
			text, ok := next()
			if !ok {
				return nil, fmt.Errorf("line %d: frame truncated after %d of %d atoms", line, i, n)
			}
			a := &fr.Atoms[i]
			if _, err := fmt.Sscanf(text, "%s %g %g %g", &a.Label, &a.Pos.X, &a.Pos.Y, &a.Pos.Z); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		frames = append(frames, fr)
	}
	return frames, sc.Err()
}
