package acp

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// DefaultMaxFrameSize is the maximum single-line frame size accepted by a
// [FrameScanner] when no explicit size is configured. Matches the teacher
// engine's defaultMaxMessageSize.
const DefaultMaxFrameSize = 4 << 20 // 4 MiB

// FrameScanner reads newline-delimited JSON frames from a byte stream. Per
// spec §4.1 it performs no parsing: each call to Scan/Bytes yields one raw
// JSON line with the trailing newline stripped. Blank lines are skipped
// (agent startup banners and the like commonly precede the first real
// frame on stdout).
type FrameScanner struct {
	s *bufio.Scanner
}

// NewFrameScanner wraps r. maxSize <= 0 uses [DefaultMaxFrameSize].
func NewFrameScanner(r io.Reader, maxSize int) *FrameScanner {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	s := bufio.NewScanner(r)
	initCap := maxSize
	if initCap > 64*1024 {
		initCap = 64 * 1024
	}
	s.Buffer(make([]byte, 0, initCap), maxSize)
	return &FrameScanner{s: s}
}

// Scan advances to the next non-blank line. Returns false at EOF or on an
// unrecoverable read error (see Err).
func (f *FrameScanner) Scan() bool {
	for f.s.Scan() {
		if len(bytes.TrimSpace(f.s.Bytes())) == 0 {
			continue
		}
		return true
	}
	return false
}

// Bytes returns the most recently scanned line, valid only until the next
// call to Scan.
func (f *FrameScanner) Bytes() []byte {
	return f.s.Bytes()
}

// Err returns the first non-EOF error encountered by Scan.
func (f *FrameScanner) Err() error {
	return f.s.Err()
}

// FrameWriter writes newline-delimited JSON frames to a byte stream.
// Writes are serialized with a mutex so concurrent senders never interleave
// a partial line onto the wire (spec §8 "no torn JSON").
type FrameWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewFrameWriter wraps w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes line followed by a single trailing newline.
func (f *FrameWriter) WriteFrame(line []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.w.Write(line); err != nil {
		return err
	}
	_, err := f.w.Write([]byte{'\n'})
	return err
}
