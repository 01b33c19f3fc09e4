package dataset

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers: 0x00 0x00, type byte 0x08 (unsigned byte), dimension count.
const (
	idxImagesMagic = 0x00000803 // 2051
	idxLabelsMagic = 0x00000801 // 2049
)

// MaxIDXBytes caps the payload a single IDX stream may declare.
const MaxIDXBytes = 1 << 30

var (
	// ErrBadMagic is returned when an IDX stream does not start with the
	// expected magic number.
	ErrBadMagic = errors.New("invalid IDX magic number")

	// ErrBadDimensions is returned when an IDX header declares an empty
	// image or a payload larger than MaxIDXBytes.
	ErrBadDimensions = errors.New("invalid IDX dimensions")
)

// ReadIDXImages parses an IDX3 image stream.
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255), row-major
//
// Returns the raw pixels of all images back to back.
func ReadIDXImages(r io.Reader) (pixels []byte, count, rows, cols int, err error) {
	dims, err := readIDXHeader(r, idxImagesMagic, 3)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	count, rows, cols = int(dims[0]), int(dims[1]), int(dims[2])
	if rows == 0 || cols == 0 {
		return nil, 0, 0, 0, fmt.Errorf("%w: %dx%d images", ErrBadDimensions, rows, cols)
	}
	size, err := payloadSize(dims)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	pixels, err = readPayload(r, size)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("failed to read %d images: %w", count, err)
	}
	return pixels, count, rows, cols, nil
}

// ReadIDXLabels parses an IDX1 label stream.
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	dims, err := readIDXHeader(r, idxLabelsMagic, 1)
	if err != nil {
		return nil, err
	}
	size, err := payloadSize(dims)
	if err != nil {
		return nil, err
	}
	labels, err := readPayload(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}

func readIDXHeader(r io.Reader, wantMagic uint32, ndims int) ([]uint32, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != wantMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadMagic, magic, wantMagic)
	}

	raw := make([]uint32, ndims)
	if err := binary.Read(r, binary.BigEndian, raw); err != nil {
		return nil, fmt.Errorf("failed to read dimensions: %w", err)
	}
	return raw, nil
}

// payloadSize multiplies the dimensions, failing as soon as the product
// exceeds MaxIDXBytes.
func payloadSize(dims []uint32) (int64, error) {
	size := uint64(1)
	for _, d := range dims {
		size *= uint64(d)
		if size > MaxIDXBytes {
			return 0, fmt.Errorf("%w: %v declares more than %d bytes", ErrBadDimensions, dims, MaxIDXBytes)
		}
	}
	return int64(size), nil
}

// readPayload reads exactly size bytes. The buffer grows with the data
// actually received, so a lying header cannot force a large allocation.
func readPayload(r io.Reader, size int64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(size, 1<<20)))
	n, err := io.CopyN(&buf, r, size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("got %d of %d bytes: %w", n, size, err)
	}
	return buf.Bytes(), nil
}

// openIDX opens path, or path+".gz" when only the compressed file exists.
// Gzip streams are decompressed transparently.
func openIDX(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return readCloser{Reader: bufio.NewReader(f), close: f.Close}, nil
	}

	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return readCloser{Reader: zr, close: func() error {
		return errors.Join(zr.Close(), f.Close())
	}}, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error {
	return rc.close()
}
