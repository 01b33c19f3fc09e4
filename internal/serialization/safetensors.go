// Package serialization saves and loads model state in the SafeTensors
// format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: little-endian F64 values]
//
// The JSON header maps each tensor name to its dtype, shape and byte range
// within the data section, plus an optional "__metadata__" string map.
package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/digitnet/internal/tensor"
)

const (
	metadataKey = "__metadata__"
	checksumKey = "sha256"
	dtypeF64    = "F64"
)

// TensorHeader describes one tensor in the SafeTensors header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Write encodes tensors to w. Tensors are written in alphabetical order by
// name. A SHA-256 of the data section is stored in the metadata.
func Write(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := validateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var data bytes.Buffer
	header := make(map[string]any, len(names)+1)
	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(t.NumElements() * 8)
		shape := make([]int64, t.Rank())
		for i, d := range t.Shape() {
			shape[i] = int64(d)
		}
		header[name] = TensorHeader{
			DType:       dtypeF64,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size

		var buf [8]byte
		for _, v := range t.Data() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			data.Write(buf[:])
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[checksumKey] = checksum(data.Bytes())
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// Read decodes a SafeTensors stream produced by Write. Only F64 tensors
// are supported. When the metadata carries a checksum it is verified.
func Read(r io.Reader) (map[string]*tensor.Tensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	var metadata map[string]string
	headers := make(map[string]TensorHeader, len(raw))
	for name, msg := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}
		if err := validateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h TensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to parse tensor %s: %w", name, err)
		}
		headers[name] = h
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if want, ok := metadata[checksumKey]; ok && checksum(data) != want {
		return nil, nil, ErrChecksumMismatch
	}

	metas := make([]tensorMeta, 0, len(headers))
	for name, h := range headers {
		metas = append(metas, tensorMeta{Name: name, Offset: h.DataOffsets[0], Size: h.DataOffsets[1] - h.DataOffsets[0]})
	}
	if err := validateOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}

	tensors := make(map[string]*tensor.Tensor, len(headers))
	for name, h := range headers {
		t, err := decodeTensor(name, h, data)
		if err != nil {
			return nil, nil, err
		}
		tensors[name] = t
	}
	return tensors, metadata, nil
}

func decodeTensor(name string, h TensorHeader, data []byte) (*tensor.Tensor, error) {
	if h.DType != dtypeF64 {
		return nil, fmt.Errorf("tensor %s: %w %q", name, ErrUnsupportedDType, h.DType)
	}
	shape := make(tensor.Shape, len(h.Shape))
	for i, d := range h.Shape {
		shape[i] = int(d)
	}
	size := h.DataOffsets[1] - h.DataOffsets[0]
	if int64(shape.NumElements())*8 != size {
		return nil, &ValidationError{Err: ErrShapeMismatch, Tensor: name,
			Details: fmt.Sprintf("shape %v needs %d bytes, range holds %d", shape, shape.NumElements()*8, size)}
	}

	values := make([]float64, shape.NumElements())
	chunk := data[h.DataOffsets[0]:h.DataOffsets[1]]
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*8:]))
	}
	t, err := tensor.FromSlice(values, shape)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	return t, nil
}

// WriteFile writes tensors to path, replacing any existing file.
func WriteFile(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: path comes from the user, which is expected for model saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, tensors, metadata); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile reads tensors and metadata from path.
func ReadFile(path string) (map[string]*tensor.Tensor, map[string]string, error) {
	//nolint:gosec // G304: path comes from the user, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}
