package smh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Magic is the tag at the start of every container.
const Magic = "SMH1"

// MaxCodebookSize is the largest serialized codebook, in bytes, that a
// container can hold.
const MaxCodebookSize = math.MaxUint16

const headerSize = len(Magic) + 1 + 2

// Container is the in-memory form of an SMH1 file.
type Container struct {
	// Padding is the number of zero bits, 0 .. 7, at the end of Data.
	Padding uint8

	// Codebook is the code used to produce Data.
	Codebook Codebook

	// Data holds the packed coded bits, most significant bit first.
	Data []byte
}

// NewContainer wraps an EncodedStream for storage.
func NewContainer(s EncodedStream) Container {
	return Container{
		Padding:  s.Padding,
		Codebook: s.Codebook,
		Data:     s.Data,
	}
}

// Stream returns the EncodedStream held by this Container.
func (c Container) Stream() EncodedStream {
	return EncodedStream{
		Padding:  c.Padding,
		Codebook: c.Codebook,
		Data:     c.Data,
	}
}

// MarshalBinary serializes the container: magic tag, padding byte, 16-bit
// little-endian codebook length, codebook, and data.  A codebook that
// serializes to more than MaxCodebookSize bytes yields a
// *CodebookTooLargeError.
func (c Container) MarshalBinary() ([]byte, error) {
	if c.Padding > 7 {
		return nil, &FormatError{Reason: fmt.Sprintf("padding %d out of range 0 .. 7", c.Padding)}
	}

	rawCodebook, err := c.Codebook.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize codebook: %w", err)
	}
	if len(rawCodebook) > MaxCodebookSize {
		return nil, &CodebookTooLargeError{Size: len(rawCodebook)}
	}

	out := make([]byte, 0, headerSize+len(rawCodebook)+len(c.Data))
	out = append(out, Magic...)
	out = append(out, c.Padding)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(rawCodebook)))
	out = append(out, rawCodebook...)
	out = append(out, c.Data...)
	return out, nil
}

// UnmarshalBinary parses the format written by MarshalBinary.  A codebook
// length of 0 is read as the empty codebook.  Every violation of the format
// yields a *FormatError.
func (c *Container) UnmarshalBinary(raw []byte) error {
	if len(raw) < len(Magic) {
		return &FormatError{Reason: fmt.Sprintf("truncated header: got %d bytes, need %d", len(raw), headerSize)}
	}
	if magic := string(raw[:len(Magic)]); magic != Magic {
		return &FormatError{Reason: fmt.Sprintf("bad magic tag %q, expected %q", magic, Magic)}
	}
	if len(raw) < headerSize {
		return &FormatError{Reason: fmt.Sprintf("truncated header: got %d bytes, need %d", len(raw), headerSize)}
	}

	padding := raw[len(Magic)]
	codebookSize := int(binary.LittleEndian.Uint16(raw[len(Magic)+1 : headerSize]))
	raw = raw[headerSize:]

	if padding > 7 {
		return &FormatError{Reason: fmt.Sprintf("padding %d out of range 0 .. 7", padding)}
	}
	if len(raw) < codebookSize {
		return &FormatError{Reason: fmt.Sprintf("truncated codebook: got %d bytes, need %d", len(raw), codebookSize)}
	}

	// A zero length field stands for the empty codebook.
	cb := make(Codebook)
	if codebookSize != 0 {
		if err := cb.UnmarshalJSON(raw[:codebookSize]); err != nil {
			return &FormatError{Reason: "malformed codebook", Err: err}
		}
	}
	if err := cb.Validate(); err != nil {
		return &FormatError{Reason: "invalid codebook", Err: err}
	}

	data := make([]byte, len(raw)-codebookSize)
	copy(data, raw[codebookSize:])

	if padding != 0 && len(data) == 0 {
		return &FormatError{Reason: fmt.Sprintf("padding %d with no data", padding)}
	}

	*c = Container{
		Padding:  padding,
		Codebook: cb,
		Data:     data,
	}
	return nil
}

// WriteTo fulfills io.WriterTo.  The container is serialized in full before
// anything is written to w.
func (c Container) WriteTo(w io.Writer) (int64, error) {
	raw, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(raw)
	return int64(n), err
}

// ReadFrom fulfills io.ReaderFrom.  It consumes r to EOF.
func (c *Container) ReadFrom(r io.Reader) (int64, error) {
	raw, err := io.ReadAll(r)
	n := int64(len(raw))
	if err != nil {
		return n, err
	}
	return n, c.UnmarshalBinary(raw)
}

// WriteContainerFile writes c to path.  The destination is replaced only once
// the whole container has been written, so a failure never leaves a partial
// container at path.
func WriteContainerFile(path string, c Container) error {
	raw, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, raw)
}

// ReadContainerFile reads and parses the container stored at path.
func ReadContainerFile(path string) (Container, error) {
	raw, err := readFile(path)
	if err != nil {
		return Container{}, err
	}

	var c Container
	if err := c.UnmarshalBinary(raw); err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return Container{}, err
	}
	return c, nil
}

var _ io.WriterTo = Container{}
var _ io.ReaderFrom = (*Container)(nil)
