package smh

import (
	"fmt"
)

// IOError reports a failure to open, read, write, or rename a file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FormatError reports a container that does not follow the SMH1 layout: a
// bad magic tag, a truncated header or codebook, an out-of-range padding
// count, or an invalid codebook.
type FormatError struct {
	// Path is the file being read, if known.
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "invalid " + Magic + " container"
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// CodebookTooLargeError reports a serialized codebook that does not fit in
// the container's 16-bit length field.
type CodebookTooLargeError struct {
	Size int
}

func (e *CodebookTooLargeError) Error() string {
	return fmt.Sprintf("serialized codebook is too large: got %d bytes, max %d", e.Size, MaxCodebookSize)
}

// MissingSymbolError reports an input byte that has no code in the codebook
// used to encode it.
type MissingSymbolError struct {
	Symbol Symbol
	Offset int
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("symbol %d at offset %d has no code in the codebook", e.Symbol, e.Offset)
}

// DecodeError reports a packed bit stream that cannot be decoded with its
// codebook.
type DecodeError struct {
	// BitOffset is the offset of the bit being decoded when the problem
	// was detected.
	BitOffset uint64
	Reason    string
	Err       error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("failed to decode bit stream at bit %d: %s", e.BitOffset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
