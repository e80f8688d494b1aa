package smh

import (
	"bytes"
	"fmt"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"
)

// EncodedStream is the result of Encode: the packed bits of the coded input
// together with what is needed to decode them.
type EncodedStream struct {
	// Padding is the number of zero bits, 0 .. 7, appended to the last
	// byte of Data to reach a byte boundary.
	Padding uint8

	// Codebook is the code used to produce Data.
	Codebook Codebook

	// Data holds the coded bits, most significant bit first.
	Data []byte
}

// NumBits returns the number of meaningful bits in Data.
func (s EncodedStream) NumBits() uint64 {
	total := uint64(len(s.Data)) * 8
	if uint64(s.Padding) > total {
		return 0
	}
	return total - uint64(s.Padding)
}

// Encode replaces each byte of data with its code from cb and packs the
// resulting bits, most significant bit first, into bytes.  The final byte is
// filled out with zero bits; Padding is 0 if no filling was needed.
//
// A byte without a code in cb yields a *MissingSymbolError.
func Encode(data []byte, cb Codebook) (EncodedStream, error) {
	codes := cb.lookupTable()

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)

	var numBits uint64
	for offset, b := range data {
		hc := codes[b]
		if hc.Size == 0 {
			return EncodedStream{}, &MissingSymbolError{Symbol: Symbol(b), Offset: offset}
		}
		if err := w.WriteBits(hc.Bits, hc.Size); err != nil {
			return EncodedStream{}, fmt.Errorf("failed to write code for offset %d: %w", offset, err)
		}
		numBits += uint64(hc.Size)
	}

	skipped, err := w.Align()
	if err != nil {
		return EncodedStream{}, fmt.Errorf("failed to flush final byte: %w", err)
	}
	if err := w.Close(); err != nil {
		return EncodedStream{}, fmt.Errorf("failed to flush final byte: %w", err)
	}

	padding := paddingFor(numBits)
	assert.Assertf(skipped == padding, "bit writer skipped %d bits, expected %d", skipped, padding)
	assert.Assertf(uint64(buf.Len())*8 == numBits+uint64(padding), "packed %d bytes for %d bits", buf.Len(), numBits)

	out := buf.Bytes()
	if out == nil {
		out = []byte{}
	}
	return EncodedStream{
		Padding:  padding,
		Codebook: cb,
		Data:     out,
	}, nil
}

// Decode reverses Encode.  The last padding bits of data are ignored.  The
// remaining bits are matched against cb from left to right, emitting a symbol
// each time the bits read so far exactly equal a code.
//
// A *DecodeError is returned if padding is out of range, if cb is empty but
// there are bits to decode, if cb is not prefix-free, if some run of bits is
// not a prefix of any code, or if the data ends in the middle of a code.
func Decode(padding uint8, cb Codebook, data []byte) ([]byte, error) {
	if padding > 7 {
		return nil, &DecodeError{Reason: fmt.Sprintf("padding %d out of range 0 .. 7", padding)}
	}
	totalBits := uint64(len(data)) * 8
	if uint64(padding) > totalBits {
		return nil, &DecodeError{Reason: fmt.Sprintf("padding %d exceeds %d bits of data", padding, totalBits)}
	}

	numBits := totalBits - uint64(padding)
	if numBits == 0 {
		return []byte{}, nil
	}
	if len(cb) == 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("empty codebook with %d bits of data", numBits)}
	}

	d, err := NewDecoder(cb)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid codebook", Err: err}
	}

	r := bitio.NewReader(bytes.NewReader(data))
	out := make([]byte, 0, numBits/uint64(d.MaxSize())+1)

	var hc Code
	var start uint64
	for offset := uint64(0); offset < numBits; offset++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, &DecodeError{BitOffset: offset, Reason: "short read", Err: err}
		}

		hc = hc.Append(bit)
		symbol, _, maxSize := d.Decode(hc)
		switch {
		case symbol != InvalidSymbol:
			out = append(out, byte(symbol))
			hc = Code{}
			start = offset + 1
		case maxSize == 0:
			return nil, &DecodeError{BitOffset: start, Reason: fmt.Sprintf("bits %s do not match any code", hc)}
		}
	}

	if hc.Size != 0 {
		return nil, &DecodeError{BitOffset: start, Reason: fmt.Sprintf("data ends inside code, with residual bits %s", hc)}
	}
	return out, nil
}
