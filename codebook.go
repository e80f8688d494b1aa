package smh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Codebook maps each coded symbol to its Huffman code.
type Codebook map[Symbol]Code

// Symbols returns the coded symbols in ascending order.
func (cb Codebook) Symbols() []Symbol {
	out := make([]Symbol, 0, len(cb))
	for symbol := range cb {
		out = append(out, symbol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate returns an error if any symbol is out of range, any code is empty
// or too long, or any code is a prefix of another.
func (cb Codebook) Validate() error {
	var d Decoder
	return d.Init(cb)
}

// Cost returns the number of bits needed to encode an input with the given
// frequencies, i.e. the sum over all symbols of count × code length.  Symbols
// without a code contribute nothing.
func (cb Codebook) Cost(ft FrequencyTable) uint64 {
	var sum uint64
	for symbol, hc := range cb {
		sum += ft.Count(symbol) * uint64(hc.Size)
	}
	return sum
}

// lookupTable flattens the codebook into a table indexed by byte value.
// Entries with Size 0 have no code.
func (cb Codebook) lookupTable() *[NumSymbols]Code {
	var table [NumSymbols]Code
	for symbol, hc := range cb {
		if symbol.IsValid() {
			table[symbol] = hc
		}
	}
	return &table
}

// MarshalJSON renders the codebook as a JSON object mapping decimal symbol
// values to bit strings, e.g. {"97": "0", "98": "1"}.  Keys appear in
// ascending numeric order so that equal codebooks serialize identically.
//
// Note that json.Marshal compacts the output of this method; call it
// directly to get the spaced form that the container stores.
func (cb Codebook) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for index, symbol := range cb.Symbols() {
		hc := cb[symbol]
		if !symbol.IsValid() {
			return nil, fmt.Errorf("invalid symbol %d in codebook", symbol)
		}
		text, err := hc.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("invalid code for symbol %d in codebook: %w", symbol, err)
		}
		if index > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "\"%d\": \"%s\"", symbol, text)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses the format written by MarshalJSON.  The top-level
// value must be an object, and no symbol may appear twice, whether spelled
// identically or not.  It does not check that the result is prefix-free; see
// Validate.
func (cb *Codebook) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("codebook must be a JSON object, got %v", tok)
	}

	out := make(Codebook)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid codebook key %v", tok)
		}

		u64, err := strconv.ParseUint(key, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid codebook symbol %q: %w", key, err)
		}
		symbol := Symbol(u64)
		if _, dupe := out[symbol]; dupe {
			return fmt.Errorf("duplicate codebook symbol %d", symbol)
		}

		var hc Code
		if err := dec.Decode(&hc); err != nil {
			return fmt.Errorf("invalid codebook entry for symbol %d: %w", symbol, err)
		}
		if hc.Size == 0 {
			return fmt.Errorf("invalid codebook entry for symbol %d: missing code", symbol)
		}
		out[symbol] = hc
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after codebook")
	}

	*cb = out
	return nil
}

var _ json.Marshaler = Codebook(nil)
var _ json.Unmarshaler = (*Codebook)(nil)
