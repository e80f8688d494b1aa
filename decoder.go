package smh

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Decoder maps Huffman codes, and every proper prefix of them, back to
// symbols.  A lookup of a proper prefix reports how many more bits may be
// needed; a lookup of a bit string that is not a prefix of any code fails
// outright, so corrupt input is detected at the first bad bit.
type Decoder struct {
	table      map[Code]decoderData
	numSymbols int
	minSize    byte
	maxSize    byte
}

// NewDecoder is a convenience function that constructs a Decoder from cb.
func NewDecoder(cb Codebook) (Decoder, error) {
	var d Decoder
	err := d.Init(cb)
	return d, err
}

// Init initializes this Decoder from a codebook.
//
// The codebook must be prefix-free: no code may equal or be a prefix of
// another.  Codes must be between 1 and 64 bits long.  The code need not be
// complete; a single-symbol codebook such as {'a': "0"} is permitted, and a
// bit string starting with "1" is then rejected by Decode.
func (d *Decoder) Init(cb Codebook) error {
	*d = Decoder{}
	if len(cb) == 0 {
		return nil
	}

	numSymbols := uint32(len(cb))

	// len(table) is approximately n×log2(n) when filled.
	numTableSlots := numSymbols * log2uint32(numSymbols)

	table := make(map[Code]decoderData, numTableSlots)
	var minSize, maxSize byte
	for index, symbol := range cb.Symbols() {
		hc := cb[symbol]

		if !symbol.IsValid() {
			return fmt.Errorf("invalid symbol %d in codebook", symbol)
		}
		if hc.Size == 0 || hc.Size > maxBitsPerCode {
			return fmt.Errorf("invalid bit length for symbol %d: got %d, want 1 .. %d", symbol, hc.Size, maxBitsPerCode)
		}
		if hc.Size < maxBitsPerCode && (hc.Bits>>hc.Size) != 0 {
			return fmt.Errorf("invalid code for symbol %d: bits %#x do not fit in %d bits", symbol, hc.Bits, hc.Size)
		}

		if dd, found := table[hc]; found {
			if dd.symbol != InvalidSymbol {
				return fmt.Errorf("codebook is not prefix-free: symbols %d and %d share code %s", dd.symbol, symbol, hc)
			}
			return fmt.Errorf("codebook is not prefix-free: code %s for symbol %d is a prefix of another code", hc, symbol)
		}
		for prefix := hc.Parent(); prefix.Size != 0; prefix = prefix.Parent() {
			if dd, found := table[prefix]; found && dd.symbol != InvalidSymbol {
				return fmt.Errorf("codebook is not prefix-free: code %s for symbol %d is a prefix of code %s for symbol %d", prefix, dd.symbol, hc, symbol)
			}
		}

		if index == 0 || minSize > hc.Size {
			minSize = hc.Size
		}
		if index == 0 || maxSize < hc.Size {
			maxSize = hc.Size
		}

		fillTable(table, symbol, hc)
	}

	*d = Decoder{
		table:      table,
		numSymbols: int(numSymbols),
		minSize:    minSize,
		maxSize:    maxSize,
	}
	return nil
}

// Decode attempts to decode a Huffman code into a Symbol.
//
// If the Decode is completely successful, symbol >= 0 and minSize == maxSize.
//
// If the Decode fails due to insufficient bits, symbol == InvalidSymbol and at
// least (minSize - hc.Size) additional bits are required to decode this
// symbol.  No more than (maxSize - hc.Size) additional bits will be required.
//
// If the Decode fails due to unreasonable input, symbol == InvalidSymbol and
// minSize == maxSize == 0.
func (d Decoder) Decode(hc Code) (symbol Symbol, minSize byte, maxSize byte) {
	dd, found := d.table[hc]
	if !found {
		return InvalidSymbol, 0, 0
	}
	return dd.symbol, dd.minSize, dd.maxSize
}

// Len is the number of symbols in the code.
func (d Decoder) Len() int {
	return d.numSymbols
}

// MinSize is the bit length of the shortest legal code.
func (d Decoder) MinSize() byte {
	return d.minSize
}

// MaxSize is the bit length of the longest legal code.
func (d Decoder) MaxSize() byte {
	return d.maxSize
}

// Dump writes a programmer-readable debugging dump of the Decoder's current
// state to the given writer.
func (d Decoder) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Decoder{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", d.minSize)
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", d.maxSize)
	keys := make(byCode, 0, len(d.table))
	for hc := range d.table {
		keys = append(keys, hc)
	}
	keys.Sort()
	for _, hc := range keys {
		dd := d.table[hc]
		fmt.Fprintf(&buf, "\tDecode(%s) = {%d, %d, %d}\n", hc, dd.symbol, dd.minSize, dd.maxSize)
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

type decoderData struct {
	symbol  Symbol
	minSize byte
	maxSize byte
}

func fillTable(table map[Code]decoderData, symbol Symbol, hc Code) {
	dd := decoderData{symbol, hc.Size, hc.Size}
	table[hc] = dd

	for hc.Size != 0 {
		// For each hc "...xxxa", find the sibling "...xxxA" where A = NOT a.
		// Merge the dd's from both into ddNew, the data for their parent.

		ddNew := decoderData{InvalidSymbol, dd.minSize, dd.maxSize}
		if ddSibling, found := table[hc.Sibling()]; found {
			if ddNew.minSize > ddSibling.minSize {
				ddNew.minSize = ddSibling.minSize
			}
			if ddNew.maxSize < ddSibling.maxSize {
				ddNew.maxSize = ddSibling.maxSize
			}
		}

		hc = hc.Parent()

		// If table[hc] already equals ddNew, we can stop recursing.

		if ddOld, found := table[hc]; found && ddOld == ddNew {
			break
		}

		table[hc] = ddNew
		dd = ddNew
	}
}

// type byCode {{{

type byCode []Code

func (list byCode) Sort() {
	sort.Sort(list)
}

func (list byCode) Len() int {
	return len(list)
}

func (list byCode) Swap(i, j int) {
	list[i], list[j] = list[j], list[i]
}

func (list byCode) Less(i, j int) bool {
	a, b := list[i], list[j]
	as, ab := a.Size, a.Bits
	bs, bb := b.Size, b.Bits
	if as != bs {
		return as < bs
	}
	return ab < bb
}

var _ sort.Interface = byCode(nil)

// }}}
