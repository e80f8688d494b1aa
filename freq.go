package smh

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// FrequencyTable counts the number of occurrences of each byte value.  The
// zero value is an empty table, ready to use.
type FrequencyTable struct {
	counts   [NumSymbols]uint64
	total    uint64
	distinct int
}

// BuildFrequencyTable counts the bytes of data in a single pass.
func BuildFrequencyTable(data []byte) FrequencyTable {
	var ft FrequencyTable
	ft.Add(data)
	return ft
}

// Add counts the bytes of data into this table.
func (ft *FrequencyTable) Add(data []byte) {
	for _, b := range data {
		if ft.counts[b] == 0 {
			ft.distinct++
		}
		ft.counts[b]++
	}
	ft.total += uint64(len(data))
}

// Count returns the number of occurrences of symbol.
func (ft FrequencyTable) Count(symbol Symbol) uint64 {
	if !symbol.IsValid() {
		return 0
	}
	return ft.counts[symbol]
}

// Len returns the number of distinct symbols with a non-zero count.
func (ft FrequencyTable) Len() int {
	return ft.distinct
}

// Total returns the sum of all counts, i.e. the length of the counted input.
func (ft FrequencyTable) Total() uint64 {
	return ft.total
}

// Symbols returns the symbols with a non-zero count, in ascending order.
func (ft FrequencyTable) Symbols() []Symbol {
	out := make([]Symbol, 0, ft.distinct)
	for symbol := Symbol(0); symbol <= MaxSymbol; symbol++ {
		if ft.counts[symbol] != 0 {
			out = append(out, symbol)
		}
	}
	return out
}

// Dump writes a human-readable listing of the table to the given writer,
// one symbol per line.
func (ft FrequencyTable) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "FrequencyTable{total=%d, distinct=%d}\n", ft.total, ft.distinct)
	for _, symbol := range ft.Symbols() {
		fmt.Fprintf(&buf, "\t%3d %-6s %d\n", symbol, symbolLabel(symbol), ft.counts[symbol])
	}
	return buf.WriteTo(w)
}

func symbolLabel(symbol Symbol) string {
	if symbol >= 0x20 && symbol < 0x7f {
		return strconv.QuoteRune(rune(symbol))
	}
	return fmt.Sprintf("0x%02x", int32(symbol))
}
