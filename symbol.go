package smh

// Symbol represents a byte value being coded.  Negative symbols are not
// valid.
type Symbol int32

// NumSymbols is the size of the byte alphabet.
const NumSymbols = 256

// MaxSymbol is the maximum valid symbol.
const MaxSymbol = Symbol(NumSymbols - 1)

// InvalidSymbol is returned by some functions to clearly indicate that no
// symbol is being returned.
const InvalidSymbol = Symbol(-1)

// IsValid returns true iff this Symbol is a byte value.
func (sym Symbol) IsValid() bool {
	return sym >= 0 && sym <= MaxSymbol
}
