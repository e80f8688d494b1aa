package smh

import (
	"fmt"
	"strconv"
)

// maxBitsPerCode is the longest Code that can be represented.
const maxBitsPerCode = 64

// Code represents a sequence of bits.
type Code struct {
	// Size holds the number of valid bits.
	Size byte

	// Bits holds the actual values of the bits.  The most significant of
	// the Size low bits of Bits is the first bit.
	Bits uint64
}

// MakeCode is a convenience function that constructs a Code.
func MakeCode(size byte, bits uint64) Code {
	return Code{Size: size, Bits: bits}
}

// ParseCode parses a Code from its text form, a string of '0' and '1'
// characters with the first bit first.
func ParseCode(text string) (Code, error) {
	if len(text) == 0 {
		return Code{}, fmt.Errorf("invalid code: empty bit string")
	}
	if len(text) > maxBitsPerCode {
		return Code{}, fmt.Errorf("invalid code: got %d bits, max %d", len(text), maxBitsPerCode)
	}
	var hc Code
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '0':
			hc = hc.Append(false)
		case '1':
			hc = hc.Append(true)
		default:
			return Code{}, fmt.Errorf("invalid code %q: unexpected character %q at index %d", text, text[i], i)
		}
	}
	return hc, nil
}

// Append returns the Code that is this Code followed by one more bit.
func (hc Code) Append(bit bool) Code {
	hc.Size++
	hc.Bits <<= 1
	if bit {
		hc.Bits |= 1
	}
	return hc
}

// Parent returns the Code with the last bit removed.  The Parent of the
// empty Code is the empty Code.
func (hc Code) Parent() Code {
	if hc.Size == 0 {
		return hc
	}
	return Code{Size: hc.Size - 1, Bits: hc.Bits >> 1}
}

// Sibling returns the Code with the last bit flipped.
func (hc Code) Sibling() Code {
	if hc.Size == 0 {
		return hc
	}
	hc.Bits ^= 1
	return hc
}

// Text returns the bits of this Code as an unquoted string of '0' and '1'
// characters.
func (hc Code) Text() string {
	if hc.Size == 0 {
		return ""
	}
	buf := make([]byte, hc.Size)
	for i := byte(0); i < hc.Size; i++ {
		if (hc.Bits>>(hc.Size-1-i))&1 != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// String returns the string representation of this Code.
func (hc Code) String() string {
	return strconv.Quote(hc.Text())
}

// MarshalText fulfills encoding.TextMarshaler.  The empty Code has no text
// form.
func (hc Code) MarshalText() ([]byte, error) {
	if hc.Size == 0 {
		return nil, fmt.Errorf("invalid code: empty bit string")
	}
	return []byte(hc.Text()), nil
}

// UnmarshalText fulfills encoding.TextUnmarshaler.
func (hc *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*hc = parsed
	return nil
}

var _ fmt.Stringer = Code{}
