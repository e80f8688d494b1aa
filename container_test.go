package smh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainer_MarshalBinary(t *testing.T) {
	c, err := Compress([]byte{0x61, 0x61, 0x62})
	require.NoError(t, err)

	codebookJSON := `{"97": "0", "98": "1"}`
	expect := []byte("SMH1")
	expect = append(expect, 5)
	expect = binary.LittleEndian.AppendUint16(expect, uint16(len(codebookJSON)))
	expect = append(expect, codebookJSON...)
	expect = append(expect, 0x20)

	actual, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, expect, actual)

	var parsed Container
	require.NoError(t, parsed.UnmarshalBinary(actual))
	require.Equal(t, c, parsed)

	data, err := Decompress(parsed)
	require.NoError(t, err)
	require.Equal(t, []byte{0x61, 0x61, 0x62}, data)
}

func TestContainer_Empty(t *testing.T) {
	c, err := Compress(nil)
	require.NoError(t, err)

	raw, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{'S', 'M', 'H', '1', 0, 2, 0, '{', '}'}, raw)

	var parsed Container
	require.NoError(t, parsed.UnmarshalBinary(raw))
	require.Empty(t, parsed.Codebook)
	require.Empty(t, parsed.Data)

	data, err := Decompress(parsed)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestContainer_ZeroLengthCodebook(t *testing.T) {
	raw := []byte{'S', 'M', 'H', '1', 0, 0, 0}

	var c Container
	require.NoError(t, c.UnmarshalBinary(raw))
	require.NotNil(t, c.Codebook)
	require.Empty(t, c.Codebook)
	require.Empty(t, c.Data)

	data, err := Decompress(c)
	require.NoError(t, err)
	require.Empty(t, data)

	// Data with no codebook to decode it with parses, but cannot be decoded.
	require.NoError(t, c.UnmarshalBinary(append(raw, 0xff)))
	_, err = Decompress(c)
	var de *DecodeError
	require.True(t, errors.As(err, &de), "expected *DecodeError, got %T: %v", err, err)
}

func TestContainer_WriteToReadFrom(t *testing.T) {
	input := []byte("she sells sea shells by the sea shore")
	c, err := Compress(input)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	var parsed Container
	m, err := parsed.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, n, m)
	require.Equal(t, c.Padding, parsed.Padding)
	require.Equal(t, c.Codebook, parsed.Codebook)
	require.Equal(t, c.Data, parsed.Data)
}

func TestContainer_ForeignKeyOrder(t *testing.T) {
	// Key order and whitespace are free in the codebook; this is "aab"
	// with the codes the other way around, keys unsorted and compact.
	codebookJSON := `{"98":"0","97":"1"}`
	raw := []byte("SMH1")
	raw = append(raw, 5)
	raw = binary.LittleEndian.AppendUint16(raw, uint16(len(codebookJSON)))
	raw = append(raw, codebookJSON...)
	raw = append(raw, 0xc0)

	var c Container
	require.NoError(t, c.UnmarshalBinary(raw))
	require.Equal(t, Codebook{'a': MakeCode(1, 1), 'b': MakeCode(1, 0)}, c.Codebook)

	data, err := Decompress(c)
	require.NoError(t, err)
	require.Equal(t, []byte("aab"), data)
}

func TestContainer_UnmarshalErrors(t *testing.T) {
	header := func(padding uint8, codebook string) []byte {
		raw := []byte("SMH1")
		raw = append(raw, padding)
		raw = binary.LittleEndian.AppendUint16(raw, uint16(len(codebook)))
		return append(raw, codebook...)
	}

	testData := map[string][]byte{
		"empty":            {},
		"short-magic":      []byte("SM"),
		"bad-magic":        append([]byte("SMH2"), 0, 0, 0),
		"short-header":     []byte("SMH1\x00\x02"),
		"padding-range":    append(header(8, `{"97": "0"}`), 0x00),
		"short-codebook":   header(0, `{"97": "0"}`)[:10],
		"bad-json":         header(0, `{"97": 0}`),
		"bad-symbol":       header(0, `{"256": "0"}`),
		"bad-code":         header(0, `{"97": "02"}`),
		"duplicate-symbol": header(0, `{"97": "0", "097": "1"}`),
		"duplicate-key":    header(0, `{"97": "0", "97": "1"}`),
		"null-codebook":    header(0, `null`),
		"array-codebook":   header(0, `[]`),
		"not-prefix-free":  append(header(0, `{"97": "0", "98": "01"}`), 0x00),
		"padding-no-data":  header(3, `{"97": "0"}`),
		"empty-code":       header(0, `{"97": ""}`),
	}
	for name, raw := range testData {
		t.Run(name, func(t *testing.T) {
			var c Container
			err := c.UnmarshalBinary(raw)
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "expected *FormatError, got %T: %v", err, err)
		})
	}
}

func TestContainer_MarshalErrors(t *testing.T) {
	_, err := Container{Padding: 8}.MarshalBinary()
	var fe *FormatError
	require.True(t, errors.As(err, &fe), "expected *FormatError, got %T: %v", err, err)

	_, err = Container{Codebook: Codebook{'a': Code{}}}.MarshalBinary()
	require.Error(t, err)
}

func TestCodebookTooLargeError(t *testing.T) {
	err := &CodebookTooLargeError{Size: 70000}
	require.Equal(t, "serialized codebook is too large: got 70000 bytes, max 65535", err.Error())
}
