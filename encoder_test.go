package smh

import (
	"bytes"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// tableFromCounts builds a FrequencyTable whose symbol i has count counts[i],
// without materializing the input.
func tableFromCounts(counts ...uint64) FrequencyTable {
	var ft FrequencyTable
	for symbol, count := range counts {
		if count == 0 {
			continue
		}
		ft.counts[symbol] = count
		ft.total += count
		ft.distinct++
	}
	return ft
}

// referenceCost computes the optimal total code length for the given
// weights: the sum of all merged weights of a Huffman merge.
func referenceCost(weights []uint64) uint64 {
	list := make([]uint64, 0, len(weights))
	for _, w := range weights {
		if w != 0 {
			list = append(list, w)
		}
	}
	var cost uint64
	for len(list) > 1 {
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		sum := list[0] + list[1]
		cost += sum
		list = append(list[2:], sum)
	}
	return cost
}

func isPrefixFree(cb Codebook) bool {
	for a, ca := range cb {
		for b, cbb := range cb {
			if a == b {
				continue
			}
			if strings.HasPrefix(cbb.Text(), ca.Text()) {
				return false
			}
		}
	}
	return true
}

func TestEncoder(t *testing.T) {
	var e Encoder
	e.Init(tableFromCounts(5, 9, 12, 13, 16, 45))

	expectDump := strings.Join([]string{
		"Encoder{\n",
		"\tMinSize() = 1\n",
		"\tMaxSize() = 4\n",
		"\tEncode(0) = \"1110\"\n",
		"\tEncode(1) = \"1111\"\n",
		"\tEncode(2) = \"100\"\n",
		"\tEncode(3) = \"101\"\n",
		"\tEncode(4) = \"110\"\n",
		"\tEncode(5) = \"0\"\n",
		"}\n",
	}, "")

	var buf strings.Builder
	_, _ = e.Dump(&buf)
	actualDump := buf.String()

	if expectDump != actualDump {
		t.Errorf("wrong output:\n\texpect: %s\n\tactual: %s", expectDump, actualDump)
	}

	actualSizes := e.SizeBySymbol()
	expectSizes := make([]byte, NumSymbols)
	copy(expectSizes, []byte{4, 4, 3, 3, 3, 1})
	if !bytes.Equal(expectSizes, actualSizes) {
		t.Errorf("wrong sizes:\n\texpect: %#v\n\tactual: %#v", expectSizes, actualSizes)
	}
}

func TestEncoder_Encode(t *testing.T) {
	var e Encoder
	e.Init(tableFromCounts(5, 9, 12, 13, 16, 45))

	type testRow struct {
		symbol Symbol
		expect Code
	}

	testData := [...]testRow{
		{symbol: 0, expect: MakeCode(4, 0xe)},
		{symbol: 2, expect: MakeCode(3, 0x4)},
		{symbol: 5, expect: MakeCode(1, 0x0)},
		{symbol: 6, expect: Code{}},
		{symbol: MaxSymbol, expect: Code{}},
		{symbol: InvalidSymbol, expect: Code{}},
		{symbol: NumSymbols, expect: Code{}},
	}
	for _, row := range testData {
		actual := e.Encode(row.symbol)
		if actual != row.expect {
			t.Errorf("Encode(%d): expect %s, actual %s", row.symbol, row.expect, actual)
		}
	}

	var zero Encoder
	if actual := zero.Encode(5); actual != (Code{}) {
		t.Errorf("Encode on uninitialized Encoder: expect empty code, actual %s", actual)
	}
	if cb := zero.Codebook(); len(cb) != 0 {
		t.Errorf("Codebook on uninitialized Encoder: expect empty, actual %v", cb)
	}
}

func TestEncoder_Degenerate(t *testing.T) {
	type testRow struct {
		name   string
		ft     FrequencyTable
		expect Codebook
	}

	testData := [...]testRow{
		{name: "empty", ft: FrequencyTable{}, expect: Codebook{}},
		{name: "one", ft: BuildFrequencyTable([]byte("zzzz")), expect: Codebook{'z': MakeCode(1, 0)}},
		{name: "two", ft: BuildFrequencyTable([]byte("aab")), expect: Codebook{'a': MakeCode(1, 0), 'b': MakeCode(1, 1)}},
		{name: "two-reversed", ft: BuildFrequencyTable([]byte("abb")), expect: Codebook{'a': MakeCode(1, 0), 'b': MakeCode(1, 1)}},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			actual := BuildCodebook(row.ft)
			if len(actual) != len(row.expect) {
				t.Fatalf("wrong codebook size: expect %d, actual %d", len(row.expect), len(actual))
			}
			for symbol, hc := range row.expect {
				if actual[symbol] != hc {
					t.Errorf("wrong code for symbol %d: expect %s, actual %s", symbol, hc, actual[symbol])
				}
			}
		})
	}
}

func TestEncoder_TieBreak(t *testing.T) {
	// All weights equal: every symbol gets a 2-bit code, assigned in
	// ascending symbol order.
	cb := BuildCodebook(BuildFrequencyTable([]byte("dcba")))
	require.Equal(t, Codebook{
		'a': MakeCode(2, 0),
		'b': MakeCode(2, 1),
		'c': MakeCode(2, 2),
		'd': MakeCode(2, 3),
	}, cb)

	// Leaves win ties against merged nodes: 'a'+'b' merge to weight 2,
	// which ties with both 'c' and 'd'; the leaves are popped first and
	// paired together, so every symbol ends up at depth 2.  Preferring the
	// merged node would have produced lengths {3, 3, 2, 1} instead.
	var e Encoder
	e.Init(tableFromCounts(1, 1, 2, 2))
	require.Equal(t, []byte{2, 2, 2, 2}, e.SizeBySymbol()[:4])
}

func TestEncoder_Optimal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		counts := make([]uint64, NumSymbols)
		numSymbols := 2 + rng.Intn(NumSymbols-1)
		for i := 0; i < numSymbols; i++ {
			counts[rng.Intn(NumSymbols)] += uint64(1 + rng.Intn(1000))
		}
		ft := tableFromCounts(counts...)
		if ft.Len() < 2 {
			continue
		}

		cb := BuildCodebook(ft)
		require.Len(t, cb, ft.Len())
		require.True(t, isPrefixFree(cb), "trial %d: codebook is not prefix-free", trial)
		require.NoError(t, cb.Validate())
		require.Equal(t, referenceCost(counts), cb.Cost(ft), "trial %d", trial)
	}
}

func TestEncoder_Deterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, again and again")
	ft := BuildFrequencyTable(data)

	var e1, e2 Encoder
	e1.Init(ft)
	e2.Init(ft)
	require.Equal(t, e1.SizeBySymbol(), e2.SizeBySymbol())
	require.Equal(t, e1.Codebook(), e2.Codebook())
}

func TestEncoder_LongCodes(t *testing.T) {
	// Powers of two produce a maximally skewed tree: n symbols yield a
	// longest code of n-1 bits.
	counts := make([]uint64, 64)
	counts[0] = 1
	for i := 1; i < len(counts); i++ {
		counts[i] = 1 << (i - 1)
	}

	var e Encoder
	e.Init(tableFromCounts(counts...))
	require.Equal(t, byte(1), e.MinSize())
	require.Equal(t, byte(63), e.MaxSize())

	cb := e.Codebook()
	require.NoError(t, cb.Validate())

	raw, err := cb.MarshalJSON()
	require.NoError(t, err)
	var parsed Codebook
	require.NoError(t, parsed.UnmarshalJSON(raw))
	require.Equal(t, cb, parsed)
}
