package smh

import (
	"bytes"
	"container/heap"
	"fmt"
	"io"
	"sort"

	"github.com/chronos-tachyon/assert"
)

// Encoder builds a Huffman code for the byte alphabet from a FrequencyTable.
type Encoder struct {
	codes   []Code
	minSize byte
	maxSize byte
}

// Init initializes this Encoder from the given frequency table.  Every symbol
// with a non-zero count receives a code; all other symbols are left uncoded.
//
// The code lengths come from a classic Huffman merge: one leaf per symbol,
// repeatedly merging the two lightest nodes.  Ties between nodes of equal
// weight are broken by creation order, so leaves (created in ascending symbol
// order) come before any merged node of the same weight, and older merged
// nodes come before newer ones.  The code values are then assigned
// canonically from those lengths, per RFC 1951 Section 3.2.2.
//
// A table with exactly one symbol yields the 1-bit code "0" for it.  An empty
// table yields an empty code.
func (e *Encoder) Init(ft FrequencyTable) {
	codes := make([]Code, NumSymbols)
	symbols := ft.Symbols()

	var minSize, maxSize byte
	switch len(symbols) {
	case 0:
		// pass
	case 1:
		minSize, maxSize = 1, 1
		codes[symbols[0]] = MakeCode(1, 0)
	default:
		firstPass(codes, ft, symbols, &minSize, &maxSize)
		secondPass(codes)
	}

	*e = Encoder{
		codes:   codes,
		minSize: minSize,
		maxSize: maxSize,
	}
}

// BuildCodebook is a convenience function that runs an Encoder over ft and
// returns the resulting Codebook.
func BuildCodebook(ft FrequencyTable) Codebook {
	var e Encoder
	e.Init(ft)
	return e.Codebook()
}

// Encode returns the Huffman code for a Symbol.  The result has Size 0 if
// the symbol has no code.
func (e Encoder) Encode(symbol Symbol) Code {
	if !symbol.IsValid() || len(e.codes) == 0 {
		return Code{}
	}
	return e.codes[symbol]
}

// MinSize is the bit length of the shortest legal code.
func (e Encoder) MinSize() byte {
	return e.minSize
}

// MaxSize is the bit length of the longest legal code.
func (e Encoder) MaxSize() byte {
	return e.maxSize
}

// SizeBySymbol returns an array containing the bit length for each Symbol in
// the alphabet, with 0 for symbols that have no code.
func (e Encoder) SizeBySymbol() []byte {
	out := make([]byte, NumSymbols)
	for symbol, hc := range e.codes {
		out[symbol] = hc.Size
	}
	return out
}

// Codebook returns the symbol→code mapping for every coded symbol.
func (e Encoder) Codebook() Codebook {
	cb := make(Codebook)
	for symbol := Symbol(0); symbol <= MaxSymbol; symbol++ {
		if hc := e.Encode(symbol); hc.Size != 0 {
			cb[symbol] = hc
		}
	}
	return cb
}

// Dump writes a programmer-readable debugging dump of the Encoder's current
// state to the given writer.  Uncoded symbols are omitted.
func (e Encoder) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Encoder{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", e.minSize)
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", e.maxSize)
	for symbol := Symbol(0); symbol <= MaxSymbol; symbol++ {
		if hc := e.Encode(symbol); hc.Size != 0 {
			fmt.Fprintf(&buf, "\tEncode(%d) = %s\n", symbol, hc)
		}
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// firstPass computes the "first pass" of Huffman code assignment, which is to
// determine and populate codes[Symbol].Size.  We also compute minSize and
// maxSize while we're here.
func firstPass(codes []Code, ft FrequencyTable, symbols []Symbol, minSize *byte, maxSize *byte) {
	nodeLen := uint32(len(symbols))

	// Step 1: build a minheap of leaves.  The arena holds every node ever
	// created; a node's arena index doubles as its creation order.

	h := nodeHeap{
		nodes: make([]mergeNode, 0, 2*nodeLen-1),
		list:  make([]int32, 0, nodeLen),
	}
	for _, symbol := range symbols {
		leaf := h.add(mergeNode{weight: ft.Count(symbol), symbol: symbol, left: -1, right: -1})
		h.list = append(h.list, leaf)
	}
	h.Init()

	// Step 2: pop the two lightest nodes, merge them, push the result.
	// The first popped node becomes the '0' child.

	for h.Len() > 1 {
		a := heap.Pop(&h).(int32)
		b := heap.Pop(&h).(int32)
		weight := h.nodes[a].weight + h.nodes[b].weight
		index := h.add(mergeNode{weight: weight, symbol: InvalidSymbol, left: a, right: b})
		heap.Push(&h, index)
	}

	root := heap.Pop(&h).(int32)
	assert.Assertf(h.nodes[root].weight == ft.Total(), "root weight %d != total count %d", h.nodes[root].weight, ft.Total())
	assert.Assertf(len(h.nodes) == int(2*nodeLen-1), "built %d nodes, expected %d", len(h.nodes), 2*nodeLen-1)

	// Step 3: use a stack to walk the tree.
	//
	// The current stack depth tells us how many bits are in the code for
	// each leaf we reach.  Only merged nodes are pushed onto the stack.
	//
	// We use stackItem.x to keep track of where we are in the tree walk:
	//   x=0 → We just arrived at stackItem for the first time
	//   x=1 → We have already processed the left child
	//   x=2 → We have already processed both children

	type stackItem struct {
		node int32
		x    byte
	}

	stack := make([]stackItem, 0, log2uint32(nodeLen)+1)
	var hasMinMax bool

	processChild := func(child int32) {
		node := h.nodes[child]
		if node.symbol == InvalidSymbol {
			stack = append(stack, stackItem{node: child})
			return
		}

		assert.Assertf(len(stack) <= maxBitsPerCode, "code for symbol %d has %d bits, max %d", node.symbol, len(stack), maxBitsPerCode)
		size := byte(len(stack))
		codes[node.symbol].Size = size
		if !hasMinMax {
			hasMinMax = true
			*minSize = size
			*maxSize = size
		} else if *minSize > size {
			*minSize = size
		} else if *maxSize < size {
			*maxSize = size
		}
	}

	stack = append(stack, stackItem{node: root})
	for len(stack) != 0 {
		top := &stack[len(stack)-1]
		x := top.x
		top.x++
		switch x {
		case 0:
			processChild(h.nodes[top.node].left)
		case 1:
			processChild(h.nodes[top.node].right)
		case 2:
			stack = stack[:len(stack)-1]
		}
	}
}

// secondPass computes the "second pass" of Huffman code assignment, which
// involves transforming the (Symbol, codes[Symbol].Size) assignments from
// phase one into a canonical Huffman code written back to codes[Symbol].Bits.
func secondPass(codes []Code) {
	// Step 1: sort the symbols by (codes[Symbol].Size, Symbol) ascending.

	sorted := make(bySize, 0, len(codes))
	for symbol, hc := range codes {
		if hc.Size == 0 {
			continue
		}
		sorted = append(sorted, symbolAndSize{Symbol(symbol), hc.Size})
	}
	sorted.Sort()

	// Step 2: assign the codes sequentially, per the algorithm detailed at
	// <https://en.wikipedia.org/w/index.php?title=Canonical_Huffman_code&oldid=999983137>.

	lastSize := sorted[0].size
	nextCode := uint64(0)
	for _, item := range sorted {
		if item.size > lastSize {
			nextCode <<= (item.size - lastSize)
			lastSize = item.size
		}
		codes[item.symbol].Bits = nextCode
		nextCode++
	}
}

// type mergeNode + type nodeHeap {{{

type mergeNode struct {
	weight uint64
	symbol Symbol
	left   int32
	right  int32
}

type nodeHeap struct {
	nodes []mergeNode
	list  []int32
}

// add appends node to the arena and returns its index.
func (h *nodeHeap) add(node mergeNode) int32 {
	index := int32(len(h.nodes))
	h.nodes = append(h.nodes, node)
	return index
}

func (h *nodeHeap) Init() {
	heap.Init(h)
}

func (h *nodeHeap) Len() int {
	return len(h.list)
}

func (h *nodeHeap) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.list[i], h.list[j]
	aw, bw := h.nodes[a].weight, h.nodes[b].weight
	if aw != bw {
		return aw < bw
	}
	return a < b
}

func (h *nodeHeap) Push(x interface{}) {
	h.list = append(h.list, x.(int32))
}

func (h *nodeHeap) Pop() interface{} {
	last := uint(len(h.list)) - 1
	x := h.list[last]
	h.list = h.list[:last]
	return x
}

var _ heap.Interface = (*nodeHeap)(nil)

// }}}

// type symbolAndSize + type bySize {{{

type symbolAndSize struct {
	symbol Symbol
	size   byte
}

type bySize []symbolAndSize

func (list bySize) Len() int {
	return len(list)
}

func (list bySize) Swap(i, j int) {
	list[i], list[j] = list[j], list[i]
}

func (list bySize) Less(i, j int) bool {
	a, b := list[i], list[j]
	ay, ai := a.symbol, a.size
	by, bi := b.symbol, b.size
	if ai != bi {
		return ai < bi
	}
	return ay < by
}

func (list bySize) Sort() {
	sort.Sort(list)
}

var _ sort.Interface = bySize(nil)

// }}}
