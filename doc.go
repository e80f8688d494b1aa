// Package smh implements a byte-oriented Huffman codec and the "SMH1"
// container format that stores its output.
//
// Compression counts byte frequencies (FrequencyTable), builds an optimal
// prefix-free code from them (Encoder, Codebook), packs the coded bits most
// significant bit first (Encode), and stores the padding count, codebook, and
// packed bytes in a Container.  Decompression reverses the process (Decode).
//
// Container layout, little-endian:
//
//	offset  size  field
//	0       4     magic tag "SMH1"
//	4       1     padding bit count, 0..7
//	5       2     codebook length N, 0..65535
//	7       N     codebook, JSON object {"<symbol>": "<bits>", ...}
//	7+N     M     packed data
//
// References:
//
//	<https://www.rfc-editor.org/rfc/rfc1951.html>, Section 3.2.2
//
//	<https://en.wikipedia.org/wiki/Canonical_Huffman_code>
package smh
