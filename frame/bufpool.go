package frame

// BufPool is a free list of pre-allocated byte slices, handed out by
// LoadManifestBatch while decoding many manifest files back to back, so
// repeated reads don't churn the allocator. A slice obtained from Pop
// must be returned via Push once the caller is done with it; its
// contents are not zeroed between uses, so callers must only read
// positions they know they've just overwritten.
type BufPool chan []byte

// NewBufPool returns a BufPool of numBlocks slices, each with capacity
// blockSize.
func NewBufPool(blockSize, numBlocks int) BufPool {
	p := make(BufPool, numBlocks)
	for i := 0; i < numBlocks; i++ {
		p <- make([]byte, blockSize)
	}
	return p
}

// Pop removes and returns a slice from the pool, blocking if none is
// currently available.
func (p BufPool) Pop() []byte {
	return <-p
}

// Push returns x to the pool, restored to its full capacity.
func (p BufPool) Push(x []byte) {
	p <- x[:cap(x)]
}

// LoadManifestBatch loads every manifest in paths, reusing buffers from
// pool to stage each file's contents before handing it to the bencode
// decoder. Results are returned in the same order as paths; a failure on
// one manifest does not abort the batch; its LoadManifestResult simply
// carries the error.
func LoadManifestBatch(paths []string, pool BufPool) []LoadManifestResult {
	results := make([]LoadManifestResult, len(paths))
	for i, path := range paths {
		buf := pool.Pop()
		n, result := readInto(path, buf)
		results[i] = result
		pool.Push(buf[:n])
	}
	return results
}
