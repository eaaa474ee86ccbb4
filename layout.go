package barrier

// TilingMode is the swizzle class reported by the addressing library.
type TilingMode uint8

const (
	// TilingLinear is a row-major layout without metadata.
	TilingLinear TilingMode = iota
	// TilingSwizzled is a tiled layout without compression metadata.
	TilingSwizzled
	// TilingSwizzledCompressed is a tiled layout with compression
	// metadata (DCC or HTile) read through the metadata cache.
	TilingSwizzledCompressed
)

// SubresourceLayout is the view of the tiling/address calculator that
// barriers need. Only image transitions carry one.
type SubresourceLayout interface {
	BytesPerElement() uint32
	Tiling() TilingMode
}

// maxCompressibleBpe is the widest element that can carry compression
// metadata. 96- and 128-bit formats are never compressed.
const maxCompressibleBpe = 8

// metadataApplies reports whether reads of l go through the metadata
// cache.
func metadataApplies(l SubresourceLayout) bool {
	if l == nil {
		return false
	}
	bpe := l.BytesPerElement()
	return l.Tiling() == TilingSwizzledCompressed && bpe > 0 && bpe <= maxCompressibleBpe
}
