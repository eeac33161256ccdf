package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Algorithm identifies a compression algorithm. The numeric values appear in
// backup stream headers and must stay stable.
type Algorithm uint8

const (
	// AlgorithmNone stores data uncompressed
	AlgorithmNone Algorithm = iota
	// AlgorithmSnappy is fast with a moderate ratio
	AlgorithmSnappy
	// AlgorithmZstd balances speed and ratio (default)
	AlgorithmZstd
	// AlgorithmGzip is the widely-supported standard
	AlgorithmGzip
)

// String returns the string representation of the algorithm
func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmSnappy:
		return "snappy"
	case AlgorithmZstd:
		return "zstd"
	case AlgorithmGzip:
		return "gzip"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name to an algorithm. An empty name selects the
// default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "zstd":
		return AlgorithmZstd, nil
	case "none":
		return AlgorithmNone, nil
	case "snappy":
		return AlgorithmSnappy, nil
	case "gzip":
		return AlgorithmGzip, nil
	default:
		return 0, fmt.Errorf("unsupported compression algorithm: %q", name)
	}
}

// Compressor compresses and decompresses byte buffers with a fixed algorithm
type Compressor struct {
	algorithm Algorithm
	zstdEnc   *zstd.Encoder
	zstdDec   *zstd.Decoder
}

// NewCompressor creates a compressor for the given algorithm
func NewCompressor(algorithm Algorithm) (*Compressor, error) {
	c := &Compressor{algorithm: algorithm}

	// Zstd coders are reusable and cheap to hold for the compressor's
	// lifetime.
	if algorithm == AlgorithmZstd {
		var err error
		c.zstdEnc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		c.zstdDec, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
	}

	return c, nil
}

// Algorithm returns the compressor's algorithm
func (c *Compressor) Algorithm() Algorithm {
	return c.algorithm
}

// Compress compresses the input data
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmNone:
		return data, nil

	case AlgorithmSnappy:
		return snappy.Encode(nil, data), nil

	case AlgorithmZstd:
		return c.zstdEnc.EncodeAll(data, nil), nil

	case AlgorithmGzip:
		var buf bytes.Buffer
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write gzip data: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to close gzip writer: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %v", c.algorithm)
	}
}

// Decompress decompresses the input data
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmNone:
		return data, nil

	case AlgorithmSnappy:
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode snappy: %w", err)
		}
		return decoded, nil

	case AlgorithmZstd:
		decoded, err := c.zstdDec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decode zstd: %w", err)
		}
		return decoded, nil

	case AlgorithmGzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer reader.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, reader); err != nil {
			return nil, fmt.Errorf("failed to read gzip data: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %v", c.algorithm)
	}
}

// Close releases the compressor's resources
func (c *Compressor) Close() error {
	if c.zstdEnc != nil {
		c.zstdEnc.Close()
	}
	if c.zstdDec != nil {
		c.zstdDec.Close()
	}
	return nil
}

// Ratio calculates the compressed-to-original size ratio
func Ratio(originalSize, compressedSize int) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}
