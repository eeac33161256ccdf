package backup

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hozondb/hozon-db/pkg/compression"
)

// Stream format: a fixed magic, one byte naming the compression algorithm,
// the original image length as a little-endian uint32, then the compressed
// database file image.
var streamMagic = [4]byte{'H', 'Z', 'B', 'K'}

const headerSize = 4 + 1 + 4

var (
	// ErrInvalidStream means the reader does not hold a backup stream.
	ErrInvalidStream = errors.New("invalid backup stream")

	// ErrImageSizeMismatch means the decompressed image does not match the
	// length recorded in the header.
	ErrImageSizeMismatch = errors.New("backup image size mismatch")
)

// Write compresses a database file image and writes it as a backup stream
func Write(w io.Writer, image []byte, algorithm compression.Algorithm) error {
	c, err := compression.NewCompressor(algorithm)
	if err != nil {
		return err
	}
	defer c.Close()

	compressed, err := c.Compress(image)
	if err != nil {
		return fmt.Errorf("failed to compress backup image: %w", err)
	}

	header := make([]byte, headerSize)
	copy(header, streamMagic[:])
	header[4] = byte(algorithm)
	binary.LittleEndian.PutUint32(header[5:], uint32(len(image)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write backup header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("failed to write backup image: %w", err)
	}
	return nil
}

// Read reads a backup stream and returns the original database file image
func Read(r io.Reader) ([]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrInvalidStream, err)
	}
	if !bytes.Equal(header[:4], streamMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic %x", ErrInvalidStream, header[:4])
	}

	algorithm := compression.Algorithm(header[4])
	originalSize := binary.LittleEndian.Uint32(header[5:])

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup image: %w", err)
	}

	c, err := compression.NewCompressor(algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStream, err)
	}
	defer c.Close()

	image, err := c.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress backup image: %w", err)
	}
	if uint32(len(image)) != originalSize {
		return nil, fmt.Errorf("%w: header says %d bytes, got %d", ErrImageSizeMismatch, originalSize, len(image))
	}
	return image, nil
}
