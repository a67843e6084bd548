// SNG files are binary containers used by music games to ship a complete
// song package: chart files, audio stems, images and metadata. All file data
// is XOR-masked.
//
// lazylip only touches the chart inside a package:
//
//	sng, err := OpenSngFile("song.sng")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sng.Close()
//
//	midiData, err := sng.ReadFile("notes.mid")
//	...
//	_, err = sng.WriteTo(out, map[string][]byte{"notes.mid": rewritten})
//
// File Format:
//
// SNG files contain four main sections:
//   - Header: File identifier, version, and XOR mask
//   - Metadata: Key-value pairs with song information
//   - File Index: List of contained files with sizes and offsets
//   - File Data: XOR-masked file contents
//
// The XOR masking uses a lookup table approach where each byte is masked
// based on its position within the individual file and a 16-byte mask
// from the header.

package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// SngFileIdentifier is the magic bytes that identify an SNG file
	SngFileIdentifier = "SNGPKG"
	// SngHeaderSize is the size of the SNG file header in bytes
	SngHeaderSize = 26
	// sngChartFile is the chart stored inside a package
	sngChartFile = "notes.mid"
)

// SngHeader represents the SNG file header containing identification and XOR mask
type SngHeader struct {
	Identifier [6]byte  // Must be "SNGPKG"
	Version    uint32   // Format version (currently 1)
	XorMask    [16]byte // 16-byte mask for XOR operations
}

// SngMetadata represents key-value pairs of song metadata
type SngMetadata map[string]string

// SngFileEntry represents a file contained within the SNG package
type SngFileEntry struct {
	Filename string // Name of the file
	Size     uint64 // Size of the file data in bytes
	Offset   uint64 // Absolute offset to the file data within the SNG file
}

// SngFile represents an opened SNG file with its header, metadata, file index, and reader
type SngFile struct {
	Header       SngHeader      // SNG file header
	Metadata     SngMetadata    // Song metadata key-value pairs
	MetadataKeys []string       // Metadata keys in file order
	Files        []SngFileEntry // Index of contained files
	reader       *os.File       // File reader for accessing file data
}

// OpenSngFile opens an SNG file for reading and parses its header, metadata, and file index.
// The returned SngFile must be closed with Close() when finished.
func OpenSngFile(filename string) (*SngFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	sng := &SngFile{
		reader:   file,
		Metadata: make(SngMetadata),
	}

	if err := sng.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if err := sng.readMetadata(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	if err := sng.readFileIndex(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read file index: %w", err)
	}

	return sng, nil
}

// Close closes the underlying file reader
func (s *SngFile) Close() error {
	if s.reader != nil {
		return s.reader.Close()
	}
	return nil
}

func (s *SngFile) readHeader() error {
	if _, err := s.reader.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if err := binary.Read(s.reader, binary.LittleEndian, &s.Header); err != nil {
		return err
	}

	if string(s.Header.Identifier[:]) != SngFileIdentifier {
		return fmt.Errorf("invalid file identifier: %s", string(s.Header.Identifier[:]))
	}

	return nil
}

func (s *SngFile) readMetadata() error {
	var metadataLength uint64
	if err := binary.Read(s.reader, binary.LittleEndian, &metadataLength); err != nil {
		return err
	}

	var metadataCount uint64
	if err := binary.Read(s.reader, binary.LittleEndian, &metadataCount); err != nil {
		return err
	}

	for i := uint64(0); i < metadataCount; i++ {
		var keyLen int32
		if err := binary.Read(s.reader, binary.LittleEndian, &keyLen); err != nil {
			return err
		}

		if keyLen < 0 || keyLen > 1024 {
			return fmt.Errorf("invalid key length: %d", keyLen)
		}

		key := make([]byte, keyLen)
		if _, err := io.ReadFull(s.reader, key); err != nil {
			return err
		}

		var valueLen int32
		if err := binary.Read(s.reader, binary.LittleEndian, &valueLen); err != nil {
			return err
		}

		if valueLen < 0 || valueLen > 10240 {
			return fmt.Errorf("invalid value length: %d", valueLen)
		}

		value := make([]byte, valueLen)
		if _, err := io.ReadFull(s.reader, value); err != nil {
			return err
		}

		if _, exists := s.Metadata[string(key)]; !exists {
			s.MetadataKeys = append(s.MetadataKeys, string(key))
		}
		s.Metadata[string(key)] = string(value)
	}

	return nil
}

func (s *SngFile) readFileIndex() error {
	var indexLength uint64
	if err := binary.Read(s.reader, binary.LittleEndian, &indexLength); err != nil {
		return err
	}

	var fileCount uint64
	if err := binary.Read(s.reader, binary.LittleEndian, &fileCount); err != nil {
		return err
	}

	for i := uint64(0); i < fileCount; i++ {
		var filenameLen uint8
		if err := binary.Read(s.reader, binary.LittleEndian, &filenameLen); err != nil {
			return err
		}

		filename := make([]byte, filenameLen)
		if _, err := io.ReadFull(s.reader, filename); err != nil {
			return err
		}

		var fileSize uint64
		if err := binary.Read(s.reader, binary.LittleEndian, &fileSize); err != nil {
			return err
		}

		var fileOffset uint64
		if err := binary.Read(s.reader, binary.LittleEndian, &fileOffset); err != nil {
			return err
		}

		s.Files = append(s.Files, SngFileEntry{
			Filename: string(filename),
			Size:     fileSize,
			Offset:   fileOffset,
		})
	}

	return nil
}

func (s *SngFile) findEntry(filename string) *SngFileEntry {
	for i := range s.Files {
		if s.Files[i].Filename == filename {
			return &s.Files[i]
		}
	}
	return nil
}

// HasFile reports whether the package contains filename
func (s *SngFile) HasFile(filename string) bool {
	return s.findEntry(filename) != nil
}

// ReadFile extracts and returns the unmasked contents of the specified file
// from the SNG package
func (s *SngFile) ReadFile(filename string) ([]byte, error) {
	entry := s.findEntry(filename)
	if entry == nil {
		return nil, fmt.Errorf("file not found: %s", filename)
	}

	if _, err := s.reader.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, err
	}

	maskedData := make([]byte, entry.Size)
	if _, err := io.ReadFull(s.reader, maskedData); err != nil {
		return nil, err
	}

	return s.applyMask(maskedData), nil
}

// applyMask XORs data with the package mask. Masking and unmasking are the
// same operation since the mask only depends on the position in the file.
func (s *SngFile) applyMask(data []byte) []byte {
	lookup := make([]byte, 256)
	for i := 0; i < 256; i++ {
		lookup[i] = byte(i) ^ s.Header.XorMask[i&0x0F]
	}

	result := make([]byte, len(data))
	for i, b := range data {
		result[i] = b ^ lookup[i&0xFF]
	}

	return result
}

// countingWriter tracks how many bytes went through it
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo writes the package to w with the given files replaced by new
// unmasked contents. Header, metadata, file order and the masked bytes of
// every other file are kept.
func (s *SngFile) WriteTo(w io.Writer, replacements map[string][]byte) (int64, error) {
	for name := range replacements {
		if !s.HasFile(name) {
			return 0, fmt.Errorf("file not found: %s", name)
		}
	}

	var metadataLength uint64 = 8
	for _, key := range s.MetadataKeys {
		metadataLength += 4 + uint64(len(key)) + 4 + uint64(len(s.Metadata[key]))
	}

	var indexLength uint64 = 8
	sizes := make([]uint64, len(s.Files))
	var dataLength uint64
	for i, entry := range s.Files {
		if len(entry.Filename) > 255 {
			return 0, fmt.Errorf("file name too long: %s", entry.Filename)
		}
		indexLength += 1 + uint64(len(entry.Filename)) + 8 + 8

		sizes[i] = entry.Size
		if data, ok := replacements[entry.Filename]; ok {
			sizes[i] = uint64(len(data))
		}
		dataLength += sizes[i]
	}

	counter := &countingWriter{w: w}
	out := bufio.NewWriter(counter)

	write := func(v any) error {
		return binary.Write(out, binary.LittleEndian, v)
	}

	if err := write(s.Header); err != nil {
		return counter.n, err
	}

	if err := write(metadataLength); err != nil {
		return counter.n, err
	}
	if err := write(uint64(len(s.MetadataKeys))); err != nil {
		return counter.n, err
	}
	for _, key := range s.MetadataKeys {
		value := s.Metadata[key]
		if err := write(int32(len(key))); err != nil {
			return counter.n, err
		}
		if _, err := out.WriteString(key); err != nil {
			return counter.n, err
		}
		if err := write(int32(len(value))); err != nil {
			return counter.n, err
		}
		if _, err := out.WriteString(value); err != nil {
			return counter.n, err
		}
	}

	if err := write(indexLength); err != nil {
		return counter.n, err
	}
	if err := write(uint64(len(s.Files))); err != nil {
		return counter.n, err
	}

	offset := uint64(SngHeaderSize) + 8 + metadataLength + 8 + indexLength + 8
	for i, entry := range s.Files {
		if err := write(uint8(len(entry.Filename))); err != nil {
			return counter.n, err
		}
		if _, err := out.WriteString(entry.Filename); err != nil {
			return counter.n, err
		}
		if err := write(sizes[i]); err != nil {
			return counter.n, err
		}
		if err := write(offset); err != nil {
			return counter.n, err
		}
		offset += sizes[i]
	}

	if err := write(dataLength); err != nil {
		return counter.n, err
	}

	for _, entry := range s.Files {
		if data, ok := replacements[entry.Filename]; ok {
			if _, err := out.Write(s.applyMask(data)); err != nil {
				return counter.n, err
			}
			continue
		}

		// copy the still masked bytes straight across
		if _, err := s.reader.Seek(int64(entry.Offset), io.SeekStart); err != nil {
			return counter.n, err
		}
		if _, err := io.CopyN(out, s.reader, int64(entry.Size)); err != nil {
			return counter.n, fmt.Errorf("failed to copy %s: %w", entry.Filename, err)
		}
	}

	if err := out.Flush(); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}
