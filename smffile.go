package main

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// midiChunk locates one chunk inside raw SMF bytes
type midiChunk struct {
	ID    string
	Start int // offset of the chunk header
	End   int // offset just past the chunk body
}

// readMidi parses SMF bytes. The reader can panic on malformed input, that
// is reported as an error instead.
func readMidi(data []byte) (s *smf.SMF, err error) {
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("malformed MIDI data: %v", r)
		}
	}()

	s, err = smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error reading MIDI data: %w", err)
	}
	return s, nil
}

// readChunks splits SMF bytes into chunks. Fewer than 8 bytes left at the end
// can't hold a chunk and are left alone.
func readChunks(data []byte) ([]midiChunk, error) {
	var chunks []midiChunk
	offset := 0

	for len(data)-offset >= 8 {
		id := string(data[offset : offset+4])
		length := binary.BigEndian.Uint32(data[offset+4 : offset+8])

		end := offset + 8 + int(length)
		if end > len(data) {
			return nil, fmt.Errorf("chunk %q at offset %d overruns the file", id, offset)
		}

		chunks = append(chunks, midiChunk{ID: id, Start: offset, End: end})
		offset = end
	}

	if len(chunks) == 0 || chunks[0].ID != "MThd" {
		return nil, fmt.Errorf("missing MThd header chunk")
	}

	return chunks, nil
}

// trackChunk returns the n-th MTrk chunk
func trackChunk(chunks []midiChunk, n int) (midiChunk, bool) {
	for _, chunk := range chunks {
		if chunk.ID != "MTrk" {
			continue
		}
		if n == 0 {
			return chunk, true
		}
		n--
	}
	return midiChunk{}, false
}

// encodeTrackChunk serializes a single track and returns its MTrk chunk
func encodeTrackChunk(track smf.Track) ([]byte, error) {
	s := smf.NewSMF1()
	s.Add(track)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("error encoding track: %w", err)
	}

	data := buf.Bytes()
	chunks, err := readChunks(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding track: %w", err)
	}

	chunk, ok := trackChunk(chunks, 0)
	if !ok {
		return nil, fmt.Errorf("error encoding track: no MTrk chunk written")
	}
	return data[chunk.Start:chunk.End], nil
}

// replaceTrackChunk swaps the n-th MTrk chunk for replacement. Every other
// byte of the file is kept as is.
func replaceTrackChunk(data []byte, n int, replacement []byte) ([]byte, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}

	target, ok := trackChunk(chunks, n)
	if !ok {
		return nil, fmt.Errorf("track %d not found in file", n)
	}

	out := make([]byte, 0, len(data)-(target.End-target.Start)+len(replacement))
	out = append(out, data[:target.Start]...)
	out = append(out, replacement...)
	out = append(out, data[target.End:]...)
	return out, nil
}

// RewriteMidiBytes rewrites the vocals track of an SMF held in memory and
// returns the new file contents
func RewriteMidiBytes(data []byte, cfg *Config, words WordSource) ([]byte, *RewriteResult, error) {
	smfData, err := readMidi(data)
	if err != nil {
		return nil, nil, err
	}

	result, err := RewriteVocals(smfData, cfg, words)
	if err != nil {
		return nil, result, err
	}

	chunk, err := encodeTrackChunk(result.Track)
	if err != nil {
		return nil, result, err
	}

	out, err := replaceTrackChunk(data, result.VocalsTrack, chunk)
	if err != nil {
		return nil, result, fmt.Errorf("error replacing vocals track: %w", err)
	}

	return out, result, nil
}
