// Package fileparse reads the container structures the metadata probes scan:
// PNG chunks, JPEG APP segments, MP4 atoms and EXIF blocks. All parsers are
// tolerant; malformed input yields an empty result, never an error that
// reaches the analysis pipeline.
package fileparse

import (
	"encoding/binary"
	"io"
	"os"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// PNGChunk is a raw PNG chunk (CRC dropped).
type PNGChunk struct {
	Type string
	Data []byte
}

// PNGText is a decoded tEXt / iTXt record.
type PNGText struct {
	Keyword string
	Text    string
}

// ReadPNGChunks parses the chunk list of a PNG file, stopping at IEND.
// A missing signature or a truncated chunk yields whatever was read so far.
func ReadPNGChunks(path string) []PNGChunk {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	sig := make([]byte, 8)
	if _, err := io.ReadFull(f, sig); err != nil || string(sig) != string(pngSignature) {
		return nil
	}

	var chunks []PNGChunk
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkType := string(header[4:8])
		data := make([]byte, length)
		if _, err := io.ReadFull(f, data); err != nil {
			break
		}
		// CRC, skipped.
		if _, err := io.CopyN(io.Discard, f, 4); err != nil {
			break
		}
		chunks = append(chunks, PNGChunk{Type: chunkType, Data: data})
		if chunkType == "IEND" {
			break
		}
	}
	return chunks
}

// ExtractPNGTextChunks decodes the tEXt (Latin-1) and iTXt (UTF-8) records
// of a chunk list, in file order.
func ExtractPNGTextChunks(chunks []PNGChunk) []PNGText {
	var texts []PNGText
	for _, c := range chunks {
		switch c.Type {
		case "tEXt":
			if kw, text, ok := splitKeyword(c.Data); ok {
				texts = append(texts, PNGText{Keyword: latin1(kw), Text: latin1(text)})
			}
		case "iTXt":
			if kw, rest, ok := splitKeyword(c.Data); ok {
				texts = append(texts, PNGText{Keyword: latin1(kw), Text: string(rest)})
			}
		}
	}
	return texts
}

func splitKeyword(data []byte) (keyword, rest []byte, ok bool) {
	for i, b := range data {
		if b == 0 {
			if i == 0 {
				return nil, nil, false
			}
			return data[:i], data[i+1:], true
		}
	}
	return nil, nil, false
}

// latin1 decodes ISO 8859-1 bytes to a string.
func latin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
