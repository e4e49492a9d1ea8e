// Package frame contains the stand-ins for gamecov's external
// collaborators: MP4 decoding, perceptual hashing, and the on-disk
// manifest format that ties a recording's path to its precomputed
// hashes. None of this is part of the core (see the package doc on
// gamecov); it exists so a CLI or integration test has something
// concrete to feed a Monitor.
package frame

import (
	"bytes"
	"fmt"
	"io"
	"os"

	bencode "github.com/jackpal/bencode-go"

	"github.com/SecurityLab-UCD/gamecov/coverage"
	"github.com/SecurityLab-UCD/gamecov/hash"
)

// Recording is one gameplay recording: a path on disk and the perceptual
// hashes observed in it.
type Recording struct {
	Path   string
	Hashes []uint64
}

// Coverage adapts a Recording to the coverage.Coverage capability the
// monitor consumes.
func (r Recording) Coverage() coverage.Coverage {
	return coverage.NewSetWithTrace(r.Hashes)
}

// HashFrames packs a batch of bit-matrix perceptual hashes (as would be
// produced by an external aHash/pHash stage) into their canonical
// uint64 identities.
func HashFrames(frames [][8][8]bool) []uint64 {
	out := make([]uint64, len(frames))
	for i, f := range frames {
		out[i] = hash.Pack(f)
	}
	return out
}

// manifestEntry is the bencode-encoded wire shape of one recording in a
// manifest file: a dictionary with a "path" string and a "hashes" list
// of 8-byte big-endian-packed hash strings.
type manifestEntry struct {
	Path   string   `bencode:"path"`
	Hashes []string `bencode:"hashes"`
}

type manifest struct {
	Recordings []manifestEntry `bencode:"recordings"`
}

// LoadManifestResult is a result-carrying return: LoadManifest never
// panics across the core boundary. Either Recordings is populated and
// Err is nil, or Err describes why the manifest could not be read or
// decoded.
type LoadManifestResult struct {
	Recordings []Recording
	Err        error
}

// LoadManifest reads and bencode-decodes a manifest file at path,
// returning one Recording per entry. I/O and decode failures are
// surfaced in the result, never thrown.
func LoadManifest(path string) LoadManifestResult {
	f, err := os.Open(path)
	if err != nil {
		return LoadManifestResult{Err: fmt.Errorf("frame: LoadManifest: open %s: %w", path, err)}
	}
	defer f.Close()
	return decodeManifest(f, path)
}

func decodeManifest(r io.Reader, path string) LoadManifestResult {
	var m manifest
	if err := bencode.Unmarshal(r, &m); err != nil {
		return LoadManifestResult{Err: fmt.Errorf("frame: LoadManifest: decode %s: %w", path, err)}
	}

	recordings := make([]Recording, 0, len(m.Recordings))
	for _, entry := range m.Recordings {
		hashes := make([]uint64, 0, len(entry.Hashes))
		for _, packed := range entry.Hashes {
			h, err := unpackHashString(packed)
			if err != nil {
				return LoadManifestResult{
					Err: fmt.Errorf("frame: LoadManifest: %s: entry %q: %w", path, entry.Path, err),
				}
			}
			hashes = append(hashes, h)
		}
		recordings = append(recordings, Recording{Path: entry.Path, Hashes: hashes})
	}
	return LoadManifestResult{Recordings: recordings}
}

func unpackHashString(s string) (uint64, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("hash entry must be exactly 8 bytes, got %d", len(s))
	}
	var h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(s[i])
	}
	return h, nil
}

// EncodeManifest bencode-encodes recordings in the same wire shape
// LoadManifest reads, for tests and tooling that need to produce
// fixtures.
func EncodeManifest(recordings []Recording) ([]byte, error) {
	m := manifest{Recordings: make([]manifestEntry, len(recordings))}
	for i, r := range recordings {
		strs := make([]string, len(r.Hashes))
		for j, h := range r.Hashes {
			b := hash.Bytes(h)
			strs[j] = string(b[:])
		}
		m.Recordings[i] = manifestEntry{Path: r.Path, Hashes: strs}
	}
	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, m); err != nil {
		return nil, fmt.Errorf("frame: EncodeManifest: %w", err)
	}
	return buf.Bytes(), nil
}
