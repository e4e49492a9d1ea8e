package frame

import (
	"bytes"
	"fmt"
	"os"
)

// readInto reads the file at path through a bytes.Buffer that starts on
// buf's storage, and decodes it as a manifest. The bytes.Buffer moves to
// a larger array whenever it needs more room than buf offers, and buf
// itself then does not hold the file contents. It returns the file's
// length capped at cap(buf).
func readInto(path string, buf []byte) (int, LoadManifestResult) {
	f, err := os.Open(path)
	if err != nil {
		return 0, LoadManifestResult{Err: fmt.Errorf("frame: LoadManifest: open %s: %w", path, err)}
	}
	defer f.Close()

	staging := bytes.NewBuffer(buf[:0])
	if _, err := staging.ReadFrom(f); err != nil {
		return 0, LoadManifestResult{Err: fmt.Errorf("frame: LoadManifest: read %s: %w", path, err)}
	}

	data := staging.Bytes()
	n := len(data)
	if n > cap(buf) {
		n = cap(buf) // only as much as the pooled slice can carry back.
	}
	return n, decodeManifest(bytes.NewReader(data), path)
}
