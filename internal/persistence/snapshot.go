package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/hollowfarm/internal/farm"
)

// ExportVersion is bumped whenever the export layout changes.
const ExportVersion = 1

// ExportHeader is the first line of an export, readable without decoding
// the body.
type ExportHeader struct {
	Version   int       `json:"version"`
	Session   string    `json:"session"`
	Tick      uint64    `json:"tick"`
	WrittenAt time.Time `json:"written_at"`
}

// Export is a zstd-compressed farm snapshot for offline inspection.
type Export struct {
	Header   ExportHeader  `json:"header"`
	Snapshot farm.Snapshot `json:"snapshot"`
}

// ExportPath names the export file for a tick under dir.
func ExportPath(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("farm-%010d.json.zst", tick))
}

// WriteExport writes a header line then the JSON snapshot, zstd-compressed.
func WriteExport(path string, session string, snap farm.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	exp := Export{
		Header: ExportHeader{
			Version:   ExportVersion,
			Session:   session,
			Tick:      snap.Tick,
			WrittenAt: time.Now().UTC(),
		},
		Snapshot: snap,
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	hb, _ := json.Marshal(exp.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&exp); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return f.Close()
}

// LatestExport returns the path of the newest export under dir.
func LatestExport(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "farm-*.json.zst"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no exports in %s: %w", dir, os.ErrNotExist)
	}
	// Zero-padded tick numbers sort lexically.
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// ReadExport decodes an export written by WriteExport.
func ReadExport(path string) (Export, error) {
	var exp Export
	f, err := os.Open(path)
	if err != nil {
		return exp, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return exp, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// The header is repeated in the body.
	if _, err := br.ReadBytes('\n'); err != nil {
		return exp, fmt.Errorf("read header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&exp); err != nil {
		return exp, fmt.Errorf("json decode: %w", err)
	}
	if exp.Header.Version != ExportVersion {
		return exp, fmt.Errorf("unsupported export version %d", exp.Header.Version)
	}
	return exp, nil
}
