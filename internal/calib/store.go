// Package calib persists calibration parameters as a small fixed-size
// record guarded by a signature and version marker.
package calib

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/touchplate/touchplate/internal/tsmap"
)

// Record layout markers. The version is bumped if the field layout ever
// changes so stale records are refused instead of misread.
var signature = [2]byte{'T', 'P'}

const version = 1

// recordSize is the encoded length: signature, version, pad, four int16.
const recordSize = 12

// record is the on-disk layout. Field order matches the legacy EEPROM
// block: lower-right pair first, then upper-left.
type record struct {
	Signature [2]byte
	Version   uint8
	_         uint8
	LRX       int16
	LRY       int16
	ULX       int16
	ULY       int16
}

// Encode serializes calibration parameters into the fixed-size record.
func Encode(p tsmap.Params) []byte {
	rec := record{
		Signature: signature,
		Version:   version,
		LRX:       p.LRX,
		LRY:       p.LRY,
		ULX:       p.ULX,
		ULY:       p.ULY,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, rec)
	return buf.Bytes()
}

// Decode parses a record, rejecting wrong lengths, signatures, and versions.
func Decode(data []byte) (tsmap.Params, error) {
	if len(data) != recordSize {
		return tsmap.Params{}, fmt.Errorf("calibration record is %d bytes, want %d", len(data), recordSize)
	}
	var rec record
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &rec); err != nil {
		return tsmap.Params{}, err
	}
	if rec.Signature != signature {
		return tsmap.Params{}, fmt.Errorf("calibration record has unknown signature %q", rec.Signature)
	}
	if rec.Version != version {
		return tsmap.Params{}, fmt.Errorf("calibration record version %d not supported", rec.Version)
	}
	return tsmap.Params{ULX: rec.ULX, ULY: rec.ULY, LRX: rec.LRX, LRY: rec.LRY}, nil
}

// Load reads calibration parameters from disk. A missing file is not an
// error: it reports ok=false so the caller keeps the factory defaults.
func Load(path string) (p tsmap.Params, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tsmap.Params{}, false, nil
		}
		return tsmap.Params{}, false, err
	}
	p, err = Decode(data)
	if err != nil {
		return tsmap.Params{}, false, err
	}
	return p, true, nil
}

// Save writes calibration parameters to disk, creating parent
// directories as needed.
func Save(path string, p tsmap.Params) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, Encode(p), 0o600)
}
