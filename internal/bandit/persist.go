package bandit

import (
	"encoding/binary"
	"math"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/errs"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

// Persisted blob layout: magic, format_version,
// learner_kind, dimension, then A row-major float64 little-endian, then
// b. One blob per (user, arm, learner_kind).
const (
	blobMagic         uint32 = 0x41564245 // "AVBE"
	blobFormatVersion uint16 = 1

	learnerKindLinUCB uint16 = 1
)

const blobHeaderSize = 4 + 2 + 2 + 4 // magic + version + kind + dimension

// EncodeArm serializes one arm's (A, b) into the versioned binary format.
func EncodeArm(dimension int, a, b []float64) []byte {
	buf := make([]byte, blobHeaderSize+len(a)*8+len(b)*8)
	binary.LittleEndian.PutUint32(buf[0:4], blobMagic)
	binary.LittleEndian.PutUint16(buf[4:6], blobFormatVersion)
	binary.LittleEndian.PutUint16(buf[6:8], learnerKindLinUCB)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(dimension))
	off := blobHeaderSize
	for _, v := range a {
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
		off += 8
	}
	for _, v := range b {
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
		off += 8
	}
	return buf
}

// DecodeArm parses a blob produced by EncodeArm, rejecting mismatched
// dimension or unknown magic/version with errs.ModelCorrupt rather than
// guessing at the layout.
func DecodeArm(blob []byte, wantDimension int) (a, b []float64, err error) {
	if len(blob) < blobHeaderSize {
		return nil, nil, errs.New(errs.ModelCorrupt, "blob too short: %d bytes", len(blob))
	}
	magic := binary.LittleEndian.Uint32(blob[0:4])
	if magic != blobMagic {
		return nil, nil, errs.New(errs.ModelCorrupt, "bad magic: %x", magic)
	}
	version := binary.LittleEndian.Uint16(blob[4:6])
	if version != blobFormatVersion {
		return nil, nil, errs.New(errs.ModelCorrupt, "unsupported format version: %d", version)
	}
	dimension := int(binary.LittleEndian.Uint32(blob[8:12]))
	if dimension != wantDimension {
		return nil, nil, errs.New(errs.ModelCorrupt, "dimension mismatch: blob has %d, want %d", dimension, wantDimension)
	}
	want := blobHeaderSize + dimension*dimension*8 + dimension*8
	if len(blob) != want {
		return nil, nil, errs.New(errs.ModelCorrupt, "blob length mismatch: have %d, want %d", len(blob), want)
	}

	off := blobHeaderSize
	a = make([]float64, dimension*dimension)
	for i := range a {
		a[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off : off+8]))
		off += 8
	}
	b = make([]float64, dimension)
	for i := range b {
		b[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off : off+8]))
		off += 8
	}
	return a, b, nil
}

// Persist serializes every arm of a LinUCB model into its on-disk blobs,
// keyed by arm index; the caller (internal/store) owns where these land.
func (l *LinUCB) Persist() map[int][]byte {
	out := make(map[int][]byte, NumArms)
	for a := 0; a < NumArms; a++ {
		out[a] = EncodeArm(l.Dimension, l.Arms[a].A, l.Arms[a].B)
	}
	return out
}

// LoadLinUCB restores a LinUCB model from per-arm blobs. A corrupt or
// missing blob for a given arm resets only that arm to its cold-start
// default (λI, zero b) and emits a ModelRestoreDegraded telemetry event
// rather than failing the whole load.
func LoadLinUCB(cfg LinUCBConfig, blobs map[int][]byte, sink telemetry.Sink, userID string) *LinUCB {
	l := NewLinUCB(cfg)
	for a := 0; a < NumArms; a++ {
		blob, ok := blobs[a]
		if !ok {
			continue // never persisted yet; cold default already in place
		}
		decodedA, decodedB, err := DecodeArm(blob, cfg.Dimension)
		if err != nil {
			sink.Emit(telemetry.Event{
				Kind:   "ModelRestoreDegraded",
				UserID: userID,
				Fields: map[string]interface{}{"arm": a, "reason": err.Error()},
			})
			continue // that arm stays at its cold default
		}
		l.Arms[a] = ArmState{A: decodedA, B: decodedB}
	}
	return l
}
