// Package testsupport builds fixture project files for parser and batch
// tests: zipped Live sets, FL Studio binary images, and Logic bundle
// directories.
package testsupport

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WriteAbletonSet writes a .als zip archive containing a single
// AbletonProject.xml member with the provided document text.
func WriteAbletonSet(t testing.TB, dir, name, document string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	member, err := zw.Create("AbletonProject.xml")
	if err != nil {
		t.Fatalf("create archive member: %v", err)
	}
	if _, err := member.Write([]byte(document)); err != nil {
		t.Fatalf("write archive member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteBareAbletonSet writes a legacy unzipped .als: the document text as-is.
func WriteBareAbletonSet(t testing.TB, dir, name, document string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteLogicBundle writes a .logicx directory bundle with each document
// at its relative path inside the bundle.
func WriteLogicBundle(t testing.TB, dir, name string, documents map[string]string) string {
	t.Helper()
	bundle := filepath.Join(dir, name)
	for rel, contents := range documents {
		path := filepath.Join(bundle, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatalf("mkdir bundle: %v", err)
	}
	return bundle
}

// FLPBuilder assembles an FL Studio project image event by event.
type FLPBuilder struct {
	ppq    int
	format int
	events bytes.Buffer
}

// NewFLPBuilder starts a project image with the given PPQ resolution.
func NewFLPBuilder(ppq int) *FLPBuilder {
	return &FLPBuilder{ppq: ppq, format: 0}
}

// Byte appends a one-byte event.
func (b *FLPBuilder) Byte(id uint8, value uint8) *FLPBuilder {
	b.events.WriteByte(id)
	b.events.WriteByte(value)
	return b
}

// Word appends a two-byte event.
func (b *FLPBuilder) Word(id uint8, value uint16) *FLPBuilder {
	b.events.WriteByte(id)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], value)
	b.events.Write(tmp[:])
	return b
}

// DWord appends a four-byte event.
func (b *FLPBuilder) DWord(id uint8, value uint32) *FLPBuilder {
	b.events.WriteByte(id)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], value)
	b.events.Write(tmp[:])
	return b
}

// Text appends a length-prefixed event with the given payload.
func (b *FLPBuilder) Text(id uint8, payload []byte) *FLPBuilder {
	b.events.WriteByte(id)
	length := len(payload)
	for {
		digit := byte(length & 0x7f)
		length >>= 7
		if length > 0 {
			b.events.WriteByte(digit | 0x80)
		} else {
			b.events.WriteByte(digit)
			break
		}
	}
	b.events.Write(payload)
	return b
}

// String appends a NUL-terminated text event.
func (b *FLPBuilder) String(id uint8, value string) *FLPBuilder {
	return b.Text(id, append([]byte(value), 0))
}

// NoteRecord encodes one 24-byte pattern note record.
func NoteRecord(pos uint32, channel uint16, duration uint32, key uint16, velocity uint8) []byte {
	rec := make([]byte, 24)
	binary.LittleEndian.PutUint32(rec[0:], pos)
	binary.LittleEndian.PutUint16(rec[6:], channel)
	binary.LittleEndian.PutUint32(rec[8:], duration)
	binary.LittleEndian.PutUint16(rec[12:], key)
	rec[18] = 64 // center pan
	rec[19] = velocity
	return rec
}

// PlaylistRecord encodes one 32-byte playlist item record. patternRef
// selects the pattern-index encoding when true.
func PlaylistRecord(pos uint32, index uint16, length uint32, track uint32, patternRef bool) []byte {
	rec := make([]byte, 32)
	binary.LittleEndian.PutUint32(rec[0:], pos)
	if patternRef {
		index += 20480
	}
	binary.LittleEndian.PutUint16(rec[6:], index)
	binary.LittleEndian.PutUint32(rec[8:], length)
	binary.LittleEndian.PutUint32(rec[12:], track)
	return rec
}

// AutomationRecord encodes one 16-byte automation point record.
func AutomationRecord(pos uint32, value float32, curve uint32) []byte {
	rec := make([]byte, 16)
	binary.LittleEndian.PutUint32(rec[0:], pos)
	binary.LittleEndian.PutUint32(rec[4:], math.Float32bits(value))
	binary.LittleEndian.PutUint32(rec[8:], curve)
	return rec
}

// Bytes renders the complete FLP image: FLhd header plus FLdt chunk.
func (b *FLPBuilder) Bytes() []byte {
	var out bytes.Buffer
	out.WriteString("FLhd")
	writeU32(&out, 6)
	writeU16(&out, uint16(b.format))
	writeU16(&out, 0) // channel count filled by events
	writeU16(&out, uint16(b.ppq))
	out.WriteString("FLdt")
	writeU32(&out, uint32(b.events.Len()))
	out.Write(b.events.Bytes())
	return out.Bytes()
}

// Write renders the image to a file and returns its path.
func (b *FLPBuilder) Write(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

