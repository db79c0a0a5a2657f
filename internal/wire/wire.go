package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version     byte = 1
	kindWindow  byte = 1
	kindAddress byte = 2
)

var (
	ErrCorrupt = errors.New("statecache: corrupt encoding")
	magic4     = [...]byte{'S', 'T', 'C', 'A'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Window: ver(1) | kind(1=window) | start(i64 be) | end(i64 be)
//
// Times are unix microseconds. No magic: window keys are embedded in
// namespace strings and must stay short.
const windowLen = 1 + 1 + 8 + 8

func EncodeWindow(startMicros, endMicros int64) []byte {
	b := make([]byte, windowLen)
	b[0] = version
	b[1] = kindWindow
	binary.BigEndian.PutUint64(b[2:10], uint64(startMicros))
	binary.BigEndian.PutUint64(b[10:18], uint64(endMicros))
	return b
}

func DecodeWindow(b []byte) (startMicros, endMicros int64, err error) {
	if len(b) != windowLen || b[0] != version || b[1] != kindWindow {
		return 0, 0, ErrCorrupt
	}
	startMicros = int64(binary.BigEndian.Uint64(b[2:10]))
	endMicros = int64(binary.BigEndian.Uint64(b[10:18]))
	return startMicros, endMicros, nil
}

// Address identifies one value held by a remote state service.
type Address struct {
	Computation string
	Key         []byte
	Family      string
	Namespace   string
	Tag         string
}

// Address:
//
//	magic(4) | ver(1) | kind(2=address)
//	compLen(u16 be) | comp | keyLen(u32 be) | key | famLen(u16 be) | fam
//	nsLen(u16 be) | ns | tagLen(u16 be) | tag
func EncodeAddress(a Address) []byte {
	for _, s := range []string{a.Computation, a.Family, a.Namespace, a.Tag} {
		if len(s) > 0xFFFF {
			panic("statecache: address component too long")
		}
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 2 + len(a.Computation) + 4 + len(a.Key) +
		2 + len(a.Family) + 2 + len(a.Namespace) + 2 + len(a.Tag))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindAddress)

	var u4 [4]byte
	var u2 [2]byte

	writeShort := func(s string) {
		binary.BigEndian.PutUint16(u2[:], uint16(len(s)))
		buf.Write(u2[:])
		buf.WriteString(s)
	}

	writeShort(a.Computation)
	binary.BigEndian.PutUint32(u4[:], uint32(len(a.Key)))
	buf.Write(u4[:])
	buf.Write(a.Key)
	writeShort(a.Family)
	writeShort(a.Namespace)
	writeShort(a.Tag)

	return buf.Bytes()
}

func DecodeAddress(b []byte) (Address, error) {
	const hdr = 4 + 1 + 1
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindAddress {
		return Address{}, ErrCorrupt
	}
	off := hdr

	readShort := func() (string, bool) {
		if off+2 > len(b) {
			return "", false
		}
		n := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if n > len(b)-off {
			return "", false
		}
		s := string(b[off : off+n])
		off += n
		return s, true
	}

	var a Address
	var ok bool
	if a.Computation, ok = readShort(); !ok {
		return Address{}, ErrCorrupt
	}

	if off+4 > len(b) {
		return Address{}, ErrCorrupt
	}
	klen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if klen < 0 || klen > len(b)-off {
		return Address{}, ErrCorrupt
	}
	a.Key = append([]byte(nil), b[off:off+klen]...)
	off += klen

	if a.Family, ok = readShort(); !ok {
		return Address{}, ErrCorrupt
	}
	if a.Namespace, ok = readShort(); !ok {
		return Address{}, ErrCorrupt
	}
	if a.Tag, ok = readShort(); !ok {
		return Address{}, ErrCorrupt
	}
	if off != len(b) {
		return Address{}, ErrCorrupt
	}
	return a, nil
}
