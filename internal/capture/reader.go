// Package capture iterates packets out of a capture file lazily, without
// loading the file into memory, tolerating malformed individual packets.
package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ngMagic is the byte sequence that opens a pcapng Section Header Block,
// in either byte order.
var ngMagic = [][]byte{
	{0x0A, 0x0D, 0x0D, 0x0A},
}

// source is the subset of the pcapgo reader API the Reader needs; both
// pcapgo.Reader (classic pcap) and pcapgo.NgReader (pcapng) satisfy it.
type source interface {
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)
	LinkType() layers.LinkType
}

// Reader produces a lazy, single-pass, finite sequence of packets from one
// capture file. It never loads the file into memory: each call to Next
// reads records off the underlying file one at a time, returning the
// first that decodes and skipping malformed ones.
type Reader struct {
	f        *os.File
	src      source
	linkType layers.LinkType
	skipped  uint64
}

// Open opens path for reading, detecting whether it holds classic pcap or
// pcapng records. It returns ErrInputUnreadable if the file cannot be
// opened or its format isn't recognised.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}

	br := bufio.NewReaderSize(f, 64*1024)

	magic, err := br.Peek(4)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}

	r := &Reader{f: f}

	if isNgMagic(magic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
		}
		r.src = ng
		r.linkType = ng.LinkType()
		return r, nil
	}

	classic, err := pcapgo.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}
	r.src = classic
	r.linkType = classic.LinkType()
	return r, nil
}

func isNgMagic(b []byte) bool {
	for _, m := range ngMagic {
		if bytes.Equal(b, m) {
			return true
		}
	}
	return false
}

// Next returns the next decoded packet. ok is false once the capture is
// exhausted. A malformed record is skipped (and counted) rather than
// returned or treated as fatal.
func (r *Reader) Next() (pkt gopacket.Packet, ci gopacket.CaptureInfo, ok bool) {
	for {
		data, ci, err := r.src.ReadPacketData()
		if err == io.EOF {
			return nil, ci, false
		}
		if err != nil {
			r.skipped++
			continue
		}

		pkt := gopacket.NewPacket(data, r.linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		return pkt, ci, true
	}
}

// Skipped returns the number of capture-format records that failed to
// decode and were dropped, for diagnostics.
func (r *Reader) Skipped() uint64 { return r.skipped }

func (r *Reader) Close() error { return r.f.Close() }
