// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import "io"

// maxRun is the longest run one tuple holds.
const maxRun = 16

// Buffer run length encodes nibbles. Each byte is a sample's 4 most
// significant bits followed by 4 bits of run length - 1. Reading does not
// modify the encoded bytes.
type Buffer struct {
	buf []byte
	off int // tuple being read
	run int // samples already read from buf[off]
}

func (buffer *Buffer) Reset(buf []byte) {
	buffer.buf = buf
	buffer.off = 0
	buffer.run = 0
}

// writeByte appends the 4 most significant bits of b.
func (buffer *Buffer) writeByte(b byte) {
	next := b >> 4
	end := len(buffer.buf) - 1

	if end >= 0 {
		tuple := buffer.buf[end]
		if tuple>>4 == next && int(tuple&0x0f)+1 < maxRun {
			buffer.buf[end] = tuple + 1
			return
		}
	}
	buffer.buf = append(buffer.buf, next<<4)
}

func (buffer *Buffer) Write(buf []byte) (int, error) {
	for _, b := range buf {
		buffer.writeByte(b)
	}
	return len(buf), nil
}

func (buffer *Buffer) readByte() byte {
	tuple := buffer.buf[buffer.off]
	buffer.run++
	if buffer.run > int(tuple&0x0f) {
		buffer.off++
		buffer.run = 0
	}
	return tuple & 0xf0
}

func (buffer *Buffer) Read(buf []byte) (int, error) {
	i := 0
	for ; i < len(buf) && buffer.off < len(buffer.buf); i++ {
		buf[i] = buffer.readByte()
	}

	if i == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return i, nil
}

// Grow makes space for about n samples.
func (buffer *Buffer) Grow(n int) {
	compressed := n / 2
	if cap(buffer.buf)-len(buffer.buf) < compressed {
		buf := make([]byte, len(buffer.buf), len(buffer.buf)+compressed)
		copy(buf, buffer.buf)
		buffer.buf = buf
	}
}

// Buffer returns the encoded tuples not yet read.
func (buffer *Buffer) Buffer() []byte {
	return buffer.buf[buffer.off:]
}
