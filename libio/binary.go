package libio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BinaryReader stops at the first error and keeps it in Err,
// so a sequence of reads can be checked once.
type BinaryReader struct {
	Order binary.ByteOrder
	Src   io.Reader
	// offset of the value read last, for error messages
	LastIndex int
	Index     int
	Err       error
}

// NewBinaryReader reads little endian values from r, r is reused when it is a reader already.
func NewBinaryReader(r io.Reader) *BinaryReader {
	if br, ok := r.(*BinaryReader); ok {
		return br
	}
	return &BinaryReader{Src: r, Order: binary.LittleEndian}
}

func (br *BinaryReader) ReadRef(data any) (ok bool) {
	if br.Err != nil {
		return false
	}
	br.Err = binary.Read(br.Src, br.Order, data)
	br.LastIndex = br.Index
	if br.Err == nil {
		br.Index += binary.Size(data)
	}
	return br.Err == nil
}

type BinaryWriter struct {
	Order binary.ByteOrder
	Dst   io.Writer
	Err   error
}

func NewBinaryWriter(w io.Writer) *BinaryWriter {
	if bw, ok := w.(*BinaryWriter); ok {
		return bw
	}
	return &BinaryWriter{Dst: w, Order: binary.LittleEndian}
}

func (bw *BinaryWriter) WriteBytes(p []byte) (ok bool) {
	if bw.Err != nil {
		return false
	}
	_, bw.Err = bw.Dst.Write(p)
	return bw.Err == nil
}

func (bw *BinaryWriter) WriteRef(data any) (ok bool) {
	if bw.Err != nil {
		return false
	}
	bw.Err = binary.Write(bw.Dst, bw.Order, data)
	return bw.Err == nil
}

// joinErr adds the sticky stream error to *err, for use in a defer.
func joinErr(err *error, streamErr error) {
	switch {
	case streamErr == nil:
	case *err == nil:
		*err = streamErr
	case *err != streamErr:
		*err = fmt.Errorf("%v: %w", *err, streamErr)
	}
}

// Finish adds the sticky error of br to *err.
func (br *BinaryReader) Finish(err *error) {
	joinErr(err, br.Err)
}

// Finish adds the sticky error of bw to *err.
func (bw *BinaryWriter) Finish(err *error) {
	joinErr(err, bw.Err)
}
