package sink

import (
	"bytes"

	"github.com/danmuck/collectdin/internal/protocol/netprot"
	"github.com/vmihailenco/msgpack/v5"
)

// Buffer collects decoded records as a MessagePack byte stream. It is not
// safe for concurrent use; listener workers each own one.
type Buffer struct {
	buf bytes.Buffer
	enc *msgpack.Encoder
}

func NewBuffer() *Buffer {
	b := &Buffer{}
	b.enc = msgpack.NewEncoder(&b.buf)
	return b
}

// Emitter returns the encoder that netprot writes records into.
func (b *Buffer) Emitter() netprot.Emitter {
	return b.enc
}

// Bytes aliases the internal buffer until the next Reset or write.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Buffer) Len() int {
	return b.buf.Len()
}

func (b *Buffer) Reset() {
	b.buf.Reset()
}
