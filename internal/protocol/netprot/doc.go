// Package netprot decodes the collectd binary network protocol.
//
// Ownership boundary:
// - part dispatch over one datagram (tlv framing lives in protocol/tlv)
// - header accumulation across the parts of that datagram
// - value decoding against a schema.Lookup
// - record writes through the Emitter primitive interface
//
// Socket handling, types.db loading and the serialization sink are owned by
// the caller.
package netprot
