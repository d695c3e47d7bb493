// Package codec is the CBOR encoding shared by everything Pylon puts on
// the wire inside the secure channel: the handshake confirmation payload
// and every transfer control message.
//
// Encoding is Core Deterministic (RFC 8949 section 4.2) so equal values
// always produce equal bytes. Decoding ignores unknown fields, which lets
// a newer peer add fields without breaking an older one.
package codec
