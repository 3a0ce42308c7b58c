// Package flp decodes FL Studio project files into a navigable object
// graph without interpreting their musical meaning.
//
// An FLP file is two chunks: an "FLhd" header carrying the format tag,
// channel count, and PPQ resolution, followed by an "FLdt" chunk holding a
// flat event stream. Event IDs encode their payload width (below 64 one
// byte, below 128 one word, below 192 one dword, otherwise a varint
// length-prefixed blob, all little-endian). Channel and pattern events set
// a cursor that subsequent events apply to, so decoding is a single
// stateful pass.
//
// The decoder keeps the raw bytes and the undecoded event list alongside
// the assembled graph so callers can fall back to low-level bounds-checked
// reads when a field moved between format versions.
package flp
