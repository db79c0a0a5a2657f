// Package codec (de)serializes cached state values. The cache itself stores
// decoded values; codecs are used at its edges, to talk to the remote state
// service and to derive entry weights from encoded size.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
