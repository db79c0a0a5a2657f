package codec

import "google.golang.org/protobuf/proto"

// Protobuf is a Codec for generated protobuf messages.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.Counter { return &pb.Counter{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// Size reports the encoded size of v without marshaling it.
func (c Protobuf[T]) Size(v T) int { return proto.Size(v) }
