package codec

// Sizer is implemented by codecs that can report an encoded size without
// producing the bytes.
type Sizer[V any] interface {
	Size(V) int
}

// Weigher derives cache weights from the encoded size of values.
// Overhead is added to every weight.
type Weigher[V any] struct {
	Codec    Codec[V]
	Overhead int64
}

// Weigh returns the weight of v.
func (w Weigher[V]) Weigh(v V) (int64, error) {
	if s, ok := w.Codec.(Sizer[V]); ok {
		return int64(s.Size(v)) + w.Overhead, nil
	}
	b, err := w.Codec.Encode(v)
	if err != nil {
		return 0, err
	}
	return int64(len(b)) + w.Overhead, nil
}

// Encode encodes v and weighs it by the encoded length in one pass.
func (w Weigher[V]) Encode(v V) ([]byte, int64, error) {
	b, err := w.Codec.Encode(v)
	if err != nil {
		return nil, 0, err
	}
	return b, int64(len(b)) + w.Overhead, nil
}
