package trace

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coheq-dsp/coheq/internal/cx"
)

// CurrentCodecVersion is stamped into every payload envelope.
const CurrentCodecVersion = 1

// ErrVersionMismatch is returned when decoding a payload written by an
// incompatible codec version.
var ErrVersionMismatch = errors.New("trace: codec version mismatch")

// Complex values are stored as parallel real/imaginary arrays since JSON
// has no complex number type.
type weightsRecord struct {
	CodecVersion int       `json:"codec_version"`
	Dims         [3]int    `json:"dims"`
	Re           []float64 `json:"re"`
	Im           []float64 `json:"im"`
}

type vectorRecord struct {
	CodecVersion int       `json:"codec_version"`
	Re           []float64 `json:"re"`
	Im           []float64 `json:"im"`
}

// EncodeWeights serializes a weight tensor into a payload envelope.
func EncodeWeights(w *cx.Tensor) ([]byte, error) {
	if w == nil {
		return nil, errors.New("trace: nil weight tensor")
	}
	rec := weightsRecord{
		CodecVersion: CurrentCodecVersion,
		Dims:         [3]int{w.D0, w.D1, w.D2},
		Re:           make([]float64, len(w.Data)),
		Im:           make([]float64, len(w.Data)),
	}
	for i, v := range w.Data {
		rec.Re[i] = real(v)
		rec.Im[i] = imag(v)
	}
	return json.Marshal(rec)
}

// DecodeWeights deserializes a payload envelope into a weight tensor.
func DecodeWeights(data []byte) (*cx.Tensor, error) {
	var rec weightsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.CodecVersion != CurrentCodecVersion {
		return nil, ErrVersionMismatch
	}
	n := rec.Dims[0] * rec.Dims[1] * rec.Dims[2]
	if len(rec.Re) != n || len(rec.Im) != n {
		return nil, fmt.Errorf("trace: weights payload has %d/%d values, want %d", len(rec.Re), len(rec.Im), n)
	}
	w := cx.ZerosTensor(rec.Dims[0], rec.Dims[1], rec.Dims[2])
	for i := range w.Data {
		w.Data[i] = complex(rec.Re[i], rec.Im[i])
	}
	return w, nil
}

// EncodeVector serializes a complex vector into a payload envelope.
func EncodeVector(v []complex128) ([]byte, error) {
	rec := vectorRecord{
		CodecVersion: CurrentCodecVersion,
		Re:           make([]float64, len(v)),
		Im:           make([]float64, len(v)),
	}
	for i, x := range v {
		rec.Re[i] = real(x)
		rec.Im[i] = imag(x)
	}
	return json.Marshal(rec)
}

// DecodeVector deserializes a payload envelope into a complex vector.
func DecodeVector(data []byte) ([]complex128, error) {
	var rec vectorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.CodecVersion != CurrentCodecVersion {
		return nil, ErrVersionMismatch
	}
	if len(rec.Re) != len(rec.Im) {
		return nil, fmt.Errorf("trace: vector payload has %d re / %d im values", len(rec.Re), len(rec.Im))
	}
	v := make([]complex128, len(rec.Re))
	for i := range v {
		v[i] = complex(rec.Re[i], rec.Im[i])
	}
	return v, nil
}
