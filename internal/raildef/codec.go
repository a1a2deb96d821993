package raildef

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMalformed is returned by Parse when the bytes are not a baked rail.
var ErrMalformed = errors.New("malformed rail definition")

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items.
var encMode cbor.EncMode

// decMode rejects duplicate keys and trailing bytes; unknown keys are ignored
// so newer bakers can add fields.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("raildef: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("raildef: CBOR decoder initialization failed: " + err.Error())
	}
}

// wireDef is the on-disk shape. Optional floats are pointers so absence is
// distinguishable from zero while decoding.
type wireDef struct {
	Name             string       `cbor:"name"`
	Ordering         int          `cbor:"ordering"`
	Positions        [][3]float64 `cbor:"positions"`
	TotalTime        *float64     `cbor:"total_time,omitempty"`
	ReliableDistance *float64     `cbor:"reliable_distance,omitempty"`
}

// Marshal encodes d as a baked rail.
func Marshal(d *Definition) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	w := wireDef{
		Name:      d.Name,
		Ordering:  d.Ordering,
		Positions: make([][3]float64, len(d.Waypoints)),
	}
	for i, p := range d.Waypoints {
		w.Positions[i] = [3]float64{p.X, p.Y, p.Z}
	}
	if d.HasTotalTime() {
		v := d.TotalTime
		w.TotalTime = &v
	}
	if d.HasReliableDistance() {
		v := d.ReliableDistance
		w.ReliableDistance = &v
	}
	return encMode.Marshal(w)
}

// Parse decodes a baked rail.
func Parse(data []byte) (*Definition, error) {
	var w wireDef
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	d := &Definition{
		Name:             w.Name,
		Ordering:         w.Ordering,
		Waypoints:        make([]r3.Vec, len(w.Positions)),
		TotalTime:        Unset,
		ReliableDistance: Unset,
	}
	for i, p := range w.Positions {
		d.Waypoints[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	if w.TotalTime != nil {
		d.TotalTime = *w.TotalTime
	}
	if w.ReliableDistance != nil {
		d.ReliableDistance = *w.ReliableDistance
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return d, nil
}

// Codec adapts Parse to the rail manager's parser contract.
type Codec struct{}

// Parse implements rail.Parser.
func (Codec) Parse(data []byte) (*Definition, error) { return Parse(data) }

// Diagnose returns CBOR diagnostic notation for a baked rail.
func Diagnose(data []byte) (string, error) { return cbor.Diagnose(data) }
