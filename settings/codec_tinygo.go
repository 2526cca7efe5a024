//go:build tinygo

package settings

import (
	"encoding/binary"
	"errors"
	"math"

	"rgbtouch/calib"
)

const codecID = 2

func encode(k calib.Coefficients) ([]byte, error) {
	b := make([]byte, 0, 6*8)
	for _, v := range [...]float64{k.A, k.B, k.C, k.D, k.E, k.F} {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b, nil
}

func decode(b []byte) (calib.Coefficients, error) {
	if len(b) != 6*8 {
		return calib.Coefficients{}, errors.New("short payload")
	}
	var v [6]float64
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return calib.Coefficients{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}, nil
}
