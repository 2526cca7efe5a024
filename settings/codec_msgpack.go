//go:build !tinygo

package settings

import (
	"rgbtouch/calib"

	"github.com/vmihailenco/msgpack/v5"
)

const codecID = 1

type record struct {
	A float64 `msgpack:"a"`
	B float64 `msgpack:"b"`
	C float64 `msgpack:"c"`
	D float64 `msgpack:"d"`
	E float64 `msgpack:"e"`
	F float64 `msgpack:"f"`
}

func encode(k calib.Coefficients) ([]byte, error) {
	return msgpack.Marshal(&record{A: k.A, B: k.B, C: k.C, D: k.D, E: k.E, F: k.F})
}

func decode(b []byte) (calib.Coefficients, error) {
	var r record
	if err := msgpack.Unmarshal(b, &r); err != nil {
		return calib.Coefficients{}, err
	}
	return calib.Coefficients{A: r.A, B: r.B, C: r.C, D: r.D, E: r.E, F: r.F}, nil
}
