package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runOK(t *testing.T, o options) string {
	t.Helper()
	var out bytes.Buffer
	if err := run(&out, o); err != nil {
		t.Fatalf("run(%+v) error = %v", o, err)
	}
	return out.String()
}

func TestRunEditsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")

	if got := runOK(t, options{flash: path}); !strings.HasPrefix(got, "no calibration") {
		t.Fatalf("fresh image: %q", got)
	}
	got := runOK(t, options{flash: path, set: "1, 0, 0, 0, 1, 0"})
	if !strings.Contains(got, "x=1.00000*rx+0.00000*ry+0.0") {
		t.Fatalf("after -set: %q", got)
	}
	if got := runOK(t, options{flash: path}); !strings.HasPrefix(got, "calibration at") {
		t.Fatalf("reopened image: %q", got)
	}
	if got := runOK(t, options{flash: path, clear: true}); !strings.HasPrefix(got, "no calibration") {
		t.Fatalf("after -clear: %q", got)
	}
}

func TestRunComputesFromRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")
	// Identity panel: raw readings equal the 100x100 targets.
	got := runOK(t, options{flash: path, raw: "15,15 85,50 50,85", width: 100, height: 100})
	if !strings.HasPrefix(got, "calibration at") || !strings.Contains(got, "x=1.00000*rx") {
		t.Fatalf("after -raw: %q", got)
	}
}

func TestRunErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")
	tests := []struct {
		name string
		o    options
		want string
	}{
		{"exclusive", options{flash: path, set: "1,0,0,0,1,0", clear: true}, "exclusive"},
		{"count", options{flash: path, set: "1,2,3"}, "want 6"},
		{"number", options{flash: path, set: "1,0,0,0,x,0"}, "coefficient 5"},
		{"singular", options{flash: path, set: "0,0,0,0,0,0"}, "not usable"},
		{"points", options{flash: path, raw: "1,2 3,4"}, "want 3"},
		{"point syntax", options{flash: path, raw: "1,2 3 5,6"}, "point 2"},
		{"collinear", options{flash: path, raw: "0,0 10,10 20,20", width: 100, height: 100}, "collinear"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(&bytes.Buffer{}, tt.o)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("run() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
