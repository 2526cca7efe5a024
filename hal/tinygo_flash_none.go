//go:build tinygo && baremetal && !(rp2040 || rp2350 || atsamd51)

package hal

func newMachineFlash() Flash { return stubFlash{} }
