package hal

import "testing"

func TestVirtualPinOutput(t *testing.T) {
	pin := newVirtualPin("GPIO1", GPIOCapInput|GPIOCapOutput)

	if err := pin.Write(true); err == nil {
		t.Fatal("Write() before Configure = nil, want error")
	}
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := pin.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	level, err := pin.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !level {
		t.Fatal("Read() = false after Write(true), want true")
	}
}

func TestVirtualPinPullUnsupported(t *testing.T) {
	pin := newVirtualPin("GPIO2", GPIOCapInput)

	if err := pin.Configure(GPIOModeInput, GPIOPullUp); err == nil {
		t.Fatal("Configure(pull-up) = nil, want error")
	}
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err == nil {
		t.Fatal("Configure(output) = nil, want error")
	}
}

func TestVirtualPinDriveAndPull(t *testing.T) {
	pin := newVirtualPin(PinTouchIRQ, GPIOCapInput|GPIOCapPullUp)

	if level, _ := pin.Read(); level {
		t.Fatal("undriven input without pull reads high, want floating low")
	}
	if err := pin.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if level, _ := pin.Read(); !level {
		t.Fatal("undriven input with pull-up reads low, want high")
	}

	pin.drive(false)
	if level, _ := pin.Read(); level {
		t.Fatal("Read() = true after drive(false), want false")
	}
	pin.release()
	if level, _ := pin.Read(); !level {
		t.Fatal("Read() = false after release, want pull-up level")
	}
}

func TestVirtualPinInvalidConfig(t *testing.T) {
	pin := newVirtualPin("GPIO3", GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown)
	if err := pin.Configure(GPIOMode(9), GPIOPullNone); err == nil {
		t.Fatal("Configure(bad mode) = nil, want error")
	}
	if err := pin.Configure(GPIOModeInput, GPIOPull(9)); err == nil {
		t.Fatal("Configure(bad pull) = nil, want error")
	}
}

type recordLED struct{ on bool }

func (l *recordLED) High() { l.on = true }
func (l *recordLED) Low()  { l.on = false }

func TestFindPin(t *testing.T) {
	led := &recordLED{}
	g := newVirtualGPIO([]GPIOPin{
		newLEDPin(PinBacklight, led),
		newVirtualPin(PinTouchIRQ, GPIOCapInput),
	})

	bk := FindPin(g, PinBacklight)
	if bk == nil {
		t.Fatalf("FindPin(%q) = nil", PinBacklight)
	}
	if err := bk.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !led.on {
		t.Fatal("backlight LED not driven high")
	}
	if p := FindPin(g, "NOPE"); p != nil {
		t.Fatalf("FindPin(NOPE) = %v, want nil", p.Name())
	}
	if p := FindPin(nil, PinBacklight); p != nil {
		t.Fatal("FindPin(nil) != nil")
	}
}
