// Package xpt2046 reads raw touch samples from an XPT2046 resistive
// touchscreen controller over SPI.
package xpt2046

import (
	"tinygo.org/x/drivers"

	"github.com/touchplate/touchplate/internal/display"
	"github.com/touchplate/touchplate/internal/touch"
)

// Control bytes: start bit, channel select, 12-bit differential mode.
const (
	cmdReadZ1 = 0xB1
	cmdReadZ2 = 0xC1
	cmdReadX  = 0xD1
	cmdReadY  = 0x91
)

// adcMax is the controller's 12-bit coordinate span upper bound, also
// used to flip coordinates for the rotation transform.
const adcMax = 4095

// Default pressure thresholds: minimum Z treated as a press, and the
// lower level at which the interrupt flag clears.
const (
	DefaultZThreshold    = 400
	DefaultZThresholdIRQ = 75
)

// OutputPin drives the device-select line.
type OutputPin interface {
	High()
	Low()
}

// InputPin reads the active-low touch interrupt line.
type InputPin interface {
	Get() bool
}

// Config holds the device configuration.
type Config struct {
	Rotation      display.Rotation
	ZThreshold    int16
	ZThresholdIRQ int16
}

// Device is an XPT2046 on an SPI bus with one chip-select line and an
// optional interrupt line.
type Device struct {
	bus drivers.SPI
	cs  OutputPin
	irq InputPin

	rotation      display.Rotation
	zThreshold    int16
	zThresholdIRQ int16

	xraw int16
	yraw int16
	zraw int16
}

// Ensure the device can feed the event detector.
var _ touch.Source = (*Device)(nil)

// New returns a device on the given bus. irq may be nil when the
// interrupt line is not wired.
func New(bus drivers.SPI, cs OutputPin, irq InputPin) *Device {
	cs.High()
	return &Device{
		bus:           bus,
		cs:            cs,
		irq:           irq,
		rotation:      display.Rotation90,
		zThreshold:    DefaultZThreshold,
		zThresholdIRQ: DefaultZThresholdIRQ,
	}
}

// Configure applies rotation and pressure thresholds. Zero thresholds
// select the defaults.
func (d *Device) Configure(cfg Config) {
	d.SetRotation(cfg.Rotation)
	zt, zti := cfg.ZThreshold, cfg.ZThresholdIRQ
	if zt == 0 {
		zt = DefaultZThreshold
	}
	if zti == 0 {
		zti = DefaultZThresholdIRQ
	}
	d.SetThresholds(zt, zti)
}

// SetRotation sets the coordinate rotation, normalized modulo 4. It must
// match the display rotation for the mapper's defaults to line up.
func (d *Device) SetRotation(r display.Rotation) {
	d.rotation = r % 4
}

// SetThresholds sets the press threshold and the interrupt-clear
// threshold, which sits below it.
func (d *Device) SetThresholds(press, irqClear int16) {
	d.zThreshold = press
	d.zThresholdIRQ = irqClear
}

// Touched reports whether a press at or above the Z threshold is active.
// With the interrupt line wired, an idle line (high) short-circuits the
// bus read.
func (d *Device) Touched() bool {
	if d.irq != nil && d.irq.Get() {
		return false
	}
	d.update()
	return d.zraw >= d.zThreshold
}

// ReadSample reads the current coordinates and pressure. Below the press
// threshold the previous coordinates are kept and pressure reads zero.
func (d *Device) ReadSample() touch.Sample {
	d.update()
	return touch.Sample{X: d.xraw, Y: d.yraw, Z: d.zraw}
}

// update performs one full acquisition: pressure first, and only when it
// clears the threshold, three coordinate reads per axis reduced with
// best-two-of-three averaging to reject outlier samples.
func (d *Device) update() {
	z1 := int16(d.readChannel(cmdReadZ1))
	z2 := int16(d.readChannel(cmdReadZ2))
	z := z1 + adcMax - z2

	if z < d.zThreshold {
		d.zraw = 0
		return
	}
	d.zraw = z

	x := bestTwoAvg(d.readChannel(cmdReadX), d.readChannel(cmdReadX), d.readChannel(cmdReadX))
	y := bestTwoAvg(d.readChannel(cmdReadY), d.readChannel(cmdReadY), d.readChannel(cmdReadY))

	// The panel's native axes don't follow the display's logical
	// orientation; remap per rotation.
	switch d.rotation {
	case display.Rotation0:
		d.xraw = int16(adcMax - y)
		d.yraw = int16(x)
	case display.Rotation90:
		d.xraw = int16(x)
		d.yraw = int16(y)
	case display.Rotation180:
		d.xraw = int16(y)
		d.yraw = int16(adcMax - x)
	case display.Rotation270:
		d.xraw = int16(adcMax - x)
		d.yraw = int16(adcMax - y)
	}
}

// readChannel issues one conversion command and reads the 12-bit result.
func (d *Device) readChannel(cmd byte) uint16 {
	d.cs.Low()
	defer d.cs.High()

	_, _ = d.bus.Transfer(cmd)
	// One leading busy bit, 12 data bits, then padding.
	hi, _ := d.bus.Transfer(0x00)
	lo, _ := d.bus.Transfer(0x00)
	return (uint16(hi)<<8 | uint16(lo)) >> 3
}

// bestTwoAvg averages the two closest of three readings.
func bestTwoAvg(a, b, c uint16) uint16 {
	da := delta(a, b)
	db := delta(a, c)
	dc := delta(b, c)

	switch {
	case da <= db && da <= dc:
		return (a + b) / 2
	case db <= dc:
		return (a + c) / 2
	default:
		return (b + c) / 2
	}
}

// delta returns the absolute difference of two readings.
func delta(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}
