package st7789

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// wireOp is one SPI transfer together with the DC level it was sent under.
type wireOp struct {
	dc gpio.Level
	w  []byte
}

// wireRecorder captures every transfer so tests can assert exact framing.
type wireRecorder struct {
	dc  gpio.Level
	ops []wireOp
}

func (r *wireRecorder) Tx(w, _ []byte) error {
	r.ops = append(r.ops, wireOp{dc: r.dc, w: append([]byte(nil), w...)})
	return nil
}

func (r *wireRecorder) TxPackets(p []spi.Packet) error {
	return errors.New("not implemented")
}

func (r *wireRecorder) String() string {
	return "wireRecorder"
}

func (r *wireRecorder) Duplex() conn.Duplex {
	return conn.Half
}

// recordingDC mirrors the DC line level into the recorder so transfers can
// be classified as command or data.
type recordingDC struct {
	gpiotest.Pin
	rec *wireRecorder
}

func (p *recordingDC) Out(l gpio.Level) error {
	p.rec.dc = l
	return p.Pin.Out(l)
}

// portRecorder hands out the recorder as the port's connection.
type portRecorder struct {
	rec *wireRecorder
}

func (p *portRecorder) String() string {
	return "portRecorder"
}

func (p *portRecorder) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	return p.rec, nil
}

// orderPin logs every level change into a shared sequence so tests can
// assert cross-pin ordering.
type orderPin struct {
	gpiotest.Pin
	name string
	log  *[]string
}

func (p *orderPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, fmt.Sprintf("%s:%s", p.name, l))
	return p.Pin.Out(l)
}

func newTestDev(rot Rotation) (*Dev, *wireRecorder) {
	rec := &wireRecorder{}
	d := &Dev{
		w:        &wire{c: rec, dc: &recordingDC{Pin: gpiotest.Pin{N: "DC", Num: 25}, rec: rec}},
		rst:      &gpiotest.Pin{N: "RST", Num: 27},
		bl:       &gpiotest.Pin{N: "BL", Num: 24},
		rect:     image.Rect(0, 0, 240, 240),
		rotation: rot,
		inverted: true,
	}
	return d, rec
}

// commandBytes extracts the command opcodes in wire order.
func commandBytes(rec *wireRecorder) []byte {
	var cmds []byte
	for _, op := range rec.ops {
		if op.dc == gpio.Low {
			cmds = append(cmds, op.w...)
		}
	}
	return cmds
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Opts
	}{
		{"zero width", Opts{W: 0, H: 240, RST: &gpiotest.Pin{}}},
		{"negative height", Opts{W: 240, H: -1, RST: &gpiotest.Pin{}}},
		{"rotated non-square", Opts{W: 240, H: 320, Rotation: Rotate90, RST: &gpiotest.Pin{}}},
		{"missing reset pin", Opts{W: 240, H: 240}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation fails before the port is touched, so nil is safe.
			_, err := NewSPI(nil, &gpiotest.Pin{N: "DC"}, &tt.opts)
			if err == nil {
				t.Fatal("expected error but didn't get one")
			}
			var ce ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}

func TestInitSequence(t *testing.T) {
	d, rec := newTestDev(Rotate90)
	if err := d.hardReset(); err != nil {
		t.Fatal(err)
	}
	if err := d.init(); err != nil {
		t.Fatal(err)
	}

	want := []byte{cmdSLPOUT, cmdMADCTL, cmdCOLMOD, cmdINVON, cmdDISPON}
	if got := commandBytes(rec); !bytes.Equal(got, want) {
		t.Errorf("command sequence = %# x, want %# x", got, want)
	}

	// MADCTL keeps the reset orientation, COLMOD selects 16bpp.
	var params [][]byte
	for _, op := range rec.ops {
		if op.dc == gpio.High {
			params = append(params, op.w)
		}
	}
	if len(params) != 2 {
		t.Fatalf("data phases = %d, want 2", len(params))
	}
	if !bytes.Equal(params[0], []byte{0x00}) {
		t.Errorf("MADCTL param = %# x, want 00", params[0])
	}
	if !bytes.Equal(params[1], []byte{0x05}) {
		t.Errorf("COLMOD param = %# x, want 05", params[1])
	}
}

func TestBacklightRaisedBeforeReset(t *testing.T) {
	rec := &wireRecorder{}
	var log []string
	opts := Opts{
		W:        240,
		H:        240,
		Rotation: Rotate90,
		Inverted: true,
		RST:      &orderPin{Pin: gpiotest.Pin{N: "RST", Num: 27}, name: "RST", log: &log},
		BL:       &orderPin{Pin: gpiotest.Pin{N: "BL", Num: 24}, name: "BL", log: &log},
	}

	_, err := NewSPI(&portRecorder{rec: rec}, &recordingDC{Pin: gpiotest.Pin{N: "DC", Num: 25}, rec: rec}, &opts)
	if err != nil {
		t.Fatal(err)
	}

	// The panel is lit from the first moment, before the reset pulse puts
	// it through its dark bring-up window.
	if len(log) == 0 || log[0] != "BL:High" {
		t.Fatalf("pin sequence = %v, want backlight high first", log)
	}
	want := []byte{cmdSLPOUT, cmdMADCTL, cmdCOLMOD, cmdINVON, cmdDISPON}
	if got := commandBytes(rec); !bytes.Equal(got, want) {
		t.Errorf("command sequence = %# x, want %# x", got, want)
	}
}

func TestSetAddressWindowFullFrame(t *testing.T) {
	d, rec := newTestDev(Rotate90)
	if err := d.SetAddressWindow(0, 0, 239, 239); err != nil {
		t.Fatal(err)
	}

	if len(rec.ops) != 4 {
		t.Fatalf("ops = %d, want 4", len(rec.ops))
	}
	wantWindow := []byte{0x00, 0x00, 0x00, 0xEF}
	checks := []struct {
		name string
		op   wireOp
		dc   gpio.Level
		w    []byte
	}{
		{"column command", rec.ops[0], gpio.Low, []byte{cmdCASET}},
		{"column window", rec.ops[1], gpio.High, wantWindow},
		{"row command", rec.ops[2], gpio.Low, []byte{cmdRASET}},
		{"row window", rec.ops[3], gpio.High, wantWindow},
	}
	for _, c := range checks {
		if c.op.dc != c.dc || !bytes.Equal(c.op.w, c.w) {
			t.Errorf("%s: dc=%v bytes=%# x, want dc=%v bytes=%# x", c.name, c.op.dc, c.op.w, c.dc, c.w)
		}
	}
}

func TestSetAddressWindowValidation(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
	}{
		{"x1 before x0", 10, 0, 5, 239},
		{"y1 before y0", 0, 10, 239, 5},
		{"negative x0", -1, 0, 239, 239},
		{"negative y0", 0, -1, 239, 239},
		{"x1 at width", 0, 0, 240, 239},
		{"y1 at height", 0, 0, 239, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec := newTestDev(Rotate90)
			err := d.SetAddressWindow(tt.x0, tt.y0, tt.x1, tt.y1)
			if err == nil {
				t.Fatal("expected error but didn't get one")
			}
			var ce ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("error = %v, want ConfigError", err)
			}
			if len(rec.ops) != 0 {
				t.Errorf("bus writes = %d, want 0", len(rec.ops))
			}
		})
	}
}

func TestDataChunking(t *testing.T) {
	rec := &wireRecorder{}
	w := &wire{c: rec, dc: &recordingDC{Pin: gpiotest.Pin{N: "DC"}, rec: rec}}

	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := w.data(payload); err != nil {
		t.Fatal(err)
	}

	wantLens := []int{4096, 4096, 1808}
	if len(rec.ops) != len(wantLens) {
		t.Fatalf("chunks = %d, want %d", len(rec.ops), len(wantLens))
	}
	var joined []byte
	for i, op := range rec.ops {
		if op.dc != gpio.High {
			t.Errorf("chunk %d sent with DC low", i)
		}
		if len(op.w) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len(op.w), wantLens[i])
		}
		joined = append(joined, op.w...)
	}
	if !bytes.Equal(joined, payload) {
		t.Error("concatenated chunks do not reproduce the payload")
	}
}

func TestFlushBlackFrame(t *testing.T) {
	d, rec := newTestDev(Rotate90)
	canvas := image.NewRGBA(image.Rect(0, 0, 240, 240))

	if err := d.Flush(canvas); err != nil {
		t.Fatal(err)
	}

	want := []byte{cmdCASET, cmdRASET, cmdRAMWR}
	if got := commandBytes(rec); !bytes.Equal(got, want) {
		t.Fatalf("command sequence = %# x, want %# x", got, want)
	}

	// Everything after the memory write command is one logical data phase.
	var ramStart int
	for i, op := range rec.ops {
		if op.dc == gpio.Low && op.w[0] == cmdRAMWR {
			ramStart = i + 1
		}
	}
	var frame []byte
	for _, op := range rec.ops[ramStart:] {
		if op.dc != gpio.High {
			t.Fatal("command byte interleaved in pixel data phase")
		}
		frame = append(frame, op.w...)
	}
	if len(frame) != 240*240*2 {
		t.Fatalf("frame length = %d, want %d", len(frame), 240*240*2)
	}
	for i, b := range frame {
		if b != 0x00 {
			t.Fatalf("frame[%d] = %#x, want 0x00", i, b)
		}
	}
}

func TestFlushCanvasSizeMismatch(t *testing.T) {
	d, rec := newTestDev(NoRotation)
	err := d.Flush(image.NewRGBA(image.Rect(0, 0, 128, 64)))
	if err == nil {
		t.Fatal("expected error but didn't get one")
	}
	var ce ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("error = %v, want ConfigError", err)
	}
	if len(rec.ops) != 0 {
		t.Errorf("bus writes = %d, want 0", len(rec.ops))
	}
}

func TestSleepIsIdempotent(t *testing.T) {
	d, rec := newTestDev(NoRotation)
	if err := d.Sleep(true); err != nil {
		t.Fatal(err)
	}
	if err := d.Sleep(true); err != nil {
		t.Fatal(err)
	}
	if got := commandBytes(rec); !bytes.Equal(got, []byte{cmdSLPIN}) {
		t.Errorf("command sequence = %# x, want a single SLPIN", got)
	}
}

func TestDevString(t *testing.T) {
	d, _ := newTestDev(NoRotation)
	if got, want := d.String(), "st7789.Dev{240x240}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
