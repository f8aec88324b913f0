// internal/registry/codec_test.go
package registry

import (
	"errors"
	"math"
	"testing"
)

func TestDecode_UInt32HighWordFirst(t *testing.T) {
	// Countdown time register: two words, high word at the lower address,
	// value directly in seconds. (0x0000, 0x0258) -> 600.
	d := Descriptor{Name: "countdown_mode_time", Address: 1110, Kind: InputRegister, Type: UInt32, Scale: 1}

	v, err := Decode(d, []uint16{0x0000, 0x0258})
	if err != nil {
		t.Fatalf("Decode() err=%v", err)
	}
	if v.Num != 600 {
		t.Fatalf("expected 600, got %v", v.Num)
	}
}

func TestDecode_UInt32Composition(t *testing.T) {
	d := Descriptor{Name: "u32", Address: 0, Type: UInt32, Scale: 1}

	v, err := Decode(d, []uint16{0x0001, 0x0002})
	if err != nil {
		t.Fatalf("Decode() err=%v", err)
	}
	if want := float64(0x00010002); v.Num != want {
		t.Fatalf("expected %v, got %v", want, v.Num)
	}
}

func TestDecode_Int16SignedWithScale(t *testing.T) {
	d := Descriptor{Name: "outdoor_temperature", Address: 12101, Kind: InputRegister, Type: Int16, Scale: 0.1}

	v, err := Decode(d, []uint16{0xFFCE}) // -50 raw
	if err != nil {
		t.Fatalf("Decode() err=%v", err)
	}
	if math.Abs(v.Num-(-5.0)) > 1e-9 {
		t.Fatalf("expected -5.0, got %v", v.Num)
	}
}

func TestDecode_Bool(t *testing.T) {
	d := Descriptor{Name: "filter_alarm", Address: 15141, Type: Bool, Scale: 1}

	v, err := Decode(d, []uint16{1})
	if err != nil {
		t.Fatalf("Decode() err=%v", err)
	}
	if !v.Bool {
		t.Fatalf("expected true")
	}

	v, err = Decode(d, []uint16{0})
	if err != nil {
		t.Fatalf("Decode() err=%v", err)
	}
	if v.Bool {
		t.Fatalf("expected false")
	}
}

func TestDecode_WordCountMismatch(t *testing.T) {
	d := Descriptor{Name: "u32", Address: 0, Type: UInt32, Scale: 1}

	_, err := Decode(d, []uint16{0x0001})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func TestEncode_RoundTrip32Bit(t *testing.T) {
	d := Descriptor{Name: "filter_replacement_time", Address: 7001, Type: UInt32, Scale: 1, Access: ReadWrite}

	for _, want := range []float64{0, 1, 600, 65536, 4294967295} {
		words, err := Encode(d, NumValue(d, want))
		if err != nil {
			t.Fatalf("Encode(%v) err=%v", want, err)
		}
		if len(words) != 2 {
			t.Fatalf("Encode(%v): expected 2 words, got %d", want, len(words))
		}

		got, err := Decode(d, words)
		if err != nil {
			t.Fatalf("Decode() err=%v", err)
		}
		if got.Num != want {
			t.Fatalf("round trip: want %v, got %v", want, got.Num)
		}
	}
}

func TestEncode_RoundTripScaled(t *testing.T) {
	d := Descriptor{Name: "supply_air_setpoint", Address: 2000, Type: UInt16, Scale: 0.1, Access: ReadWrite}

	words, err := Encode(d, NumValue(d, 21.5))
	if err != nil {
		t.Fatalf("Encode() err=%v", err)
	}
	if words[0] != 215 {
		t.Fatalf("expected raw 215, got %d", words[0])
	}

	got, err := Decode(d, words)
	if err != nil {
		t.Fatalf("Decode() err=%v", err)
	}
	if math.Abs(got.Num-21.5) > 1e-9 {
		t.Fatalf("round trip: want 21.5, got %v", got.Num)
	}
}

func TestEncode_ReadOnlyRejected(t *testing.T) {
	d := Descriptor{Name: "saf_speed_rpm", Address: 12400, Type: UInt16, Scale: 1, Access: ReadOnly}

	_, err := Encode(d, NumValue(d, 1))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EncodeError, got %T", err)
	}
}

func TestEncode_Overflow(t *testing.T) {
	d := Descriptor{Name: "eco_mode", Address: 2504, Type: UInt16, Scale: 1, Access: ReadWrite}

	if _, err := Encode(d, NumValue(d, 70000)); err == nil {
		t.Fatalf("expected overflow error, got nil")
	}
	if _, err := Encode(d, NumValue(d, -1)); err == nil {
		t.Fatalf("expected underflow error, got nil")
	}
}

func TestEncode_Int16Negative(t *testing.T) {
	d := Descriptor{Name: "free_cooling_daytime_min_temp", Address: 4101, Type: Int16, Scale: 0.1, Access: ReadWrite}

	words, err := Encode(d, NumValue(d, -5.0))
	if err != nil {
		t.Fatalf("Encode() err=%v", err)
	}
	if words[0] != 0xFFCE {
		t.Fatalf("expected 0xFFCE, got 0x%04X", words[0])
	}
}
