package raster

import (
	"encoding/json"
	"testing"
)

func TestElemTypeRoundTrip(t *testing.T) {
	for _, et := range []ElemType{U8, U16, U32, I32, F32, F64} {
		name := et.String()
		parsed, err := ParseElemType(name)
		if err != nil {
			t.Fatalf("ParseElemType(%q): %v", name, err)
		}
		if parsed != et {
			t.Errorf("ParseElemType(%q) = %v, want %v", name, parsed, et)
		}
	}
}

func TestElemTypeJSON(t *testing.T) {
	b, err := json.Marshal(F32)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"f32"` {
		t.Errorf("Marshal(F32) = %s, want \"f32\"", b)
	}

	var got ElemType
	if err := json.Unmarshal([]byte(`"i32"`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != I32 {
		t.Errorf("Unmarshal(i32) = %v, want I32", got)
	}
}

func TestParseElemTypeUnknown(t *testing.T) {
	if _, err := ParseElemType("i16"); err == nil {
		t.Fatal("expected an error for an unsupported element type")
	}
}

func TestIsLabelType(t *testing.T) {
	if !I32.IsLabelType() || !U32.IsLabelType() {
		t.Error("i32 and u32 must be label types")
	}
	if U8.IsLabelType() || F32.IsLabelType() {
		t.Error("u8 and f32 must not be label types")
	}
}

func TestBytes(t *testing.T) {
	cases := map[ElemType]int64{U8: 1, U16: 2, U32: 4, I32: 4, F32: 4, F64: 8}
	for et, want := range cases {
		if got := et.Bytes(); got != want {
			t.Errorf("%v.Bytes() = %d, want %d", et, got, want)
		}
	}
}
