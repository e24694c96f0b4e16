package bits

import "testing"

func TestHalfCarryAdd8(t *testing.T) {
	cases := []struct {
		a, b, cin byte
		want      bool
	}{
		{0x0F, 0x01, 0, true},
		{0x0E, 0x01, 0, false},
		{0x0E, 0x01, 1, true},
		{0x3A, 0xC6, 0, true}, // 0xA + 0x6 = 0x10
		{0x00, 0x00, 0, false},
	}
	for _, c := range cases {
		if got := HalfCarryAdd8(c.a, c.b, c.cin); got != c.want {
			t.Fatalf("HalfCarryAdd8(%02X,%02X,%d) got %v want %v", c.a, c.b, c.cin, got, c.want)
		}
	}
}

func TestCarryAdd8(t *testing.T) {
	if !CarryAdd8(0x3A, 0xC6, 0) {
		t.Fatalf("0x3A+0xC6 must carry")
	}
	if CarryAdd8(0x7F, 0x7F, 0) {
		t.Fatalf("0x7F+0x7F must not carry")
	}
	if !CarryAdd8(0xFF, 0x00, 1) {
		t.Fatalf("0xFF+0+1 must carry")
	}
}

func TestBorrowSub8(t *testing.T) {
	if !BorrowSub8(0x00, 0x01, 0) {
		t.Fatalf("0-1 must borrow")
	}
	if BorrowSub8(0x01, 0x01, 0) {
		t.Fatalf("1-1 must not borrow")
	}
	if !BorrowSub8(0x01, 0x01, 1) {
		t.Fatalf("1-1-1 must borrow")
	}
}

func TestHalfBorrowSub8(t *testing.T) {
	if !HalfBorrowSub8(0x10, 0x01, 0) {
		t.Fatalf("low nibble 0 < 1 must half-borrow")
	}
	if HalfBorrowSub8(0x1F, 0x01, 0) {
		t.Fatalf("0xF - 1 must not half-borrow")
	}
	if !HalfBorrowSub8(0x1F, 0x0F, 1) {
		t.Fatalf("0xF - 0xF - 1 must half-borrow")
	}
}

func Test16BitPredicates(t *testing.T) {
	if !HalfCarryAdd16(0x0FFF, 0x0001) {
		t.Fatalf("carry out of bit 11 expected")
	}
	if HalfCarryAdd16(0x0EFF, 0x0100) {
		t.Fatalf("no carry out of bit 11 expected")
	}
	if !CarryAdd16(0x8000, 0x8000) {
		t.Fatalf("carry out of bit 15 expected")
	}
	if CarryAdd16(0x7FFF, 0x8000) {
		t.Fatalf("no carry out of bit 15 expected")
	}
}

func TestSwapNibblesIsInvolution(t *testing.T) {
	if got := SwapNibbles(0xA5); got != 0x5A {
		t.Fatalf("SwapNibbles(0xA5) got %02X want 5A", got)
	}
	for v := 0; v < 256; v++ {
		if got := SwapNibbles(SwapNibbles(byte(v))); got != byte(v) {
			t.Fatalf("SwapNibbles twice not identity for %02X", v)
		}
	}
}

func TestSignExtend8(t *testing.T) {
	if got := SignExtend8(0xFE); got != -2 {
		t.Fatalf("SignExtend8(0xFE) got %d want -2", got)
	}
	if got := SignExtend8(0x7F); got != 127 {
		t.Fatalf("SignExtend8(0x7F) got %d want 127", got)
	}
	if got := SignExtend8(0x80); got != -128 {
		t.Fatalf("SignExtend8(0x80) got %d want -128", got)
	}
}

func TestBitHelpers(t *testing.T) {
	if !Bit(0x80, 7) || Bit(0x80, 0) {
		t.Fatalf("Bit misreads 0x80")
	}
	if got := SetBit(0x00, 4); got != 0x10 {
		t.Fatalf("SetBit got %02X want 10", got)
	}
	if got := ResBit(0xFF, 4); got != 0xEF {
		t.Fatalf("ResBit got %02X want EF", got)
	}
}
