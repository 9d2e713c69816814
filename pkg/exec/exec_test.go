package exec

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/bassosimone/strategic-communication/pkg/lang"
	"github.com/bassosimone/strategic-communication/pkg/parser"
	"github.com/bassosimone/strategic-communication/pkg/program"
)

func instrIncrement(r lang.Register) program.Instruction {
	return program.Instruction{Opcode: lang.OpIncrement, Reg1: r}
}

func instrNegate(r lang.Register) program.Instruction {
	return program.Instruction{Opcode: lang.OpNegate, Reg1: r}
}

func instrHalve(r lang.Register) program.Instruction {
	return program.Instruction{Opcode: lang.OpHalve, Reg1: r}
}

func instrAlignReg(dst, src lang.Register) program.Instruction {
	return program.Instruction{Opcode: lang.OpAlign, Reg1: dst, Reg2: src}
}

func run(t *testing.T, src string, stdin string, random RandomSource) (string, *Machine, error) {
	t.Helper()
	prog, err := parser.ParseProgram([]byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	m := New(strings.NewReader(stdin), &out, random)
	err = m.Run(prog)
	return out.String(), m, err
}

func TestWrappingIncrement(t *testing.T) {
	// S4: with assets set directly to MaxInt32, one more increment
	// wraps to MinInt32.
	m := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
	m.Registers[lang.Assets] = math.MaxInt32
	if _, err := m.step(instrIncrement(lang.Assets)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Registers[lang.Assets]; got != math.MinInt32 {
		t.Errorf("assets = %d, want %d", got, math.MinInt32)
	}
}

func TestDoubleNegateIsIdempotentExceptMinInt32(t *testing.T) {
	m := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
	for _, v := range []int32{0, 1, -1, 42, -42, math.MaxInt32} {
		m.Registers[lang.Assets] = v
		m.step(instrNegate(lang.Assets))
		m.step(instrNegate(lang.Assets))
		if got := m.Registers[lang.Assets]; got != v {
			t.Errorf("double negate of %d = %d, want %d", v, got, v)
		}
	}
	// The minimum value also round-trips, because both negations wrap
	// back to the same bit pattern.
	m.Registers[lang.Assets] = math.MinInt32
	m.step(instrNegate(lang.Assets))
	if got := m.Registers[lang.Assets]; got != math.MinInt32 {
		t.Errorf("negate(MinInt32) = %d, want %d (wraps to itself)", got, math.MinInt32)
	}
}

func TestHalveTruncatesTowardZero(t *testing.T) {
	cases := []struct{ in, want int32 }{
		{7, 3}, {-7, -3}, {0, 0}, {1, 0}, {-1, 0},
	}
	for _, c := range cases {
		m := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
		m.Registers[lang.Assets] = c.in
		m.step(instrHalve(lang.Assets))
		if got := m.Registers[lang.Assets]; got != c.want {
			t.Errorf("halve(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCrowdsourceEOFYieldsMinusOne(t *testing.T) {
	// S5: with empty stdin, crowdsource leaves the register at -1, and
	// the following restructure (jump-if-negative) must take the jump.
	_, m, err := run(t,
		"crowdsource customer experience\nrestructure customer experience to done\ninnovate revenue streams\nmoving forward, done\n",
		"", &FixedRandomSource{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Registers[lang.CustomerExperience]; got != -1 {
		t.Errorf("customer experience = %d, want -1", got)
	}
	if got := m.Registers[lang.RevenueStreams]; got != 0 {
		t.Errorf("revenue streams = %d, want 0 (restructure should have jumped over the innovate)", got)
	}
}

func TestPivotJumpsOnZero(t *testing.T) {
	// S6: a freshly overhauled (negated) zero register is still zero,
	// so pivot jumps; after incrementing it, it no longer does.
	src := "revamp revenue streams\npivot revenue streams to target\ninnovate customer experience\nmoving forward, target\n"
	prog, err := parser.ParseProgram([]byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
	if err := m.Run(prog); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got := m.Registers[lang.CustomerExperience]; got != 0 {
		t.Errorf("customer experience = %d, want 0 (pivot should have jumped over the innovate)", got)
	}

	// Now starting from a nonzero register, the same pivot must not jump.
	src2 := "innovate revenue streams\npivot revenue streams to target\ninnovate customer experience\nmoving forward, target\n"
	prog2, err := parser.ParseProgram([]byte(src2))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m2 := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
	if err := m2.Run(prog2); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got := m2.Registers[lang.CustomerExperience]; got != 1 {
		t.Errorf("customer experience = %d, want 1 (pivot should not have jumped)", got)
	}
}

func TestDeliverRejectsInvalidScalars(t *testing.T) {
	cases := []int32{-1, 0x110000, 0xD800, 0xDFFF}
	for _, v := range cases {
		m := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
		m.Registers[lang.Assets] = v
		if err := m.deliver(lang.Assets); !errors.Is(err, lang.ErrInvalidUnicode) {
			t.Errorf("deliver(%d) err = %v, want ErrInvalidUnicode", v, err)
		}
	}
}

func TestAlignRoundTrip(t *testing.T) {
	m := New(strings.NewReader(""), &bytes.Buffer{}, &FixedRandomSource{})
	m.Registers[lang.RevenueStreams] = 77
	m.step(instrAlignReg(lang.Assets, lang.RevenueStreams))
	if got := m.Registers[lang.Assets]; got != 77 {
		t.Errorf("assets = %d, want 77", got)
	}
	m.Registers[lang.RevenueStreams] = 99 // later mutation must not retroactively change assets
	if got := m.Registers[lang.Assets]; got != 77 {
		t.Errorf("assets = %d, want 77 (align is a snapshot, not a live alias)", got)
	}
}

func TestPrintDigitsZeroThroughNine(t *testing.T) {
	// S1: the canonical "print 0..9 separated by newlines" program.
	src := `align assets with HR
align best practices with Finance and Manufacturing
align stakeholder engagement with Engineering and HR
align key performance indicators with Engineering and HR
moving forward, loop
align revenue streams with assets
synergize revenue streams and best practices
deliver revenue streams
deliver stakeholder engagement
innovate assets
streamline key performance indicators
pivot key performance indicators to done
circle back to loop
moving forward, done
`
	out, _, err := run(t, src, "", &FixedRandomSource{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}
