// Package exec implements the Strategic Communication executor: it
// runs a linked Program against a register file and a program counter,
// exchanging bytes with stdin/stdout and drawing digits from an
// injected random source.
package exec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/bassosimone/strategic-communication/pkg/lang"
	"github.com/bassosimone/strategic-communication/pkg/program"
)

// RandomSource is the abstract digit provider: production code wires
// in a PRNG (see NewMathRandomSource), tests inject a deterministic
// sequence.
type RandomSource interface {
	// NextDigit returns a value in [0, 9].
	NextDigit() int
}

// Machine is one Strategic Communication execution context: the
// register file, program counter and halt flag of machine state, plus
// the byte streams and random source it was built with. A Machine is
// not safe for concurrent use; the interpreter is single-threaded and
// synchronous by design.
type Machine struct {
	Registers [lang.NumRegisters]int32
	PC        int
	Halted    bool

	stdin  *bufio.Reader
	stdout io.Writer
	random RandomSource

	// Trace, if non-nil, is called with the program-counter value and
	// the instruction about to execute, before it runs. It exists only
	// to support the "-v" disassembly trace; it has no effect on
	// execution semantics.
	Trace func(pc int, in program.Instruction)
}

// New builds a Machine with all registers zeroed and PC at 0.
func New(stdin io.Reader, stdout io.Writer, random RandomSource) *Machine {
	return &Machine{
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		random: random,
	}
}

// Run executes p to completion, returning the first runtime error
// encountered, or nil on normal termination (PC reaching the end of the
// instruction list).
func (m *Machine) Run(p *program.Program) error {
	for m.PC != len(p.Instructions) {
		in := p.Instructions[m.PC]
		if m.Trace != nil {
			m.Trace(m.PC, in)
		}
		jumped, err := m.step(in)
		if err != nil {
			return fmt.Errorf("line %d: %w", in.Line, err)
		}
		if jumped {
			m.PC = in.Target
			continue
		}
		m.PC++
	}
	m.Halted = true
	return nil
}

// step applies the effect of a single instruction and reports whether
// it was a jump-taken (in which case the caller must set PC to
// in.Target rather than advancing by one).
func (m *Machine) step(in program.Instruction) (jumped bool, err error) {
	switch in.Opcode {
	case lang.OpIncrement:
		m.set(in.Reg1, wrapAdd(m.get(in.Reg1), 1))
	case lang.OpDecrement:
		m.set(in.Reg1, wrapAdd(m.get(in.Reg1), -1))
	case lang.OpNegate:
		m.set(in.Reg1, wrapNegate(m.get(in.Reg1)))
	case lang.OpDouble:
		m.set(in.Reg1, wrapMul(m.get(in.Reg1), 2))
	case lang.OpHalve:
		m.set(in.Reg1, m.get(in.Reg1)/2)
	case lang.OpRandomize:
		m.set(in.Reg1, int32(m.random.NextDigit()))
	case lang.OpAlign:
		if in.ValueOperand {
			m.set(in.Reg1, in.Value)
		} else {
			m.set(in.Reg1, m.get(in.Reg2))
		}
	case lang.OpSynergize:
		m.set(in.Reg1, wrapAdd(m.get(in.Reg1), m.get(in.Reg2)))
	case lang.OpDifferentiate:
		m.set(in.Reg1, wrapSub(m.get(in.Reg1), m.get(in.Reg2)))
	case lang.OpCrowdsource:
		return false, m.crowdsource(in.Reg1)
	case lang.OpDeliver:
		return false, m.deliver(in.Reg1)
	case lang.OpCircleBack:
		return true, nil
	case lang.OpPivot:
		return m.get(in.Reg1) == 0, nil
	case lang.OpRestructure:
		return m.get(in.Reg1) < 0, nil
	default:
		return false, fmt.Errorf("unhandled opcode %s", in.Opcode)
	}
	return false, nil
}

func (m *Machine) get(r lang.Register) int32   { return m.Registers[r] }
func (m *Machine) set(r lang.Register, v int32) { m.Registers[r] = v }

// crowdsource reads one raw byte from stdin into reg, storing -1 on
// end-of-stream. This is a byte read, never UTF-8 decoded.
func (m *Machine) crowdsource(reg lang.Register) error {
	b, err := m.stdin.ReadByte()
	if errors.Is(err, io.EOF) {
		m.set(reg, -1)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", lang.ErrIO, err)
	}
	m.set(reg, int32(b))
	return nil
}

// deliver writes reg's value to stdout as the UTF-8 encoding of the
// Unicode scalar value it represents, rejecting negative values, values
// above U+10FFFF, and surrogates.
func (m *Machine) deliver(reg lang.Register) error {
	v := m.get(reg)
	if v < 0 || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		return fmt.Errorf("%w: %d", lang.ErrInvalidUnicode, v)
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return fmt.Errorf("%w: %d", lang.ErrInvalidUnicode, v)
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	if _, err := m.stdout.Write(buf[:n]); err != nil {
		return fmt.Errorf("%w: %s", lang.ErrIO, err)
	}
	return nil
}

// wrapAdd, wrapSub, wrapMul and wrapNegate implement two's-complement
// wrapping arithmetic by routing through uint32, whose
// overflow behaviour Go defines as modular: the signed operands are
// reinterpreted as their bit patterns on the way in, and the result is
// reinterpreted as int32 on the way out.
func wrapAdd(a, b int32) int32 { return int32(uint32(a) + uint32(b)) }
func wrapSub(a, b int32) int32 { return int32(uint32(a) - uint32(b)) }
func wrapMul(a, b int32) int32 { return int32(uint32(a) * uint32(b)) }
func wrapNegate(a int32) int32 { return int32(-uint32(a)) }
