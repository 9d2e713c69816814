// Package program holds the Strategic Communication Instruction and
// Program types: the result of parsing and linking a source file,
// ready for the executor to run.
package program

import (
	"fmt"

	"github.com/bassosimone/strategic-communication/pkg/lang"
)

// Instruction is a single decoded operation plus its resolved operands.
// Every Instruction that can appear in a linked Program's instruction
// slice carries a runtime effect; label definitions are folded into the
// Program's symbol table instead of occupying a slot.
//
// Not every field is meaningful for every Opcode; see the field
// comments for which fields a given opcode populates.
type Instruction struct {
	Opcode lang.Opcode
	Line   int // one-based source line, for diagnostics

	Reg1 lang.Register // the sole operand of single-register opcodes;
	// the target register x for Align, Synergize, Differentiate; the
	// condition register y for Pivot and Restructure.
	Reg2 lang.Register // the second register operand of Synergize and
	// Differentiate; the source register for Align when ValueOperand
	// is false. Unused otherwise.

	ValueOperand bool  // true when Align's second operand is a constant
	// expression rather than a register; meaningless for other opcodes.
	Value int32 // the evaluated constant expression, valid only when
	// ValueOperand is true.

	TargetLabel string // the textual jump target, set by the parser and
	// consulted only during the link pass.
	Target int // the resolved instruction index, set by the link pass;
	// valid only for OpCircleBack, OpPivot and OpRestructure after
	// linking.
}

// IsJump reports whether in is a jump opcode (circle back, pivot or
// restructure), i.e. one whose TargetLabel the link pass resolves into
// Target.
func (in Instruction) IsJump() bool {
	switch in.Opcode {
	case lang.OpCircleBack, lang.OpPivot, lang.OpRestructure:
		return true
	default:
		return false
	}
}

// Program is a fully parsed and linked Strategic Communication program:
// an ordered instruction sequence plus the label table used to produce
// it. It is immutable once the link pass returns it.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}

// Disassemble renders a single instruction as assembly-like text, for
// the "-v" execution trace. It has no bearing on execution semantics.
func Disassemble(in Instruction) string {
	switch in.Opcode {
	case lang.OpIncrement, lang.OpDecrement, lang.OpNegate, lang.OpDouble,
		lang.OpHalve, lang.OpRandomize, lang.OpCrowdsource, lang.OpDeliver:
		return fmt.Sprintf("%s %s", in.Opcode, in.Reg1)
	case lang.OpAlign:
		if in.ValueOperand {
			return fmt.Sprintf("align %s with %d", in.Reg1, in.Value)
		}
		return fmt.Sprintf("align %s with %s", in.Reg1, in.Reg2)
	case lang.OpSynergize, lang.OpDifferentiate:
		return fmt.Sprintf("%s %s and %s", in.Opcode, in.Reg1, in.Reg2)
	case lang.OpCircleBack:
		return fmt.Sprintf("circle back to #%d", in.Target)
	case lang.OpPivot:
		return fmt.Sprintf("pivot %s to #%d", in.Reg1, in.Target)
	case lang.OpRestructure:
		return fmt.Sprintf("restructure %s to #%d", in.Reg1, in.Target)
	default:
		return fmt.Sprintf("<unknown opcode %d>", in.Opcode)
	}
}
