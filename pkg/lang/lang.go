// Package lang defines the fixed data model shared by the lexer, parser
// and executor: the eight register slots, the ten named digit constants,
// and the opcode identifiers a parsed line can resolve to.
//
// None of the types here carry any source-position or grammar state;
// they describe the machine Strategic Communication programs run on,
// independent of how a particular program text was tokenized.
package lang

import "fmt"

// Register identifies one of the eight general-purpose integer slots.
type Register int

// The eight registers, in the order they appear in the reserved-name
// table. Index order matters only for String() and RegisterNames();
// register identity is otherwise opaque.
const (
	CustomerExperience Register = iota
	RevenueStreams
	CoreCompetencies
	BestPractices
	StakeholderEngagement
	KeyPerformanceIndicators
	ReturnOnInvestment
	Assets

	NumRegisters = int(Assets) + 1
)

// registerNames gives the canonical (lowercase, single-spaced) name for
// each register, in declaration order.
var registerNames = [NumRegisters]string{
	"customer experience",
	"revenue streams",
	"core competencies",
	"best practices",
	"stakeholder engagement",
	"key performance indicators",
	"return on investment",
	"assets",
}

// String returns the canonical reserved name for r.
func (r Register) String() string {
	if int(r) < 0 || int(r) >= NumRegisters {
		return fmt.Sprintf("register(%d)", int(r))
	}
	return registerNames[r]
}

// RegisterNames returns the canonical name of every register, in
// declaration order, for callers that need to enumerate them (the
// lexer's reserved-phrase dictionary, diagnostic messages).
func RegisterNames() [NumRegisters]string {
	return registerNames
}

// Constant identifies one of the ten reserved digit-valued words.
type Constant int

// The ten constants, named after the value they are bound to.
const (
	ConstHR Constant = iota
	ConstEngineering
	ConstLegal
	ConstPR
	ConstFinance
	ConstMarketing
	ConstRandD
	ConstSales
	ConstManufacturing
	ConstExecutiveManagement

	NumConstants = int(ConstExecutiveManagement) + 1
)

// constantNames gives the canonical name of each constant, in the same
// order as its declared digit value.
var constantNames = [NumConstants]string{
	"HR",
	"Engineering",
	"Legal",
	"PR",
	"Finance",
	"Marketing",
	"R&D",
	"Sales",
	"Manufacturing",
	"Executive Management",
}

// Digit returns the decimal digit (0-9) this constant is bound to. The
// constant's declaration order matches its value, so this is simply the
// ordinal of c.
func (c Constant) Digit() byte {
	return byte('0' + int(c))
}

// String returns the canonical reserved name for c.
func (c Constant) String() string {
	if int(c) < 0 || int(c) >= NumConstants {
		return fmt.Sprintf("constant(%d)", int(c))
	}
	return constantNames[c]
}

// ConstantNames returns the canonical name of every constant, in
// declared-digit order, for callers enumerating the reserved dictionary.
func ConstantNames() [NumConstants]string {
	return constantNames
}

// Opcode identifies the operation a parsed instruction performs. The
// opcode is independent of which of its synonym phrases matched in the
// source (e.g. "innovate" and "value-add" both produce OpIncrement).
type Opcode int

const (
	OpIncrement Opcode = iota
	OpDecrement
	OpNegate
	OpDouble
	OpHalve
	OpRandomize
	OpAlign
	OpSynergize
	OpDifferentiate
	OpCrowdsource
	OpDeliver
	OpCircleBack
	OpPivot
	OpRestructure
)

// opcodeNames is used only for diagnostics and disassembly; it is not
// part of the reserved-phrase dictionary (several opcodes have more
// than one spelling and the dictionary records those separately).
var opcodeNames = map[Opcode]string{
	OpIncrement:     "innovate",
	OpDecrement:     "streamline",
	OpNegate:        "revamp",
	OpDouble:        "amplify",
	OpHalve:         "backburner",
	OpRandomize:     "paradigm shift",
	OpAlign:         "align",
	OpSynergize:     "synergize",
	OpDifferentiate: "differentiate",
	OpCrowdsource:   "crowdsource",
	OpDeliver:       "deliver",
	OpCircleBack:    "circle back to",
	OpPivot:         "pivot",
	OpRestructure:   "restructure",
}

// String returns a human-readable mnemonic for op.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", int(op))
}
