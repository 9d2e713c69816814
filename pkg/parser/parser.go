// Package parser implements the Strategic Communication parser and link
// pass: it folds each logical line's phrase tokens into a typed
// Instruction, builds the label symbol table, and then resolves every
// jump's textual target to a concrete instruction index.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bassosimone/strategic-communication/pkg/lang"
	"github.com/bassosimone/strategic-communication/pkg/lexer"
	"github.com/bassosimone/strategic-communication/pkg/program"
)

// ParseProgram tokenizes, parses and links src in one call, returning a
// Program ready for execution.
func ParseProgram(src []byte) (*program.Program, error) {
	lines := lexer.Tokenize(src)
	instrs, labels, err := Parse(lines)
	if err != nil {
		return nil, err
	}
	return Link(instrs, labels)
}

// Parse folds every logical line into an Instruction and records label
// definitions in a symbol table. Jump instructions carry an unresolved
// TargetLabel; Link must run before the result can be executed.
//
// A label-defining line occupies no instruction slot: its name maps to
// the index of the next instruction that will be appended.
func Parse(lines []lexer.Line) ([]program.Instruction, map[string]int, error) {
	labels := make(map[string]int)
	var instrs []program.Instruction

	for _, line := range lines {
		instr, label, err := parseLine(line)
		if err != nil {
			return nil, nil, err
		}
		if label != "" {
			if _, exists := labels[label]; exists {
				return nil, nil, lineErrorf(line.Number, lang.ErrDuplicateLabel, "%q", label)
			}
			labels[label] = len(instrs)
			continue
		}
		instrs = append(instrs, instr)
	}
	return instrs, labels, nil
}

// Link resolves every jump instruction's TargetLabel against labels,
// producing the final Program. An unknown label is reported with the
// referring instruction's line number.
func Link(instrs []program.Instruction, labels map[string]int) (*program.Program, error) {
	for i := range instrs {
		if !instrs[i].IsJump() {
			continue
		}
		idx, ok := labels[instrs[i].TargetLabel]
		if !ok {
			return nil, lineErrorf(instrs[i].Line, lang.ErrUnknownLabel, "%q", instrs[i].TargetLabel)
		}
		instrs[i].Target = idx
	}
	return &program.Program{Instructions: instrs, Labels: labels}, nil
}

// parseLine matches one line's tokens against the grammar table. It
// returns either a populated Instruction (label == "") or, for a
// label-defining line, the identifier it defines.
func parseLine(line lexer.Line) (program.Instruction, string, error) {
	tokens := line.Tokens
	if len(tokens) == 0 {
		return program.Instruction{}, "", syntaxErrorf(line.Number, "empty line reached the parser")
	}

	first := tokens[0]
	switch first.Kind {
	case lexer.LabelIntro:
		rest, err := expectComma(line.Number, tokens[1:])
		if err != nil {
			return program.Instruction{}, "", err
		}
		name, err := collectLabel(line.Number, rest)
		if err != nil {
			return program.Instruction{}, "", err
		}
		return program.Instruction{}, name, nil

	case lexer.Opcode:
		instr, err := parseOpcodeLine(line.Number, first.Opcode, tokens[1:])
		return instr, "", err

	default:
		return program.Instruction{}, "", syntaxErrorf(line.Number,
			"line does not begin with a recognised instruction")
	}
}

func parseOpcodeLine(lineNo int, op lang.Opcode, rest []lexer.Token) (program.Instruction, error) {
	instr := program.Instruction{Opcode: op, Line: lineNo, Target: -1}

	switch op {
	case lang.OpIncrement, lang.OpDecrement, lang.OpNegate, lang.OpDouble,
		lang.OpHalve, lang.OpRandomize, lang.OpCrowdsource, lang.OpDeliver:
		reg, rest, err := expectRegister(lineNo, rest)
		if err != nil {
			return instr, err
		}
		if err := expectEnd(lineNo, rest); err != nil {
			return instr, err
		}
		instr.Reg1 = reg
		return instr, nil

	case lang.OpAlign:
		reg, rest, err := expectRegister(lineNo, rest)
		if err != nil {
			return instr, err
		}
		rest, err = expectConnector(lineNo, rest, "with")
		if err != nil {
			return instr, err
		}
		instr.Reg1 = reg
		if len(rest) == 1 && rest[0].Kind == lexer.Register {
			instr.Reg2 = rest[0].Register
			instr.ValueOperand = false
			return instr, nil
		}
		value, err := evalConstantExpr(lineNo, rest)
		if err != nil {
			return instr, err
		}
		instr.ValueOperand = true
		instr.Value = value
		return instr, nil

	case lang.OpSynergize, lang.OpDifferentiate:
		reg1, rest, err := expectRegister(lineNo, rest)
		if err != nil {
			return instr, err
		}
		rest, err = expectConnector(lineNo, rest, "and")
		if err != nil {
			return instr, err
		}
		reg2, rest, err := expectRegister(lineNo, rest)
		if err != nil {
			return instr, err
		}
		if err := expectEnd(lineNo, rest); err != nil {
			return instr, err
		}
		instr.Reg1, instr.Reg2 = reg1, reg2
		return instr, nil

	case lang.OpCircleBack:
		label, err := collectLabel(lineNo, rest)
		if err != nil {
			return instr, err
		}
		instr.TargetLabel = label
		return instr, nil

	case lang.OpPivot, lang.OpRestructure:
		reg, rest, err := expectRegister(lineNo, rest)
		if err != nil {
			return instr, err
		}
		rest, err = expectConnector(lineNo, rest, "to")
		if err != nil {
			return instr, err
		}
		label, err := collectLabel(lineNo, rest)
		if err != nil {
			return instr, err
		}
		instr.Reg1 = reg
		instr.TargetLabel = label
		return instr, nil

	default:
		return instr, syntaxErrorf(lineNo, "unhandled opcode %s", op)
	}
}

func expectRegister(lineNo int, tokens []lexer.Token) (lang.Register, []lexer.Token, error) {
	if len(tokens) == 0 || tokens[0].Kind != lexer.Register {
		return 0, tokens, syntaxErrorf(lineNo, "expected a register operand")
	}
	return tokens[0].Register, tokens[1:], nil
}

func expectConnector(lineNo int, tokens []lexer.Token, word string) ([]lexer.Token, error) {
	if len(tokens) == 0 || tokens[0].Kind != lexer.Connector || tokens[0].Text != word {
		return tokens, syntaxErrorf(lineNo, "expected %q", word)
	}
	return tokens[1:], nil
}

func expectComma(lineNo int, tokens []lexer.Token) ([]lexer.Token, error) {
	if len(tokens) == 0 || tokens[0].Kind != lexer.Comma {
		return tokens, syntaxErrorf(lineNo, "expected ',' after label introducer")
	}
	return tokens[1:], nil
}

func expectEnd(lineNo int, tokens []lexer.Token) error {
	if len(tokens) != 0 {
		return syntaxErrorf(lineNo, "unexpected extra tokens on line")
	}
	return nil
}

// collectLabel consumes every remaining token as a label identifier. All
// of them must be Text tokens; any reserved token found among them is
// rejected, which is how the whole-word-substring rule against reserved
// names is actually enforced (a reserved register or constant name is
// tokenized as its own reserved token, not as Text).
func collectLabel(lineNo int, tokens []lexer.Token) (string, error) {
	if len(tokens) == 0 {
		return "", syntaxErrorf(lineNo, "label identifier is empty")
	}
	var words []string
	for _, t := range tokens {
		if t.Kind != lexer.Text {
			return "", syntaxErrorf(lineNo, "label identifier contains a reserved word")
		}
		words = append(words, t.Text)
	}
	name := strings.ToLower(strings.TrimSpace(strings.Join(words, " ")))
	if name == "" {
		return "", syntaxErrorf(lineNo, "label identifier is empty")
	}
	return name, nil
}

// evalConstantExpr evaluates a non-empty sequence of Constant tokens
// separated by "and", "," or ", and". The resulting decimal digit
// string is parsed as a signed 32-bit integer.
func evalConstantExpr(lineNo int, tokens []lexer.Token) (int32, error) {
	if len(tokens) == 0 {
		return 0, syntaxErrorf(lineNo, "expected a register or constant expression")
	}

	var digits []byte
	expectConstant := true
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		if expectConstant {
			if t.Kind != lexer.Constant {
				return 0, syntaxErrorf(lineNo, "expected a constant in constant expression")
			}
			digits = append(digits, t.Constant.Digit())
			i++
			expectConstant = false
			continue
		}
		switch {
		case t.Kind == lexer.Connector && t.Text == "and":
			i++
			expectConstant = true
		case t.Kind == lexer.Comma:
			i++
			if i < len(tokens) && tokens[i].Kind == lexer.Connector && tokens[i].Text == "and" {
				i++
			}
			expectConstant = true
		default:
			return 0, syntaxErrorf(lineNo, "unexpected token in constant expression")
		}
	}
	if expectConstant {
		return 0, syntaxErrorf(lineNo, "constant expression ends with a dangling separator")
	}

	value, err := strconv.ParseInt(string(digits), 10, 32)
	if err != nil {
		return 0, lineErrorf(lineNo, lang.ErrConstantOverflow, "%q does not fit in a signed 32-bit integer", string(digits))
	}
	return int32(value), nil
}

func syntaxErrorf(lineNo int, format string, args ...interface{}) error {
	return lineErrorf(lineNo, lang.ErrSyntax, format, args...)
}

func lineErrorf(lineNo int, sentinel error, format string, args ...interface{}) error {
	return lang.NewLineError(fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)), lineNo)
}
