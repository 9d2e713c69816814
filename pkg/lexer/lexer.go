// Package lexer implements the Strategic Communication token classifier:
// it turns raw source bytes into logical lines, each already broken
// into ordered phrase tokens, using a single longest-match,
// case-insensitive, whitespace-normalising scan against the fixed
// reserved-phrase dictionary.
//
// The classifier never fails on a single word it cannot place: anything
// that is not a reserved phrase is swept into a free-text run, and
// whether that run is acceptable (a label identifier) or an error is a
// decision left to the parser, which sees the grammatical context the
// lexer does not.
package lexer

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/bassosimone/strategic-communication/pkg/lang"
)

// TokenKind classifies one phrase token.
type TokenKind int

const (
	// Opcode is a reserved opcode phrase (e.g. "innovate", "align").
	Opcode TokenKind = iota
	// Register is a reserved register name.
	Register
	// Constant is a reserved digit constant name.
	Constant
	// Connector is a reserved grammar glue word ("with", "and", "to").
	Connector
	// LabelIntro is the "moving forward" / "going forward" marker that
	// begins a label definition; it is distinct from Opcode because it
	// never produces an Instruction.
	LabelIntro
	// Comma is a literal ",".
	Comma
	// Text is a run of consecutive free-text words that matched no
	// reserved phrase.
	Text
)

// Token is one classified unit of a logical line.
type Token struct {
	Kind     TokenKind
	Opcode   lang.Opcode
	Register lang.Register
	Constant lang.Constant
	// Text carries the connector word (lowercased) for Connector tokens,
	// and the original-case source words, joined by single spaces, for
	// Text tokens.
	Text string
}

// Line is one non-blank logical line of source: its one-based line
// number and its classified tokens.
type Line struct {
	Number int
	Tokens []Token
}

// maxPhraseWords is the length, in words, of the longest reserved
// phrase ("key performance indicators", "return on investment",
// "circle back to").
const maxPhraseWords = 3

var dictionary = buildDictionary()

func buildDictionary() map[string]Token {
	d := make(map[string]Token)

	opcodeAliases := map[lang.Opcode][]string{
		lang.OpIncrement:     {"innovate", "value-add"},
		lang.OpDecrement:     {"streamline", "optimize"},
		lang.OpNegate:        {"revamp", "overhaul"},
		lang.OpDouble:        {"amplify", "incentivize"},
		lang.OpHalve:         {"backburner"},
		lang.OpRandomize:     {"paradigm shift"},
		lang.OpAlign:         {"align"},
		lang.OpSynergize:     {"synergize", "integrate"},
		lang.OpDifferentiate: {"differentiate"},
		lang.OpCrowdsource:   {"crowdsource"},
		lang.OpDeliver:       {"deliver", "produce"},
		lang.OpCircleBack:    {"circle back to", "revisit"},
		lang.OpPivot:         {"pivot"},
		lang.OpRestructure:   {"restructure"},
	}
	for op, phrases := range opcodeAliases {
		for _, phrase := range phrases {
			d[phrase] = Token{Kind: Opcode, Opcode: op}
		}
	}

	for _, phrase := range []string{"moving forward", "going forward"} {
		d[phrase] = Token{Kind: LabelIntro}
	}

	for _, word := range []string{"with", "and", "to"} {
		d[word] = Token{Kind: Connector, Text: word}
	}

	for i, name := range lang.RegisterNames() {
		d[strings.ToLower(name)] = Token{Kind: Register, Register: lang.Register(i)}
	}

	for i, name := range lang.ConstantNames() {
		d[strings.ToLower(name)] = Token{Kind: Constant, Constant: lang.Constant(i)}
	}

	return d
}

// Tokenize reads the full source as UTF-8 text and returns its logical
// lines. Blank lines (and lines containing only whitespace) are skipped
// outright and never appear in the result.
func Tokenize(src []byte) []Line {
	var lines []Line
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, Line{Number: lineNo, Tokens: tokenizeLine(raw)})
	}
	return lines
}

// tokenizeLine applies the longest-match dictionary scan to one line of
// source, folding internal whitespace runs and treating every comma as
// its own token regardless of adjacency to a word.
func tokenizeLine(raw string) []Token {
	words := splitWords(raw)

	var tokens []Token
	var textRun []string

	flush := func() {
		if len(textRun) == 0 {
			return
		}
		tokens = append(tokens, Token{Kind: Text, Text: strings.Join(textRun, " ")})
		textRun = textRun[:0]
	}

	for i := 0; i < len(words); {
		if words[i] == "," {
			flush()
			tokens = append(tokens, Token{Kind: Comma})
			i++
			continue
		}

		matched := false
		for n := maxPhraseWords; n >= 1; n-- {
			if i+n > len(words) {
				continue
			}
			if containsComma(words[i : i+n]) {
				continue
			}
			candidate := strings.ToLower(strings.Join(words[i:i+n], " "))
			if tok, ok := dictionary[candidate]; ok {
				flush()
				tokens = append(tokens, tok)
				i += n
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		textRun = append(textRun, words[i])
		i++
	}
	flush()
	return tokens
}

func containsComma(words []string) bool {
	for _, w := range words {
		if w == "," {
			return true
		}
	}
	return false
}

// splitWords breaks a line into whitespace-delimited words, additionally
// splitting out every comma as its own single-character word so it is
// always recognised as punctuation, never glued to the word before it.
func splitWords(raw string) []string {
	spaced := strings.ReplaceAll(raw, ",", " , ")
	return strings.Fields(spaced)
}
