// Package netlist reads and writes the textual circuit format.
//
// A netlist is line-oriented. The first directive names the module; the
// rest declare ports and registers and wire expressions:
//
//	# 2-bit counter with synchronous reset
//	module counter
//	input rst 1
//	input en 1
//	reg q 2 init=2'd0 reset=rst high
//	next q = mux(en, add(q, 2'd1), q)
//	output count = q
//
// Expressions are prefix calls over signal names and sized literals:
// not, neg, and, or, xor, add, sub, eq, ne, lt, le, gt, ge, mux, cat,
// bit and bits. Literals carry their width Verilog style (2'd3, 4'b01_10,
// 8'hff); bare numbers are only valid where a width is implied, such as
// declaration widths and bit indices.
package netlist

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
)

// SyntaxError reports a lexical or grammatical problem with its source
// position.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Parse reads a netlist from src and compiles it. The file name is used in
// error positions only.
func Parse(src []byte, file string) (*circuit.Circuit, error) {
	p := &parser{
		file: file,
		toks: NewLexer(string(src)).Tokenize(),
	}
	return p.parse()
}

// ParseFile reads and compiles the netlist at path.
func ParseFile(path string) (*circuit.Circuit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src, path)
}

var unaryOps = map[string]bv.Op{
	"not": bv.OpNot,
	"neg": bv.OpNeg,
}

var binaryOps = map[string]bv.Op{
	"and": bv.OpAnd,
	"or":  bv.OpOr,
	"xor": bv.OpXor,
	"add": bv.OpAdd,
	"sub": bv.OpSub,
	"eq":  bv.OpEq,
	"ne":  bv.OpNe,
	"lt":  bv.OpUlt,
	"le":  bv.OpUle,
	"gt":  bv.OpUgt,
	"ge":  bv.OpUge,
	"cat": bv.OpConcat,
}

type parser struct {
	file string
	toks []Token
	pos  int
	b    *circuit.Builder
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) errf(t Token, format string, args ...interface{}) error {
	return &SyntaxError{File: p.file, Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(tt TokenType) (Token, error) {
	t := p.next()
	if t.Type != tt {
		return t, p.errf(t, "expected %s, found %s", tt, t)
	}
	return t, nil
}

func (p *parser) endOfLine() error {
	t := p.next()
	if t.Type != TokenEOL && t.Type != TokenEOF {
		return p.errf(t, "unexpected %s before end of line", t)
	}
	return nil
}

func (p *parser) parse() (*circuit.Circuit, error) {
	for {
		t := p.next()
		switch t.Type {
		case TokenEOF:
			if p.b == nil {
				return nil, p.errf(t, "empty netlist, expected a module directive")
			}
			return p.b.Compile()
		case TokenEOL:
			continue
		case TokenIdent:
			if err := p.directive(t); err != nil {
				return nil, err
			}
		default:
			return nil, p.errf(t, "expected a directive, found %s", t)
		}
	}
}

func (p *parser) directive(t Token) error {
	if t.Value == "module" {
		if p.b != nil {
			return p.errf(t, "duplicate module directive")
		}
		name, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		p.b = circuit.NewBuilder(name.Value)
		return p.endOfLine()
	}
	if p.b == nil {
		return p.errf(t, "the module directive must come first")
	}

	switch t.Value {
	case "input":
		name, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		width, err := p.parseWidth()
		if err != nil {
			return err
		}
		p.b.Input(name.Value, width)
		return p.endOfLine()

	case "reg":
		return p.parseReg()

	case "next":
		name, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(TokenEquals); err != nil {
			return err
		}
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		p.b.Next(name.Value, e)
		return p.endOfLine()

	case "output":
		name, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(TokenEquals); err != nil {
			return err
		}
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		p.b.Output(name.Value, e)
		return p.endOfLine()

	default:
		return p.errf(t, "unknown directive %q", t.Value)
	}
}

func (p *parser) parseWidth() (int, error) {
	t, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	w, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, p.errf(t, "bad width %q", t.Value)
	}
	return w, nil
}

func (p *parser) parseReg() error {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	width, err := p.parseWidth()
	if err != nil {
		return err
	}

	var opts []circuit.RegisterOption
	for p.peek().Type == TokenIdent {
		attr := p.next()
		if _, err := p.expect(TokenEquals); err != nil {
			return err
		}
		switch attr.Value {
		case "init":
			v := p.next()
			switch v.Type {
			case TokenNumber:
				init, err := strconv.ParseUint(strings.ReplaceAll(v.Value, "_", ""), 10, 64)
				if err != nil {
					return p.errf(v, "bad reset value %q", v.Value)
				}
				opts = append(opts, circuit.WithInit(init))
			case TokenLiteral:
				init, w, err := p.parseSized(v)
				if err != nil {
					return err
				}
				if w != width {
					return p.errf(v, "reset value width %d differs from register width %d", w, width)
				}
				opts = append(opts, circuit.WithInit(init))
			default:
				return p.errf(v, "expected a reset value, found %s", v)
			}
		case "reset":
			signal, err := p.expect(TokenIdent)
			if err != nil {
				return err
			}
			// the level is optional, a following ident may also start the
			// next attribute
			pol := circuit.ActiveHigh
			if p.peek().Type == TokenIdent {
				switch p.peek().Value {
				case "high":
					p.next()
				case "low":
					p.next()
					pol = circuit.ActiveLow
				case "init", "reset":
				default:
					lvl := p.next()
					return p.errf(lvl, "expected high or low, found %q", lvl.Value)
				}
			}
			opts = append(opts, circuit.WithReset(signal.Value, pol))
		default:
			return p.errf(attr, "unknown register attribute %q", attr.Value)
		}
	}
	p.b.Register(name.Value, width, opts...)
	return p.endOfLine()
}

// parseSized decodes a sized literal token such as 4'b01_10.
func (p *parser) parseSized(t Token) (value uint64, width int, err error) {
	s := t.Value
	quote := strings.IndexByte(s, '\'')
	if quote <= 0 || quote+1 >= len(s) {
		return 0, 0, p.errf(t, "malformed literal %q", s)
	}
	width, err = strconv.Atoi(strings.ReplaceAll(s[:quote], "_", ""))
	if err != nil {
		return 0, 0, p.errf(t, "bad literal width in %q", s)
	}

	base := 10
	digits := s[quote+1:]
	switch digits[0] {
	case 'd':
		base, digits = 10, digits[1:]
	case 'b':
		base, digits = 2, digits[1:]
	case 'h':
		base, digits = 16, digits[1:]
	case 'o':
		base, digits = 8, digits[1:]
	default:
		return 0, 0, p.errf(t, "missing base marker in literal %q", s)
	}
	value, err = strconv.ParseUint(strings.ReplaceAll(digits, "_", ""), base, 64)
	if err != nil {
		return 0, 0, p.errf(t, "bad digits in literal %q", s)
	}
	if _, err := bv.New(value, width); err != nil {
		return 0, 0, p.errf(t, "%v", err)
	}
	return value, width, nil
}

func (p *parser) parseExpr() (circuit.Expr, error) {
	t := p.next()
	switch t.Type {
	case TokenLiteral:
		v, w, err := p.parseSized(t)
		if err != nil {
			return nil, err
		}
		return circuit.Const{Value: v, Width: w}, nil

	case TokenNumber:
		return nil, p.errf(t, "unsized number %s in an expression, literals need a width such as 2'd%s", t.Value, t.Value)

	case TokenIdent:
		if p.peek().Type != TokenLParen {
			return circuit.Ref{Name: t.Value}, nil
		}
		return p.parseCall(t)

	default:
		return nil, p.errf(t, "expected an expression, found %s", t)
	}
}

func (p *parser) parseCall(op Token) (circuit.Expr, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	// bit and bits take literal indices, every other call takes
	// subexpressions
	switch op.Value {
	case "bit":
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		i, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return circuit.Slice{X: x, Hi: i, Lo: i}, nil

	case "bits":
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		hi, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		lo, err := p.parseIndex()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return circuit.Slice{X: x, Hi: hi, Lo: lo}, nil
	}

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	if bop, ok := unaryOps[op.Value]; ok {
		if len(args) != 1 {
			return nil, p.errf(op, "%s takes 1 operand, found %d", op.Value, len(args))
		}
		return circuit.Unary{Op: bop, X: args[0]}, nil
	}
	if bop, ok := binaryOps[op.Value]; ok {
		if len(args) != 2 {
			return nil, p.errf(op, "%s takes 2 operands, found %d", op.Value, len(args))
		}
		return circuit.Binary{Op: bop, X: args[0], Y: args[1]}, nil
	}
	if op.Value == "mux" {
		if len(args) != 3 {
			return nil, p.errf(op, "mux takes 3 operands, found %d", len(args))
		}
		return circuit.Mux{Sel: args[0], T: args[1], E: args[2]}, nil
	}
	return nil, p.errf(op, "unknown operation %q", op.Value)
}

func (p *parser) parseArgs() ([]circuit.Expr, error) {
	var args []circuit.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		t := p.next()
		switch t.Type {
		case TokenComma:
			continue
		case TokenRParen:
			return args, nil
		default:
			return nil, p.errf(t, "expected ',' or ')', found %s", t)
		}
	}
}

func (p *parser) parseIndex() (int, error) {
	t, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, p.errf(t, "bad bit index %q", t.Value)
	}
	return i, nil
}
