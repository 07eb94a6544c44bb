package netlist

import "fmt"

// TokenType classifies a lexical token of the netlist format.
type TokenType int

const (
	// TokenEOF marks the end of the input.
	TokenEOF TokenType = iota
	// TokenEOL marks the end of a line. Directives never span lines.
	TokenEOL
	// TokenIdent is a signal name, directive keyword or operator name.
	TokenIdent
	// TokenNumber is an unsized decimal number, used for widths, bit
	// indices and bare reset values.
	TokenNumber
	// TokenLiteral is a sized literal such as 2'd3, 4'b01_01 or 8'hff.
	TokenLiteral
	// TokenLParen, TokenRParen, TokenComma and TokenEquals are the
	// punctuation of expression calls and attribute bindings.
	TokenLParen
	TokenRParen
	TokenComma
	TokenEquals
	// TokenIllegal is a character the lexer cannot place.
	TokenIllegal
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of file"
	case TokenEOL:
		return "end of line"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenLiteral:
		return "sized literal"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	case TokenEquals:
		return "'='"
	default:
		return "illegal character"
	}
}

// Token is a lexical token with its position in the source.
type Token struct {
	Type  TokenType
	Value string
	Line  int // 1-based
	Col   int // 1-based, in bytes
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

// Lexer scans netlist source into tokens. Comments run from '#' to the end
// of the line and are dropped; line breaks are significant and surface as
// TokenEOL.
type Lexer struct {
	input  string
	pos    int
	line   int
	col    int
	tokens []Token
}

// NewLexer returns a Lexer over the given source.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize processes the entire input and returns the token list, always
// terminated by TokenEOF.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.addToken(TokenEOL, "")
			l.advance()
			l.line++
			l.col = 1

		case c == ' ' || c == '\t' || c == '\r':
			l.advance()

		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}

		case c == '(':
			l.addToken(TokenLParen, "(")
			l.advance()

		case c == ')':
			l.addToken(TokenRParen, ")")
			l.advance()

		case c == ',':
			l.addToken(TokenComma, ",")
			l.advance()

		case c == '=':
			l.addToken(TokenEquals, "=")
			l.advance()

		case isDigit(c):
			l.lexNumber()

		case isIdentStart(c):
			l.lexIdent()

		default:
			l.addToken(TokenIllegal, string(c))
			l.advance()
		}
	}
	l.addToken(TokenEOF, "")
	return l.tokens
}

// lexNumber scans a decimal number, continuing into a sized literal when a
// width is followed by a ' base marker.
func (l *Lexer) lexNumber() {
	start, line, col := l.pos, l.line, l.col
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.advance()
	}
	if l.pos < len(l.input) && l.input[l.pos] == '\'' {
		l.advance()
		if l.pos < len(l.input) && isBaseMarker(l.input[l.pos]) {
			l.advance()
		}
		for l.pos < len(l.input) && (isHexDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
			l.advance()
		}
		l.tokens = append(l.tokens, Token{Type: TokenLiteral, Value: l.input[start:l.pos], Line: line, Col: col})
		return
	}
	l.tokens = append(l.tokens, Token{Type: TokenNumber, Value: l.input[start:l.pos], Line: line, Col: col})
}

// lexIdent scans a signal name, keyword or operator name.
func (l *Lexer) lexIdent() {
	start, line, col := l.pos, l.line, l.col
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance()
	}
	l.tokens = append(l.tokens, Token{Type: TokenIdent, Value: l.input[start:l.pos], Line: line, Col: col})
}

func (l *Lexer) advance() {
	l.pos++
	l.col++
}

func (l *Lexer) addToken(t TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Line: l.line, Col: l.col})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBaseMarker(c byte) bool {
	return c == 'd' || c == 'b' || c == 'h' || c == 'o'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
