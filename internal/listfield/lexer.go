package listfield

import "strings"

// TokenType identifies the kind of a lexical token in a list-like cell.
type TokenType int

// Token types.
const (
	tokenEOF TokenType = iota
	tokenIllegal
	tokenLBracket
	tokenRBracket
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenComma
	tokenColon
	tokenString
	tokenNumber
	tokenKeyword
)

// Token is a lexical token with its decoded literal and source offsets.
type Token struct {
	Type    TokenType
	Literal string
	Start   int
	End     int
}

// lexer tokenizes literal list syntax: brackets, quoted strings, numbers
// and the keywords True, False and None.
type lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *lexer) nextToken() Token {
	l.skipWhitespace()
	start := l.pos

	single := func(t TokenType) Token {
		tok := Token{Type: t, Literal: string(l.ch), Start: start, End: start + 1}
		l.readChar()
		return tok
	}

	switch {
	case l.pos >= len(l.input):
		return Token{Type: tokenEOF, Start: start, End: start}
	case l.ch == '[':
		return single(tokenLBracket)
	case l.ch == ']':
		return single(tokenRBracket)
	case l.ch == '(':
		return single(tokenLParen)
	case l.ch == ')':
		return single(tokenRParen)
	case l.ch == '{':
		return single(tokenLBrace)
	case l.ch == '}':
		return single(tokenRBrace)
	case l.ch == ',':
		return single(tokenComma)
	case l.ch == ':':
		return single(tokenColon)
	case l.ch == '\'' || l.ch == '"':
		return l.readString()
	case isDigit(l.ch) || l.ch == '.' || ((l.ch == '-' || l.ch == '+') && (isDigit(l.peekChar()) || l.peekChar() == '.')):
		return l.readNumber()
	case isLetter(l.ch):
		return l.readKeyword()
	default:
		return single(tokenIllegal)
	}
}

// readString reads a single- or double-quoted string, decoding backslash escapes.
// An unterminated string yields an illegal token.
func (l *lexer) readString() Token {
	start := l.pos
	quote := l.ch
	l.readChar()

	var b strings.Builder
	for {
		switch {
		case l.pos >= len(l.input), l.ch == '\n':
			return Token{Type: tokenIllegal, Start: start, End: l.pos}
		case l.ch == '\\':
			l.readChar()
			if l.pos >= len(l.input) {
				return Token{Type: tokenIllegal, Start: start, End: l.pos}
			}
			b.WriteByte(unescape(l.ch))
		case l.ch == quote:
			l.readChar()
			return Token{Type: tokenString, Literal: b.String(), Start: start, End: l.pos}
		default:
			b.WriteByte(l.ch)
		}
		l.readChar()
	}
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return ch
	}
}

// readNumber reads [sign] digits [. digits] [e [sign] digits].
func (l *lexer) readNumber() Token {
	start := l.pos
	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	digits := 0
	for isDigit(l.ch) {
		digits++
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			digits++
			l.readChar()
		}
	}
	if digits == 0 {
		return Token{Type: tokenIllegal, Start: start, End: l.pos}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return Token{Type: tokenIllegal, Start: start, End: l.pos}
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	// 12abc is not a number.
	if isLetter(l.ch) {
		return Token{Type: tokenIllegal, Start: start, End: l.pos}
	}
	lit := l.input[start:l.pos]
	return Token{Type: tokenNumber, Literal: strings.TrimPrefix(lit, "+"), Start: start, End: l.pos}
}

func (l *lexer) readKeyword() Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.pos]
	switch word {
	case "True", "False", "None":
		return Token{Type: tokenKeyword, Literal: word, Start: start, End: l.pos}
	default:
		return Token{Type: tokenIllegal, Literal: word, Start: start, End: l.pos}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
