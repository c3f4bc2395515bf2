package logql

import (
	"strconv"
	"strings"
)

type lexer struct {
	src     []byte
	ch      byte
	offset  int
	pos     int
	nextPos int
}

func newLexer(src []byte) *lexer {
	l := &lexer{src: src}
	l.next()

	return l
}

func (l *lexer) Scan() (int, Token, string) {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.next()
	}

	if l.ch == 0 {
		return l.pos, eol, ""
	}

	tok := illegal
	pos := l.pos
	val := ""

	ch := l.ch
	l.next()

	if isIdentifierStart(ch) {
		start := l.tokenStart()
		for isIdentifierStart(l.ch) || isDigit(l.ch) {
			l.next()
		}
		return pos, identifier, string(l.src[start:l.tokenEnd()])
	}

	if isDigit(ch) || (ch == '-' && isDigit(l.ch)) {
		start := l.tokenStart()
		tok = number
		for isDigit(l.ch) || l.ch == '.' {
			l.next()
		}
		// 5m, 1h30m, 250ms
		if isLetter(l.ch) {
			tok = duration
			for isLetter(l.ch) || isDigit(l.ch) {
				l.next()
			}
		}
		val = string(l.src[start:l.tokenEnd()])
		if tok == number {
			if _, err := strconv.ParseFloat(val, 64); err != nil {
				return pos, illegal, "malformed number " + val
			}
		}
		return pos, tok, val
	}

	if isOperatorChar(ch) {
		start := l.tokenStart()
		for isOperatorChar(l.ch) {
			l.next()
		}
		return pos, operator, string(l.src[start:l.tokenEnd()])
	}

	switch ch {
	case '{':
		tok = lbrace
	case '}':
		tok = rbrace
	case '(':
		tok = lparen
	case ')':
		tok = rparen
	case '[':
		tok = lbracket
	case ']':
		tok = rbracket
	case ',':
		tok = comma
	case '|':
		switch l.ch {
		case '=', '~':
			val = "|" + string(l.ch)
			tok = lineFilter
			l.next()
		default:
			tok = pipe
		}
	case '"':
		chars := make([]byte, 0, 32)
		chars = append(chars, ch)
		for l.ch != '"' {
			if l.ch == 0 {
				return pos, illegal, "unclosed string"
			}
			if l.ch == '\\' {
				chars = append(chars, l.ch)
				l.next()
				if l.ch == 0 {
					return pos, illegal, "unclosed string"
				}
			}
			chars = append(chars, l.ch)
			l.next()
		}
		l.next()
		chars = append(chars, '"')
		s, err := strconv.Unquote(string(chars))
		if err != nil {
			return pos, illegal, "malformed string: " + err.Error()
		}
		tok = stringLit
		val = s
	case '`':
		var sb strings.Builder
		for l.ch != '`' {
			if l.ch == 0 {
				return pos, illegal, "unclosed raw string"
			}
			sb.WriteByte(l.ch)
			l.next()
		}
		l.next()
		tok = stringLit
		val = sb.String()
	default:
		tok = illegal
		val = "unexpected char " + strconv.QuoteRune(rune(ch))
	}

	return pos, tok, val
}

// Load the next character into l.ch (or 0 on end of input) and update line position.
func (l *lexer) next() {
	l.pos = l.nextPos
	if l.offset >= len(l.src) {
		// For last character, move offset 1 past the end as it
		// simplifies offset calculations in identifiers and numbers
		if l.ch != 0 {
			l.ch = 0
			l.offset++
			l.nextPos++
		}
		return
	}
	ch := l.src[l.offset]
	l.ch = ch
	l.nextPos++
	l.offset++
}

func isIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperatorChar(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '~' || ch == '<' || ch == '>'
}

// tokenStart returns the start offset of the current token.
func (l *lexer) tokenStart() int {
	return l.offset - 2
}

// tokenEnd returns the end offset of the current token.
func (l *lexer) tokenEnd() int {
	return l.offset - 1
}
