package kicadsexp

import (
	"bufio"
	"io"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenAtom
)

// Token represents a lexical token. For quoted strings Value holds the
// decoded content, without the surrounding quotes.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// Lexer tokenizes S-expressions from an io.Reader
type Lexer struct {
	reader *bufio.Reader
	peeked *rune
	line   int
	col    int
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NextToken reads the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	// Skip whitespace
	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				return l.token(TokenEOF, ""), nil
			}
			return Token{}, err
		}
		if !unicode.IsSpace(ch) {
			break
		}
		l.read()
	}

	ch, err := l.peek()
	if err != nil {
		if err == io.EOF {
			return l.token(TokenEOF, ""), nil
		}
		return Token{}, err
	}

	switch ch {
	case '(':
		tok := l.token(TokenLeftParen, "(")
		l.read()
		return tok, nil

	case ')':
		tok := l.token(TokenRightParen, ")")
		l.read()
		return tok, nil

	case '"':
		return l.readString()

	default:
		return l.readAtom()
	}
}

// token stamps the current position onto a new token.
func (l *Lexer) token(t TokenType, value string) Token {
	return Token{Type: t, Value: value, Line: l.line, Col: l.col + 1}
}

// peek looks at the next rune without consuming it
func (l *Lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}

	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}

	l.peeked = &ch
	return ch, nil
}

// read consumes and returns the next rune, tracking line/column.
func (l *Lexer) read() (rune, error) {
	var ch rune
	var err error
	if l.peeked != nil {
		ch = *l.peeked
		l.peeked = nil
	} else {
		ch, _, err = l.reader.ReadRune()
		if err != nil {
			return ch, err
		}
	}
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, nil
}

// readString reads a quoted string and decodes escape sequences.
func (l *Lexer) readString() (Token, error) {
	tok := l.token(TokenAtom, "")

	// Consume opening quote
	l.read()

	var result []rune
	for {
		ch, err := l.read()
		if err != nil {
			return Token{}, &FormatError{Line: tok.Line, Col: tok.Col, Msg: "unterminated quoted string"}
		}

		if ch == '"' {
			break
		}

		if ch == '\\' {
			next, err := l.read()
			if err != nil {
				return Token{}, &FormatError{Line: tok.Line, Col: tok.Col, Msg: "unterminated quoted string"}
			}
			switch next {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				// Unknown escape: keep both characters verbatim
				result = append(result, '\\', next)
			}
			continue
		}

		result = append(result, ch)
	}

	tok.Value = string(result)
	return tok, nil
}

// readAtom reads an unquoted atom (identifier, number, flag symbol).
func (l *Lexer) readAtom() (Token, error) {
	tok := l.token(TokenAtom, "")

	var result []rune
	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Token{}, err
		}

		// Stop at delimiters
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}

		l.read()
		result = append(result, ch)
	}

	tok.Value = string(result)
	return tok, nil
}
