package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/qed-lang/qed/loc"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokString
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokLBrace
	tokRBrace
	tokColon
	tokSemi
	tokDot
	tokEq
	tokArrow
	tokLambda
	tokUnit
	tokModule
	tokImport
	tokData
	tokWhere
	tokOf
	tokCase
	tokLet
	tokIn
	tokSubst
	tokBy
	tokContra
	tokType
	tokRefl
	tokTrustMe
	tokPrintMe
)

var keywords = map[string]tokenKind{
	"module":  tokModule,
	"import":  tokImport,
	"data":    tokData,
	"where":   tokWhere,
	"of":      tokOf,
	"case":    tokCase,
	"let":     tokLet,
	"in":      tokIn,
	"subst":   tokSubst,
	"by":      tokBy,
	"contra":  tokContra,
	"Type":    tokType,
	"Refl":    tokRefl,
	"TRUSTME": tokTrustMe,
	"PRINTME": tokPrintMe,
}

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of file",
	tokNewline: "newline",
	tokIdent:   "identifier",
	tokString:  "string",
	tokLParen:  "(",
	tokRParen:  ")",
	tokLBrack:  "[",
	tokRBrack:  "]",
	tokLBrace:  "{",
	tokRBrace:  "}",
	tokColon:   ":",
	tokSemi:    ";",
	tokDot:     ".",
	tokEq:      "=",
	tokArrow:   "->",
	tokLambda:  `\`,
	tokUnit:    "()",
	tokModule:  "module",
	tokImport:  "import",
	tokData:    "data",
	tokWhere:   "where",
	tokOf:      "of",
	tokCase:    "case",
	tokLet:     "let",
	tokIn:      "in",
	tokSubst:   "subst",
	tokBy:      "by",
	tokContra:  "contra",
	tokType:    "Type",
	tokRefl:    "Refl",
	tokTrustMe: "TRUSTME",
	tokPrintMe: "PRINTME",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	l    loc.Loc
}

// describe returns the token as it should appear
// in an error message.
func (t token) describe() string {
	switch t.kind {
	case tokEOF, tokNewline:
		return t.kind.String()
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// A lexError is a scan failure at a byte offset of the input.
type lexError struct {
	pos int
	msg string
}

func (err *lexError) Error() string { return err.msg }

type lexer struct {
	data string
	pos  int
	offs int
}

// lex scans data into tokens, ending with a tokEOF token.
// Line breaks that cannot separate entries are removed;
// see filterNewlines.
func lex(data string, offs int) ([]token, error) {
	x := &lexer{data: data, offs: offs}
	var toks []token
	for {
		t, err := x.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return filterNewlines(toks), nil
		}
	}
}

func (x *lexer) next() (token, error) {
	if err := x.skipSpace(); err != nil {
		return token{}, err
	}
	start := x.pos
	if x.pos >= len(x.data) {
		return x.token(tokEOF, start), nil
	}
	c, size := utf8.DecodeRuneInString(x.data[x.pos:])
	switch {
	case c == '\n':
		x.pos++
		return x.token(tokNewline, start), nil
	case c == '(':
		x.pos++
		if x.peek() == ')' {
			x.pos++
			return x.token(tokUnit, start), nil
		}
		return x.token(tokLParen, start), nil
	case c == ')':
		x.pos++
		return x.token(tokRParen, start), nil
	case c == '[':
		x.pos++
		return x.token(tokLBrack, start), nil
	case c == ']':
		x.pos++
		return x.token(tokRBrack, start), nil
	case c == '{':
		x.pos++
		return x.token(tokLBrace, start), nil
	case c == '}':
		x.pos++
		return x.token(tokRBrace, start), nil
	case c == ':':
		x.pos++
		return x.token(tokColon, start), nil
	case c == ';':
		x.pos++
		return x.token(tokSemi, start), nil
	case c == '.':
		x.pos++
		return x.token(tokDot, start), nil
	case c == '=':
		x.pos++
		return x.token(tokEq, start), nil
	case c == '\\':
		x.pos++
		return x.token(tokLambda, start), nil
	case c == '-':
		if x.peekAt(x.pos+1) == '>' {
			x.pos += 2
			return x.token(tokArrow, start), nil
		}
		return token{}, &lexError{pos: start, msg: "unexpected character '-'"}
	case c == '"':
		x.pos++
		for x.pos < len(x.data) && x.data[x.pos] != '"' && x.data[x.pos] != '\n' {
			x.pos++
		}
		if x.pos >= len(x.data) || x.data[x.pos] != '"' {
			return token{}, &lexError{pos: start, msg: "unterminated string"}
		}
		x.pos++
		t := x.token(tokString, start)
		t.text = t.text[1 : len(t.text)-1]
		return t, nil
	case isIdentStart(c):
		x.pos += size
		for x.pos < len(x.data) {
			c, size := utf8.DecodeRuneInString(x.data[x.pos:])
			if !isIdentPart(c) {
				break
			}
			x.pos += size
		}
		t := x.token(tokIdent, start)
		if kw, ok := keywords[t.text]; ok {
			t.kind = kw
		}
		return t, nil
	default:
		return token{}, &lexError{pos: start, msg: fmt.Sprintf("unexpected character %q", c)}
	}
}

// skipSpace skips blanks and comments. Line comments run from --
// to the end of the line; block comments are {- -} and nest.
func (x *lexer) skipSpace() error {
	for x.pos < len(x.data) {
		switch c := x.data[x.pos]; {
		case c == ' ' || c == '\t' || c == '\r':
			x.pos++
		case c == '-' && x.peekAt(x.pos+1) == '-':
			for x.pos < len(x.data) && x.data[x.pos] != '\n' {
				x.pos++
			}
		case c == '{' && x.peekAt(x.pos+1) == '-':
			start := x.pos
			x.pos += 2
			depth := 1
			for depth > 0 {
				switch {
				case x.pos >= len(x.data):
					return &lexError{pos: start, msg: "unterminated comment"}
				case x.data[x.pos] == '{' && x.peekAt(x.pos+1) == '-':
					depth++
					x.pos += 2
				case x.data[x.pos] == '-' && x.peekAt(x.pos+1) == '}':
					depth--
					x.pos += 2
				default:
					x.pos++
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (x *lexer) peek() rune { return x.peekAt(x.pos) }

func (x *lexer) peekAt(i int) rune {
	if i >= len(x.data) {
		return -1
	}
	c, _ := utf8.DecodeRuneInString(x.data[i:])
	return c
}

func (x *lexer) token(kind tokenKind, start int) token {
	return token{
		kind: kind,
		text: x.data[start:x.pos],
		l:    loc.Loc{x.offs + start, x.offs + x.pos},
	}
}

func isIdentStart(c rune) bool { return unicode.IsLetter(c) || c == '_' }

func isIdentPart(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '\''
}

// filterNewlines erases line breaks that cannot separate entries,
// branches, or constructors: breaks inside parentheses or square
// brackets, breaks after a token that cannot end a term, and
// breaks before a continuation token (->, in, or by). Runs of the
// newlines that remain collapse to a single token.
func filterNewlines(toks []token) []token {
	out := toks[:0]
	depth := 0
	for _, t := range toks {
		switch t.kind {
		case tokLParen, tokLBrack:
			depth++
		case tokRParen, tokRBrack:
			if depth > 0 {
				depth--
			}
		case tokNewline:
			// Not canEndTerm(tokNewline), so runs collapse here too.
			if depth > 0 || len(out) == 0 || !canEndTerm(out[len(out)-1].kind) {
				continue
			}
		case tokArrow, tokIn, tokBy:
			if len(out) > 0 && out[len(out)-1].kind == tokNewline {
				out = out[:len(out)-1]
			}
		}
		out = append(out, t)
	}
	return out
}

// canEndTerm reports whether a token of kind k
// can be the last token of a term.
func canEndTerm(k tokenKind) bool {
	switch k {
	case tokIdent, tokString, tokRParen, tokRBrack, tokRBrace,
		tokUnit, tokType, tokRefl, tokTrustMe, tokPrintMe:
		return true
	}
	return false
}
