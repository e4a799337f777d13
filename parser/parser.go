package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/qed-lang/qed/loc"
)

// A Parser parses source code files.
type Parser struct {
	Files []*File

	// TrimErrorPathPrefix is trimmed from the beginning
	// of file paths reported in error messages.
	TrimErrorPathPrefix string

	offs int
}

// New returns a new parser.
func New() *Parser {
	return &Parser{offs: 1}
}

// NewWithOffset returns a new parser with the given location offset.
func NewWithOffset(offs int) *Parser {
	return &Parser{offs: offs}
}

// Parse parses a file from an io.Reader.
// The first argument is the file path or "" if unspecified.
func (p *Parser) Parse(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	file, err := p.parse(path, string(data))
	if err != nil {
		return err
	}
	p.Files = append(p.Files, file)
	p.offs += len(data)
	return nil
}

// ParseFile parses the source from a file path.
func (p *Parser) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Parse(path, f)
}

func (p *Parser) parse(path, data string) (*File, error) {
	q := &fileParser{
		path: strings.TrimPrefix(path, p.TrimErrorPathPrefix),
		data: data,
		offs: p.offs,
	}
	toks, err := lex(data, p.offs)
	if err != nil {
		lerr := err.(*lexError)
		return nil, q.errAtOffset(lerr.pos, "%s", lerr.msg)
	}
	q.toks = toks
	file, err := q.file()
	if err != nil {
		return nil, err
	}
	file.P = path
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			file.NLs = append(file.NLs, i)
		}
	}
	file.Length = len(data)
	return file, nil
}

// ImportsOnly returns the import paths of the file at path,
// ignoring the entries that follow them.
func ImportsOnly(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	q := &fileParser{path: path, data: string(data), offs: 1}
	toks, err := lex(q.data, 1)
	if err != nil {
		lerr := err.(*lexError)
		return nil, q.errAtOffset(lerr.pos, "%s", lerr.msg)
	}
	q.toks = toks
	if _, err := q.moduleHeader(); err != nil {
		return nil, err
	}
	imports, err := q.imports()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(imports))
	for i, imp := range imports {
		paths[i] = imp.Path
	}
	return paths, nil
}

// ModPath returns the module path declared by the module header of
// the file at path, or "" if the file has no header.
func ModPath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	q := &fileParser{path: path, data: string(data), offs: 1}
	toks, err := lex(q.data, 1)
	if err != nil {
		lerr := err.(*lexError)
		return "", q.errAtOffset(lerr.pos, "%s", lerr.msg)
	}
	q.toks = toks
	h, err := q.moduleHeader()
	if err != nil || h == nil {
		return "", err
	}
	return h.Path, nil
}

// ParseExpr parses a single expression.
func ParseExpr(str string) (Expr, error) {
	q := &fileParser{data: str, offs: 1}
	toks, err := lex(str, 1)
	if err != nil {
		lerr := err.(*lexError)
		return nil, q.errAtOffset(lerr.pos, "%s", lerr.msg)
	}
	q.toks = toks
	q.skipNewlines()
	expr, err := q.term()
	if err != nil {
		return nil, err
	}
	q.skipNewlines()
	if q.kind() != tokEOF {
		return nil, q.errAt(q.tok(), "unexpected %s after expression", q.tok().describe())
	}
	return expr, nil
}

type parseError struct {
	path string
	line int
	col  int
	msg  string
}

func (err *parseError) Error() string {
	if err.path == "" {
		return fmt.Sprintf("%d.%d: %s", err.line, err.col, err.msg)
	}
	return fmt.Sprintf("%s:%d.%d: %s", err.path, err.line, err.col, err.msg)
}

type fileParser struct {
	path string
	data string
	offs int
	toks []token
	pos  int
}

func (q *fileParser) tok() token { return q.toks[q.pos] }

func (q *fileParser) kind() tokenKind { return q.tok().kind }

func (q *fileParser) peekKind(n int) tokenKind {
	if q.pos+n >= len(q.toks) {
		return tokEOF
	}
	return q.toks[q.pos+n].kind
}

func (q *fileParser) advance() token {
	t := q.toks[q.pos]
	if t.kind != tokEOF {
		q.pos++
	}
	return t
}

func (q *fileParser) got(k tokenKind) bool {
	if q.kind() == k {
		q.advance()
		return true
	}
	return false
}

func (q *fileParser) expect(k tokenKind) (token, error) {
	if q.kind() != k {
		return token{}, q.errAt(q.tok(), "expected %s, got %s", k, q.tok().describe())
	}
	return q.advance(), nil
}

func (q *fileParser) skipNewlines() {
	for q.kind() == tokNewline {
		q.advance()
	}
}

// end returns the end offset of the last consumed token.
func (q *fileParser) end() int {
	if q.pos == 0 {
		return q.offs
	}
	return q.toks[q.pos-1].l[1]
}

// span returns the Loc from start to the end
// of the last consumed token.
func (q *fileParser) span(start int) loc.Loc {
	return loc.Loc{start, q.end()}
}

func (q *fileParser) errAt(t token, f string, args ...any) error {
	return q.errAtOffset(t.l[0]-q.offs, f, args...)
}

// errAtOffset returns a parse error at a byte offset of the file.
func (q *fileParser) errAtOffset(pos int, f string, args ...any) error {
	line, col := 1, 1
	for i := 0; i < pos && i < len(q.data); i++ {
		if q.data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &parseError{path: q.path, line: line, col: col, msg: fmt.Sprintf(f, args...)}
}

func (q *fileParser) file() (*File, error) {
	file := &File{}
	var err error
	if file.Mod, err = q.moduleHeader(); err != nil {
		return nil, err
	}
	if file.Imports, err = q.imports(); err != nil {
		return nil, err
	}
	for q.kind() != tokEOF {
		ent, err := q.entry()
		if err != nil {
			return nil, err
		}
		file.Entries = append(file.Entries, ent)
		if q.kind() != tokEOF {
			if _, err := q.expect(tokNewline); err != nil {
				return nil, err
			}
			q.skipNewlines()
		}
	}
	return file, nil
}

// moduleHeader parses an optional leading module declaration.
func (q *fileParser) moduleHeader() (*ModHeader, error) {
	q.skipNewlines()
	if q.kind() != tokModule {
		return nil, nil
	}
	start := q.tok().l[0]
	q.advance()
	t, err := q.expect(tokString)
	if err != nil {
		return nil, err
	}
	h := &ModHeader{Path: t.text, L: q.span(start)}
	if q.kind() != tokEOF {
		if _, err := q.expect(tokNewline); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (q *fileParser) imports() ([]*Import, error) {
	var imports []*Import
	q.skipNewlines()
	for q.kind() == tokImport {
		start := q.tok().l[0]
		q.advance()
		t, err := q.expect(tokString)
		if err != nil {
			return nil, err
		}
		imports = append(imports, &Import{Path: t.text, L: q.span(start)})
		if q.kind() != tokEOF {
			if _, err := q.expect(tokNewline); err != nil {
				return nil, err
			}
			q.skipNewlines()
		}
	}
	return imports, nil
}

func (q *fileParser) entry() (Entry, error) {
	switch q.kind() {
	case tokModule:
		return nil, q.errAt(q.tok(), "a module header must be the first entry")
	case tokImport:
		return nil, q.errAt(q.tok(), "imports must appear before other entries")
	case tokData:
		return q.dataDef()
	case tokIdent:
		name := q.advance()
		id := Ident{Name: name.text, L: name.l}
		switch {
		case q.got(tokColon):
			typ, err := q.term()
			if err != nil {
				return nil, err
			}
			return &Decl{Name: id, Type: typ, L: q.span(name.l[0])}, nil
		case q.got(tokEq):
			expr, err := q.term()
			if err != nil {
				return nil, err
			}
			return &Def{Name: id, Expr: expr, L: q.span(name.l[0])}, nil
		default:
			return nil, q.errAt(q.tok(), "expected ':' or '=' after %q, got %s", name.text, q.tok().describe())
		}
	default:
		return nil, q.errAt(q.tok(), "expected an entry, got %s", q.tok().describe())
	}
}

func (q *fileParser) dataDef() (*DataDef, error) {
	start := q.tok().l[0]
	q.advance() // data
	name, err := q.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	params, err := q.teleItems()
	if err != nil {
		return nil, err
	}
	if _, err := q.expect(tokColon); err != nil {
		return nil, err
	}
	if _, err := q.expect(tokType); err != nil {
		return nil, err
	}
	if _, err := q.expect(tokWhere); err != nil {
		return nil, err
	}
	cons, err := q.conBlock()
	if err != nil {
		return nil, err
	}
	return &DataDef{
		Name:   Ident{Name: name.text, L: name.l},
		Params: params,
		Cons:   cons,
		L:      q.span(start),
	}, nil
}

func (q *fileParser) conBlock() ([]*ConDef, error) {
	var cons []*ConDef
	if q.got(tokLBrace) {
		q.skipSeps()
		for q.kind() != tokRBrace {
			con, err := q.conDef()
			if err != nil {
				return nil, err
			}
			cons = append(cons, con)
			if q.kind() != tokNewline && q.kind() != tokSemi && q.kind() != tokRBrace {
				return nil, q.errAt(q.tok(), "expected ';' or '}', got %s", q.tok().describe())
			}
			q.skipSeps()
		}
		q.advance() // }
		return cons, nil
	}
	for q.conAt(q.pos) {
		con, err := q.conDef()
		if err != nil {
			return nil, err
		}
		cons = append(cons, con)
		if q.kind() == tokNewline && q.conAt(q.pos+1) {
			q.advance()
			continue
		}
		break
	}
	return cons, nil
}

// conAt reports whether the token at i begins a constructor
// definition rather than the next entry.
func (q *fileParser) conAt(i int) bool {
	if i >= len(q.toks) {
		return false
	}
	switch q.toks[i].kind {
	case tokUnit:
		return true
	case tokIdent:
		if i+1 >= len(q.toks) {
			return true
		}
		k := q.toks[i+1].kind
		return k != tokColon && k != tokEq
	}
	return false
}

func (q *fileParser) conDef() (*ConDef, error) {
	start := q.tok().l[0]
	var name Ident
	switch q.kind() {
	case tokIdent, tokUnit:
		t := q.advance()
		name = Ident{Name: t.text, L: t.l}
	default:
		return nil, q.errAt(q.tok(), "expected a constructor name, got %s", q.tok().describe())
	}
	var args []TeleItem
	if q.got(tokOf) {
		var err error
		if args, err = q.teleItems(); err != nil {
			return nil, err
		}
	}
	return &ConDef{Name: name, Args: args, L: q.span(start)}, nil
}

func (q *fileParser) skipSeps() {
	for q.kind() == tokNewline || q.kind() == tokSemi {
		q.advance()
	}
}

func (q *fileParser) teleItems() ([]TeleItem, error) {
	var items []TeleItem
	for {
		switch q.kind() {
		case tokLParen:
			start := q.tok().l[0]
			q.advance()
			if q.kind() == tokIdent && q.peekKind(1) == tokColon {
				name := q.advance()
				q.advance() // :
				typ, err := q.term()
				if err != nil {
					return nil, err
				}
				if _, err := q.expect(tokRParen); err != nil {
					return nil, err
				}
				id := Ident{Name: name.text, L: name.l}
				items = append(items, &TeleBind{Name: &id, Type: typ, L: q.span(start)})
				continue
			}
			typ, err := q.term()
			if err != nil {
				return nil, err
			}
			if _, err := q.expect(tokRParen); err != nil {
				return nil, err
			}
			items = append(items, &TeleBind{Type: typ, L: q.span(start)})
		case tokLBrack:
			start := q.tok().l[0]
			q.advance()
			name, err := q.expect(tokIdent)
			if err != nil {
				return nil, err
			}
			if _, err := q.expect(tokEq); err != nil {
				return nil, err
			}
			expr, err := q.term()
			if err != nil {
				return nil, err
			}
			if _, err := q.expect(tokRBrack); err != nil {
				return nil, err
			}
			items = append(items, &TeleEq{
				Name: Ident{Name: name.text, L: name.l},
				Expr: expr,
				L:    q.span(start),
			})
		default:
			return items, nil
		}
	}
}

func (q *fileParser) term() (Expr, error) {
	switch q.kind() {
	case tokLambda:
		return q.lam()
	case tokLet:
		return q.let()
	case tokCase:
		return q.caseExpr()
	case tokSubst:
		return q.subst()
	case tokContra:
		return q.contra()
	default:
		return q.arrowTerm()
	}
}

func (q *fileParser) lam() (Expr, error) {
	start := q.tok().l[0]
	q.advance() // \
	var names []Ident
	for q.kind() == tokIdent {
		t := q.advance()
		names = append(names, Ident{Name: t.text, L: t.l})
	}
	if len(names) == 0 {
		return nil, q.errAt(q.tok(), "expected a parameter name, got %s", q.tok().describe())
	}
	if _, err := q.expect(tokDot); err != nil {
		return nil, err
	}
	body, err := q.term()
	if err != nil {
		return nil, err
	}
	return &Lam{Names: names, Body: body, L: q.span(start)}, nil
}

func (q *fileParser) let() (Expr, error) {
	start := q.tok().l[0]
	q.advance() // let
	name, err := q.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := q.expect(tokEq); err != nil {
		return nil, err
	}
	rhs, err := q.term()
	if err != nil {
		return nil, err
	}
	if _, err := q.expect(tokIn); err != nil {
		return nil, err
	}
	body, err := q.term()
	if err != nil {
		return nil, err
	}
	return &Let{
		Name: Ident{Name: name.text, L: name.l},
		Rhs:  rhs,
		Body: body,
		L:    q.span(start),
	}, nil
}

func (q *fileParser) caseExpr() (Expr, error) {
	start := q.tok().l[0]
	q.advance() // case
	scrut, err := q.term()
	if err != nil {
		return nil, err
	}
	if _, err := q.expect(tokOf); err != nil {
		return nil, err
	}
	branches, err := q.branches()
	if err != nil {
		return nil, err
	}
	return &Case{Scrut: scrut, Branches: branches, L: q.span(start)}, nil
}

func (q *fileParser) branches() ([]*Branch, error) {
	var bs []*Branch
	if q.got(tokLBrace) {
		q.skipSeps()
		for q.kind() != tokRBrace {
			b, err := q.branch()
			if err != nil {
				return nil, err
			}
			bs = append(bs, b)
			if q.kind() != tokNewline && q.kind() != tokSemi && q.kind() != tokRBrace {
				return nil, q.errAt(q.tok(), "expected ';' or '}', got %s", q.tok().describe())
			}
			q.skipSeps()
		}
		q.advance() // }
		return bs, nil
	}
	for q.branchAt(q.pos) {
		b, err := q.branch()
		if err != nil {
			return nil, err
		}
		bs = append(bs, b)
		switch {
		case q.kind() == tokNewline && q.branchAt(q.pos+1):
			q.advance()
		case q.kind() == tokSemi && q.branchAt(q.pos+1):
			q.advance()
		default:
			return bs, nil
		}
	}
	return bs, nil
}

// branchAt reports whether the tokens at i begin a case branch:
// pattern tokens followed by an arrow.
func (q *fileParser) branchAt(i int) bool {
	depth := 0
	for ; i < len(q.toks); i++ {
		switch q.toks[i].kind {
		case tokIdent, tokUnit:
		case tokLParen:
			depth++
		case tokRParen:
			if depth == 0 {
				return false
			}
			depth--
		case tokArrow:
			if depth == 0 {
				return true
			}
		default:
			return false
		}
	}
	return false
}

func (q *fileParser) branch() (*Branch, error) {
	start := q.tok().l[0]
	pat, err := q.pattern()
	if err != nil {
		return nil, err
	}
	if _, err := q.expect(tokArrow); err != nil {
		return nil, err
	}
	body, err := q.term()
	if err != nil {
		return nil, err
	}
	return &Branch{Pat: pat, Body: body, L: q.span(start)}, nil
}

func (q *fileParser) pattern() (Pat, error) {
	switch q.kind() {
	case tokIdent:
		start := q.tok().l[0]
		t := q.advance()
		name := Ident{Name: t.text, L: t.l}
		var args []Pat
		for q.kind() == tokIdent || q.kind() == tokUnit || q.kind() == tokLParen {
			arg, err := q.patAtom()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if len(args) == 0 {
			return &PatName{Name: name, L: name.L}, nil
		}
		return &PatCon{Name: name, Args: args, L: q.span(start)}, nil
	default:
		return q.patAtom()
	}
}

func (q *fileParser) patAtom() (Pat, error) {
	switch q.kind() {
	case tokIdent:
		t := q.advance()
		return &PatName{Name: Ident{Name: t.text, L: t.l}, L: t.l}, nil
	case tokUnit:
		t := q.advance()
		return &PatUnit{L: t.l}, nil
	case tokLParen:
		q.advance()
		pat, err := q.pattern()
		if err != nil {
			return nil, err
		}
		if _, err := q.expect(tokRParen); err != nil {
			return nil, err
		}
		return pat, nil
	default:
		return nil, q.errAt(q.tok(), "expected a pattern, got %s", q.tok().describe())
	}
}

func (q *fileParser) subst() (Expr, error) {
	start := q.tok().l[0]
	q.advance() // subst
	expr, err := q.appTerm()
	if err != nil {
		return nil, err
	}
	if _, err := q.expect(tokBy); err != nil {
		return nil, err
	}
	proof, err := q.appTerm()
	if err != nil {
		return nil, err
	}
	return &Subst{Expr: expr, Proof: proof, L: q.span(start)}, nil
}

func (q *fileParser) contra() (Expr, error) {
	start := q.tok().l[0]
	q.advance() // contra
	proof, err := q.appTerm()
	if err != nil {
		return nil, err
	}
	return &Contra{Proof: proof, L: q.span(start)}, nil
}

func (q *fileParser) arrowTerm() (Expr, error) {
	start := q.tok().l[0]
	if q.binderPiAt(q.pos) {
		q.advance() // (
		name := q.advance()
		q.advance() // :
		dom, err := q.term()
		if err != nil {
			return nil, err
		}
		if _, err := q.expect(tokRParen); err != nil {
			return nil, err
		}
		var ran Expr
		if q.got(tokArrow) {
			if ran, err = q.term(); err != nil {
				return nil, err
			}
		} else {
			// More binder groups before the arrow.
			if ran, err = q.arrowTerm(); err != nil {
				return nil, err
			}
		}
		id := Ident{Name: name.text, L: name.l}
		return &Arrow{Binder: &id, Dom: dom, Ran: ran, L: q.span(start)}, nil
	}
	dom, err := q.eqTerm()
	if err != nil {
		return nil, err
	}
	if !q.got(tokArrow) {
		return dom, nil
	}
	ran, err := q.term()
	if err != nil {
		return nil, err
	}
	return &Arrow{Dom: dom, Ran: ran, L: q.span(start)}, nil
}

// binderPiAt reports whether the tokens at i begin one or more
// (name : type) binder groups followed by an arrow, distinguishing
// a dependent function type from an annotated expression.
func (q *fileParser) binderPiAt(i int) bool {
	for {
		if i >= len(q.toks) || q.toks[i].kind != tokLParen {
			return false
		}
		if i+1 >= len(q.toks) || q.toks[i+1].kind != tokIdent {
			return false
		}
		if i+2 >= len(q.toks) || q.toks[i+2].kind != tokColon {
			return false
		}
		depth := 1
		i += 3
		for i < len(q.toks) && depth > 0 {
			switch q.toks[i].kind {
			case tokLParen:
				depth++
			case tokRParen:
				depth--
			case tokEOF:
				return false
			}
			i++
		}
		if depth > 0 || i >= len(q.toks) {
			return false
		}
		switch q.toks[i].kind {
		case tokArrow:
			return true
		case tokLParen:
			continue
		default:
			return false
		}
	}
}

func (q *fileParser) eqTerm() (Expr, error) {
	start := q.tok().l[0]
	a, err := q.appTerm()
	if err != nil {
		return nil, err
	}
	if !q.got(tokEq) {
		return a, nil
	}
	b, err := q.appTerm()
	if err != nil {
		return nil, err
	}
	return &Eq{A: a, B: b, L: q.span(start)}, nil
}

func (q *fileParser) appTerm() (Expr, error) {
	start := q.tok().l[0]
	fn, err := q.atom()
	if err != nil {
		return nil, err
	}
	var args []Expr
	for q.atomAt(q.pos) {
		arg, err := q.atom()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return fn, nil
	}
	return &App{Fn: fn, Args: args, L: q.span(start)}, nil
}

// atomAt reports whether the token at i can begin an atom.
func (q *fileParser) atomAt(i int) bool {
	if i >= len(q.toks) {
		return false
	}
	switch q.toks[i].kind {
	case tokIdent, tokType, tokRefl, tokTrustMe, tokPrintMe, tokUnit, tokLParen:
		return true
	}
	return false
}

func (q *fileParser) atom() (Expr, error) {
	switch q.kind() {
	case tokIdent:
		t := q.advance()
		return &Id{Name: t.text, L: t.l}, nil
	case tokType:
		return &Universe{L: q.advance().l}, nil
	case tokRefl:
		return &Refl{L: q.advance().l}, nil
	case tokTrustMe:
		return &TrustMe{L: q.advance().l}, nil
	case tokPrintMe:
		return &PrintMe{L: q.advance().l}, nil
	case tokUnit:
		return &Unit{L: q.advance().l}, nil
	case tokLParen:
		start := q.tok().l[0]
		q.advance()
		expr, err := q.term()
		if err != nil {
			return nil, err
		}
		if q.got(tokColon) {
			typ, err := q.term()
			if err != nil {
				return nil, err
			}
			if _, err := q.expect(tokRParen); err != nil {
				return nil, err
			}
			return &Ann{Expr: expr, Type: typ, L: q.span(start)}, nil
		}
		if _, err := q.expect(tokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, q.errAt(q.tok(), "expected a term, got %s", q.tok().describe())
	}
}
