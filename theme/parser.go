package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a position in a JavaScript config source.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokPunct
	tokString
	tokIdent
	tokNumber
)

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
	line  int
	col   int
}

// jsObject keeps keys in first-declaration order; a repeated key takes the
// last value.
type jsObject struct {
	keys []string
	vals map[string]any
}

func (o *jsObject) set(key string, v any) {
	if o.vals == nil {
		o.vals = make(map[string]any)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *jsObject) get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// jsArray keeps the source text of each element next to its value.
type jsArray struct {
	items []any
	raws  []string
}

// jsExpr is an expression kept as source text, e.g. require('x').
type jsExpr string

// ---------- lexer ----------

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance(1)
		case c == '/' && l.peekByte(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		case c == '/' && l.peekByte(1) == '*':
			line, col := l.line, l.col
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end == -1 {
				return l.errorf(line, col, "unterminated comment")
			}
			l.advance(end + 4)
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	t := token{start: l.pos, line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		t.kind = tokEOF
		t.end = l.pos
		return t, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '"' || c == '\'' || c == '`':
		s, err := l.readString(c)
		if err != nil {
			return token{}, err
		}
		t.kind = tokString
		t.text = s
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.advance(1)
		}
		t.kind = tokIdent
		t.text = l.src[t.start:l.pos]
	case isDigit(c) || (c == '.' && isDigit(l.peekByte(1))):
		for l.pos < len(l.src) && (isIdentPart(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.advance(1)
		}
		t.kind = tokNumber
		t.text = l.src[t.start:l.pos]
	default:
		l.advance(1)
		t.kind = tokPunct
		t.text = string(c)
	}
	t.end = l.pos
	return t, nil
}

func (l *lexer) readString(quote byte) (string, error) {
	line, col := l.line, l.col
	l.advance(1)

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string")
		}
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.advance(1)
			return b.String(), nil
		case c == '\n' && quote != '`':
			return "", l.errorf(line, col, "unterminated string")
		case c == '$' && quote == '`' && l.peekByte(1) == '{':
			return "", l.errorf(l.line, l.col, "template substitutions are not supported")
		case c == '\\':
			if err := l.readEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			l.advance(1)
		}
	}
}

func (l *lexer) readEscape(b *strings.Builder) error {
	line, col := l.line, l.col
	l.advance(1)
	if l.pos >= len(l.src) {
		return l.errorf(line, col, "unterminated escape")
	}
	c := l.src[l.pos]
	l.advance(1)

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		return l.readHexEscape(b, 2, line, col)
	case 'u':
		if l.peekByte(0) == '{' {
			end := strings.IndexByte(l.src[l.pos:], '}')
			if end == -1 {
				return l.errorf(line, col, "invalid unicode escape")
			}
			n, err := strconv.ParseUint(l.src[l.pos+1:l.pos+end], 16, 32)
			if err != nil {
				return l.errorf(line, col, "invalid unicode escape")
			}
			b.WriteRune(rune(n))
			l.advance(end + 1)
			return nil
		}
		return l.readHexEscape(b, 4, line, col)
	default:
		b.WriteByte(c)
	}
	return nil
}

func (l *lexer) readHexEscape(b *strings.Builder, digits, line, col int) error {
	if l.pos+digits > len(l.src) {
		return l.errorf(line, col, "invalid escape")
	}
	n, err := strconv.ParseUint(l.src[l.pos:l.pos+digits], 16, 32)
	if err != nil {
		return l.errorf(line, col, "invalid escape")
	}
	b.WriteRune(rune(n))
	l.advance(digits)
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ---------- parser ----------

type parser struct {
	src  string
	toks []token
	pos  int
	vars map[string]any
}

// parseJSConfig evaluates the exported object literal of a config module
// without executing it. It understands module.exports and export default,
// top-level const/let/var bindings and keeps anything it cannot evaluate
// (require calls, plugin factories) as source text.
func parseJSConfig(src string) (any, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, vars: make(map[string]any)}

	var exported any
	found := false
	for p.peek().kind != tokEOF {
		t := p.peek()
		switch {
		case t.kind == tokIdent && (t.text == "const" || t.text == "let" || t.text == "var"):
			p.advance()
			name := p.peek()
			if name.kind != tokIdent || !p.isPunctAt(1, "=") {
				continue
			}
			p.advance()
			p.advance()
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			p.vars[name.text] = v
		case t.kind == tokIdent && t.text == "module" && p.isPunctAt(1, ".") && p.isIdentAt(2, "exports") && p.isPunctAt(3, "="):
			p.pos += 4
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			exported, found = v, true
		case t.kind == tokIdent && t.text == "export" && p.isIdentAt(1, "default"):
			p.pos += 2
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			exported, found = v, true
		default:
			p.skipToken()
		}
	}

	if !found {
		return nil, &SyntaxError{Line: 1, Col: 1, Msg: "no module.exports or export default found"}
	}
	return exported, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	return p.isPunctAt(0, s)
}

func (p *parser) isPunctAt(offset int, s string) bool {
	t := p.peekAt(offset)
	return t.kind == tokPunct && t.text == s
}

func (p *parser) isIdentAt(offset int, s string) bool {
	t := p.peekAt(offset)
	return t.kind == tokIdent && t.text == s
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expectPunct(s string) error {
	t := p.peek()
	if t.kind != tokPunct || t.text != s {
		return p.errorf(t, "expected %q, got %s", s, describe(t))
	}
	p.advance()
	return nil
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return strconv.Quote(t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// skipToken moves past one token, or past a whole bracketed group.
func (p *parser) skipToken() {
	t := p.advance()
	if t.kind == tokPunct && isOpen(t.text) {
		p.skipBalanced(t.text)
	}
}

func isOpen(s string) bool {
	return s == "(" || s == "[" || s == "{"
}

func isClose(s string) bool {
	return s == ")" || s == "]" || s == "}"
}

// skipBalanced consumes tokens up to and including the bracket that closes
// an already consumed opener.
func (p *parser) skipBalanced(open string) {
	depth := 1
	for depth > 0 {
		t := p.advance()
		if t.kind == tokEOF {
			return
		}
		if t.kind != tokPunct {
			continue
		}
		switch {
		case isOpen(t.text):
			depth++
		case isClose(t.text):
			depth--
		}
	}
}

func (p *parser) parseValue() (any, error) {
	t := p.peek()
	switch t.kind {
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	case tokString:
		p.advance()
		return t.text, nil
	case tokNumber:
		p.advance()
		return parseNumber(t)
	case tokIdent:
		return p.parseIdent()
	}

	switch t.text {
	case "{":
		return p.parseObject()
	case "[":
		return p.parseArray()
	case "-":
		if p.peekAt(1).kind == tokNumber {
			p.advance()
			n, err := parseNumber(p.advance())
			if err != nil {
				return nil, err
			}
			return -n, nil
		}
	case "(":
		return p.parseExpr(t)
	}
	return nil, p.errorf(t, "unexpected %s", describe(t))
}

func parseNumber(t token) (float64, error) {
	n, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		if i, ierr := strconv.ParseInt(t.text, 0, 64); ierr == nil {
			return float64(i), nil
		}
		return 0, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("invalid number %q", t.text)}
	}
	return n, nil
}

func (p *parser) parseIdent() (any, error) {
	t := p.peek()
	switch t.text {
	case "true":
		p.advance()
		return true, nil
	case "false":
		p.advance()
		return false, nil
	case "null", "undefined":
		p.advance()
		return nil, nil
	}

	if v, ok := p.vars[t.text]; ok && !p.isPunctAt(1, ".") && !p.isPunctAt(1, "(") && !p.isPunctAt(1, "[") {
		p.advance()
		return v, nil
	}
	return p.parseExpr(t)
}

// parseExpr captures a member/call chain or function literal as source text.
func (p *parser) parseExpr(start token) (any, error) {
	isFunc := start.kind == tokIdent && start.text == "function"
	if start.kind == tokPunct {
		// parenthesised arrow function or grouping
		p.advance()
		p.skipBalanced(start.text)
		isFunc = true
	} else {
		p.advance()
		if isFunc && p.peek().kind == tokIdent {
			p.advance()
		}
	}

	for {
		switch {
		case p.isPunct(".") && p.peekAt(1).kind == tokIdent:
			p.pos += 2
		case p.isPunct("(") || p.isPunct("["):
			open := p.advance()
			p.skipBalanced(open.text)
		case p.isPunct("=") && p.isPunctAt(1, ">"):
			p.pos += 2
			isFunc = true
			if p.isPunct("{") {
				p.advance()
				p.skipBalanced("{")
			} else if _, err := p.parseValue(); err != nil {
				return nil, err
			}
		case isFunc && p.isPunct("{"):
			p.advance()
			p.skipBalanced("{")
			isFunc = false
		default:
			end := p.toks[p.pos-1].end
			return jsExpr(p.src[start.start:end]), nil
		}
	}
}

func (p *parser) parseObject() (any, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	obj := &jsObject{}
	for {
		if p.isPunct("}") {
			p.advance()
			return obj, nil
		}

		kt := p.advance()
		var key string
		switch kt.kind {
		case tokString, tokIdent, tokNumber:
			key = kt.text
		case tokPunct:
			if kt.text == "[" {
				return nil, p.errorf(kt, "computed keys are not supported")
			}
			if kt.text == "." {
				return nil, p.errorf(kt, "spread properties are not supported")
			}
			return nil, p.errorf(kt, "expected property name, got %s", describe(kt))
		default:
			return nil, p.errorf(kt, "expected property name, got %s", describe(kt))
		}

		// shorthand property: { brand }
		if kt.kind == tokIdent && (p.isPunct(",") || p.isPunct("}")) {
			if v, ok := p.vars[key]; ok {
				obj.set(key, v)
			} else {
				obj.set(key, jsExpr(key))
			}
		} else {
			if err := p.expectPunct(":"); err != nil {
				return nil, err
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			obj.set(key, v)
		}

		if p.isPunct(",") {
			p.advance()
			continue
		}
		if !p.isPunct("}") {
			return nil, p.errorf(p.peek(), "expected \",\" or \"}\", got %s", describe(p.peek()))
		}
	}
}

func (p *parser) parseArray() (any, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	arr := &jsArray{}
	for {
		if p.isPunct("]") {
			p.advance()
			return arr, nil
		}

		start := p.peek().start
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		end := p.toks[p.pos-1].end
		arr.items = append(arr.items, v)
		arr.raws = append(arr.raws, p.src[start:end])

		if p.isPunct(",") {
			p.advance()
			continue
		}
		if !p.isPunct("]") {
			return nil, p.errorf(p.peek(), "expected \",\" or \"]\", got %s", describe(p.peek()))
		}
	}
}
