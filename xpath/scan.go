package xpath

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"
)

type Position struct {
	Line   int
	Column int
}

const (
	EOF rune = -(1 + iota)
	Name
	Namespace // name:
	Literal
	Digit
	Invalid
)

const (
	currNode = -(iota + 1000)
	parentNode
	attrNode
	variable
	currLevel
	anyLevel
	begPred
	endPred
	begGrp
	endGrp
	opAdd
	opSub
	opMul
	opDiv
	opIntDiv
	opMod
	opEq
	opNe
	opGt
	opGe
	opLt
	opLe
	opValEq
	opValNe
	opValGt
	opValGe
	opValLt
	opValLe
	opBefore
	opAfter
	opIs
	opAnd
	opOr
	opSeq
	opAxis
	opUnion
	opIntersect
	opExcept
	opRange
	opConcat
	opAssign
	opInstanceOf
	opCastAs
	opCastableAs
	opTreatAs
	opFor
	opLet
	opSome
	opEvery
	opIf
	opIn
	opReturn
	opSatisfies
	opThen
	opElse
	opQuestion
)

type Token struct {
	Literal string
	Type    rune
	Position
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "<eof>"
	case Name:
		return fmt.Sprintf("name(%s)", t.Literal)
	case Namespace:
		return fmt.Sprintf("namespace(%s)", t.Literal)
	case Literal:
		return fmt.Sprintf("literal(%s)", t.Literal)
	case Digit:
		return fmt.Sprintf("number(%s)", t.Literal)
	case variable:
		return fmt.Sprintf("variable(%s)", t.Literal)
	case attrNode:
		return fmt.Sprintf("attribute(%s)", t.Literal)
	case currNode:
		return "<current-node>"
	case parentNode:
		return "<parent-node>"
	case currLevel:
		return "<current-level>"
	case anyLevel:
		return "<any-level>"
	case begPred:
		return "<begin-predicate>"
	case endPred:
		return "<end-predicate>"
	case begGrp:
		return "<begin-group>"
	case endGrp:
		return "<end-group>"
	case opAdd:
		return "<add>"
	case opSub:
		return "<subtract>"
	case opMul:
		return "<multiply>"
	case opDiv:
		return "<divide>"
	case opIntDiv:
		return "<divide-integer>"
	case opMod:
		return "<modulo>"
	case opEq:
		return "<equal>"
	case opNe:
		return "<not-equal>"
	case opGt:
		return "<greater-than>"
	case opGe:
		return "<greater-eq>"
	case opLt:
		return "<lesser-than>"
	case opLe:
		return "<lesser-eq>"
	case opValEq:
		return "<value-eq>"
	case opValNe:
		return "<value-ne>"
	case opValGt:
		return "<value-gt>"
	case opValGe:
		return "<value-ge>"
	case opValLt:
		return "<value-lt>"
	case opValLe:
		return "<value-le>"
	case opBefore:
		return "<before>"
	case opAfter:
		return "<after>"
	case opIs:
		return "<identity>"
	case opAnd:
		return "<and>"
	case opOr:
		return "<or>"
	case opSeq:
		return "<sequence>"
	case opAxis:
		return "<axis>"
	case opUnion:
		return "<union>"
	case opIntersect:
		return "<intersect>"
	case opExcept:
		return "<except>"
	case opRange:
		return "<range>"
	case opConcat:
		return "<concat>"
	case opAssign:
		return "<assignment>"
	case opInstanceOf:
		return "<instance-of>"
	case opCastAs:
		return "<cast-as>"
	case opCastableAs:
		return "<castable-as>"
	case opTreatAs:
		return "<treat-as>"
	case opFor:
		return "<for>"
	case opLet:
		return "<let>"
	case opSome:
		return "<some>"
	case opEvery:
		return "<every>"
	case opIf:
		return "<if>"
	case opIn:
		return "<in>"
	case opReturn:
		return "<return>"
	case opSatisfies:
		return "<satisfies>"
	case opThen:
		return "<then>"
	case opElse:
		return "<else>"
	case opQuestion:
		return "<question>"
	case Invalid:
		return "<invalid>"
	default:
		return "<unknown>"
	}
}

// keyword maps a named symbol to its token. Follow holds the second
// word of two-word operators such as "instance of".
type keyword struct {
	Type   rune
	Follow string
}

type Scanner struct {
	input    *bufio.Reader
	char     rune
	str      bytes.Buffer
	keywords map[string]keyword

	Position
	old Position
}

func Scan(r io.Reader) *Scanner {
	return ScanWith(r, nil)
}

func ScanWith(r io.Reader, keywords map[string]keyword) *Scanner {
	scan := &Scanner{
		input:    bufio.NewReader(r),
		keywords: keywords,
	}
	scan.Line = 1
	scan.read()
	return scan
}

func (s *Scanner) Scan() Token {
	var tok Token
	if s.done() {
		tok.Position = s.Position
		tok.Type = EOF
		return tok
	}
	s.str.Reset()

	s.skipBlank()
	if s.done() {
		tok.Position = s.Position
		tok.Type = EOF
		return tok
	}
	tok.Position = s.Position
	switch {
	case isOperator(s.char):
		s.scanOperator(&tok)
	case isDelimiter(s.char):
		s.scanDelimiter(&tok)
	case s.char == arobase:
		s.scanAttr(&tok)
	case s.char == apos || s.char == quote:
		s.scanLiteral(&tok)
	case s.char == dollar:
		s.scanVariable(&tok)
	case unicode.IsLetter(s.char) || s.char == underscore:
		s.scanIdent(&tok)
	case unicode.IsDigit(s.char):
		s.scanNumber(&tok)
	default:
		tok.Type = Invalid
	}
	return tok
}

func (s *Scanner) scanOperator(tok *Token) {
	switch k := s.peek(); s.char {
	case question:
		tok.Type = opQuestion
	case plus:
		tok.Type = opAdd
	case dash:
		tok.Type = opSub
	case star:
		tok.Type = opMul
	case equal:
		tok.Type = opEq
	case bang:
		tok.Type = Invalid
		if k == equal {
			s.read()
			tok.Type = opNe
		}
	case langle:
		tok.Type = opLt
		if k == equal {
			s.read()
			tok.Type = opLe
		} else if k == langle {
			s.read()
			tok.Type = opBefore
		}
	case rangle:
		tok.Type = opGt
		if k == equal {
			s.read()
			tok.Type = opGe
		} else if k == rangle {
			s.read()
			tok.Type = opAfter
		}
	case lparen:
		tok.Type = begGrp
		if k == colon {
			s.skipComment(tok)
			return
		}
	case rparen:
		tok.Type = endGrp
	default:
		tok.Type = Invalid
	}
	if tok.Type != Invalid {
		s.read()
		s.skipBlank()
	}
}

func (s *Scanner) skipComment(tok *Token) {
	s.read()
	s.read()
	depth := 1
	for !s.done() && depth > 0 {
		switch {
		case s.char == lparen && s.peek() == colon:
			s.read()
			s.read()
			depth++
		case s.char == colon && s.peek() == rparen:
			s.read()
			s.read()
			depth--
		default:
			s.read()
		}
	}
	if depth > 0 {
		tok.Type = Invalid
		return
	}
	*tok = s.Scan()
}

func (s *Scanner) scanDelimiter(tok *Token) {
	switch k := s.peek(); s.char {
	case colon:
		tok.Type = Namespace
		if k == colon {
			s.read()
			tok.Type = opAxis
		} else if k == equal {
			s.read()
			tok.Type = opAssign
		}
	case dot:
		tok.Type = currNode
		if k == s.char {
			s.read()
			tok.Type = parentNode
		}
	case comma:
		tok.Type = opSeq
	case pipe:
		tok.Type = opUnion
		if k == s.char {
			s.read()
			tok.Type = opConcat
		}
	case lsquare:
		tok.Type = begPred
	case rsquare:
		tok.Type = endPred
	case slash:
		tok.Type = currLevel
		if k == slash {
			s.read()
			tok.Type = anyLevel
		}
	default:
		tok.Type = Invalid
	}
	if tok.Type != Invalid {
		s.read()
		s.skipBlank()
	}
}

func (s *Scanner) scanLiteral(tok *Token) {
	quote := s.char
	s.read()
	for !s.done() && s.char != quote {
		s.write()
		s.read()
	}
	tok.Type = Literal
	tok.Literal = s.str.String()
	if s.char != quote {
		tok.Type = Invalid
	}
	s.read()
}

func (s *Scanner) scanAttr(tok *Token) {
	s.read()
	if s.char == star {
		s.read()
		tok.Type = attrNode
		tok.Literal = "*"
		return
	}
	s.scanIdent(tok)
	tok.Type = attrNode
}

func (s *Scanner) scanVariable(tok *Token) {
	s.read()
	for !s.done() && (unicode.IsLetter(s.char) || unicode.IsDigit(s.char) || s.char == underscore) {
		s.write()
		s.read()
	}
	tok.Type = variable
	tok.Literal = s.str.String()
}

func (s *Scanner) scanNumber(tok *Token) {
	for !s.done() && unicode.IsDigit(s.char) {
		s.write()
		s.read()
	}
	tok.Type = Digit
	tok.Literal = s.str.String()
	if s.char != dot {
		return
	}
	s.write()
	s.read()
	for !s.done() && unicode.IsDigit(s.char) {
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
	if s.char != 'e' && s.char != 'E' {
		return
	}
	s.write()
	s.read()
	if s.char == '-' || s.char == '+' {
		s.write()
		s.read()
	}
	for !s.done() && unicode.IsDigit(s.char) {
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
}

func (s *Scanner) scanIdent(tok *Token) {
	accept := func() bool {
		return unicode.IsLetter(s.char) || unicode.IsDigit(s.char) ||
			s.char == dash || s.char == underscore || s.char == dot
	}
	for !s.done() && accept() {
		s.write()
		s.read()
	}
	tok.Type = Name
	tok.Literal = s.str.String()

	kw, ok := s.keywords[tok.Literal]
	if ok {
		if kw.Follow == "" || s.lookForward(kw.Follow) {
			tok.Type = kw.Type
		}
	}
	s.skipBlank()
}

func (s *Scanner) lookForward(want string) bool {
	if s.char == utf8.RuneError || !unicode.IsSpace(s.char) {
		return false
	}
	peek, _ := s.input.Peek(64)
	tmp := bytes.TrimLeft(peek, " \t\r\n")
	if !bytes.HasPrefix(tmp, []byte(want)) {
		return false
	}
	rest := tmp[len(want):]
	if len(rest) > 0 && !isBoundary(rune(rest[0])) {
		return false
	}
	skip := len(want) + bytes.Index(peek, []byte(want))
	s.input.Discard(skip)
	s.Column += skip
	return true
}

func isBoundary(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != dash && c != underscore
}

func (s *Scanner) skipBlank() {
	for unicode.IsSpace(s.char) {
		s.read()
	}
}

func (s *Scanner) write() {
	s.str.WriteRune(s.char)
}

func (s *Scanner) read() {
	s.old = s.Position
	if s.char == '\n' {
		s.Column = 0
		s.Line++
	}
	s.Column++
	c, _, err := s.input.ReadRune()
	if err != nil {
		s.char = utf8.RuneError
	} else {
		s.char = c
	}
}

func (s *Scanner) peek() rune {
	defer s.input.UnreadRune()
	c, _, _ := s.input.ReadRune()
	return c
}

func (s *Scanner) done() bool {
	return s.char == utf8.RuneError
}

const (
	langle     = '<'
	rangle     = '>'
	lsquare    = '['
	rsquare    = ']'
	lparen     = '('
	rparen     = ')'
	question   = '?'
	colon      = ':'
	quote      = '"'
	apos       = '\''
	slash      = '/'
	bang       = '!'
	equal      = '='
	dash       = '-'
	underscore = '_'
	dot        = '.'
	arobase    = '@'
	comma      = ','
	plus       = '+'
	star       = '*'
	pipe       = '|'
	dollar     = '$'
)

func isDelimiter(c rune) bool {
	return c == comma || c == dot || c == pipe || c == slash ||
		c == lsquare || c == rsquare || c == colon
}

func isOperator(c rune) bool {
	return c == plus || c == dash || c == star || c == question ||
		c == equal || c == bang || c == langle || c == rangle ||
		c == lparen || c == rparen
}
