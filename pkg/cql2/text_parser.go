package cql2

import "strings"

// Precedence levels from low to high binding power, taken verbatim from
// the associativity/precedence table in the grammar: OR, BETWEEN, AND,
// prefix NOT, '=', {'<>','>','>=','<','<='}, LIKE, IN, postfix IS NULL,
// IS, {'+','-'}, {'*','/','%'}, '^', prefix unary '-'.
const (
	precLowest = iota
	precOr
	precBetween
	precAnd
	precNot
	precEq
	precCompare
	precLike
	precIn
	precIsNull
	precAddSub
	precMulDivMod
	precPow
	precUnaryMinus
)

type prefixParseFn func() (Expr, error)
type infixParseFn func(left Expr) (Expr, error)

// parser is a Pratt (operator-precedence) parser in the
// registerPrefix/registerInfix/parseExpression(precedence) style of
// ha1tch/tsqlparser's parser package.
type parser struct {
	lex  *lexer
	cur  token
	peek token

	prefixFns map[tokenType]prefixParseFn
	infixFns  map[tokenType]infixParseFn
	precTable map[tokenType]int
}

func newParser(input string) *parser {
	p := &parser{lex: newLexer(input)}
	p.nextToken()
	p.nextToken()

	p.prefixFns = map[tokenType]prefixParseFn{
		tokIDENT:    p.parseIdentOrCall,
		tokNUMBER:   p.parseNumber,
		tokSTRING:   p.parseString,
		tokGEOM:     p.parseGeom,
		tokTRUE:     p.parseTrue,
		tokFALSE:    p.parseFalse,
		tokNULL:     p.parseNull,
		tokDOTDOT:   p.parseOpenInterval,
		tokLPAREN:   p.parseGroupOrArray,
		tokLBRACK:   p.parseBracketArray,
		tokNOT:      p.parsePrefixNot,
		tokMINUS:    p.parsePrefixMinus,
		tokDATE:     p.parseDateCtor,
		tokTIMESTAMP: p.parseTimestampCtor,
		tokINTERVAL: p.parseIntervalCtor,
		tokCASEI:    p.parseIdentOrCall,
		tokACCENTI:  p.parseIdentOrCall,
	}

	p.infixFns = map[tokenType]infixParseFn{
		tokOR:      p.makeBooleanInfix("or", precOr),
		tokAND:     p.makeBooleanInfix("and", precAnd),
		tokBETWEEN: p.parseBetween,
		tokEQ:      p.makeComparisonInfix("=", precEq, true),
		tokNEQ:     p.makeComparisonInfix("<>", precCompare, true),
		tokLT:      p.makeComparisonInfix("<", precCompare, true),
		tokLTE:     p.makeComparisonInfix("<=", precCompare, true),
		tokGT:      p.makeComparisonInfix(">", precCompare, true),
		tokGTE:     p.makeComparisonInfix(">=", precCompare, true),
		tokLIKE:    p.parseLike,
		tokIN:      p.parseIn,
		tokIS:      p.parseIsNull,
		tokPLUS:    p.makeComparisonInfix("+", precAddSub, false),
		tokMINUS:   p.makeComparisonInfix("-", precAddSub, false),
		tokSTAR:    p.makeComparisonInfix("*", precMulDivMod, false),
		tokSLASH:   p.makeComparisonInfix("/", precMulDivMod, false),
		tokPERCENT: p.makeComparisonInfix("%", precMulDivMod, false),
		tokCARET:   p.makeComparisonInfix("^", precPow, false),
		tokNOT:     p.parseNotInfix,
	}

	p.precTable = map[tokenType]int{
		tokOR: precOr, tokBETWEEN: precBetween, tokAND: precAnd,
		tokEQ: precEq, tokNEQ: precCompare, tokLT: precCompare, tokLTE: precCompare,
		tokGT: precCompare, tokGTE: precCompare,
		tokLIKE: precLike, tokIN: precIn, tokIS: precIsNull,
		tokPLUS: precAddSub, tokMINUS: precAddSub,
		tokSTAR: precMulDivMod, tokSLASH: precMulDivMod, tokPERCENT: precMulDivMod,
		tokCARET: precPow,
		// NOT, used as infix only for NOT LIKE / NOT IN / NOT BETWEEN,
		// is given BETWEEN's precedence (the lowest of the three) so the
		// climbing loop always considers descending into it; the infix
		// handler itself dispatches to the correct sub-parser once it
		// sees which keyword follows.
		tokNOT: precBetween,
	}
	return p
}

func (p *parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lex.next()
}

func (p *parser) peekPrecedence() int {
	if pr, ok := p.precTable[p.peek.typ]; ok {
		return pr
	}
	return precLowest
}

func (p *parser) parseExpression(precedence int) (Expr, error) {
	prefix := p.prefixFns[p.cur.typ]
	if prefix == nil {
		return nil, parseErrorf(p.cur.lit, "unexpected token")
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}
	for p.peek.typ != tokEOF && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.typ]
		if infix == nil {
			return left, nil
		}
		p.nextToken()
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// --- prefix parse functions ---

func (p *parser) parseNumber() (Expr, error) {
	f, err := parseFloatLiteral(p.cur.lit)
	if err != nil {
		return nil, parseErrorf(p.cur.lit, "%s", err)
	}
	return Float(f), nil
}

func (p *parser) parseString() (Expr, error) {
	return Literal(p.cur.lit), nil
}

func (p *parser) parseGeom() (Expr, error) {
	wkt, err := normalizeWKTText(p.cur.lit)
	if err != nil {
		return nil, parseErrorf(p.cur.lit, "%s", err)
	}
	return &Geometry{WKT: wkt}, nil
}

func (p *parser) parseTrue() (Expr, error)  { return Bool(true), nil }
func (p *parser) parseFalse() (Expr, error) { return Bool(false), nil }
func (p *parser) parseNull() (Expr, error)  { return Null{}, nil }

func (p *parser) parseOpenInterval() (Expr, error) { return IntervalOpen{}, nil }

func (p *parser) parsePrefixNot() (Expr, error) {
	p.nextToken()
	operand, err := p.parseExpression(precNot)
	if err != nil {
		return nil, err
	}
	return wrapNot(operand), nil
}

// parsePrefixMinus implements §4.4's "prefix -" reshape: encode as
// Operation{*, [Float(-1.0), child]}, never a unary `-` node.
func (p *parser) parsePrefixMinus() (Expr, error) {
	p.nextToken()
	operand, err := p.parseExpression(precUnaryMinus)
	if err != nil {
		return nil, err
	}
	return &Operation{Op: "*", Args: []Expr{Float(-1.0), operand}}, nil
}

func (p *parser) parseIdentOrCall() (Expr, error) {
	name := p.cur.lit
	if p.peek.typ == tokLPAREN {
		p.nextToken() // cur = LPAREN
		lower := strings.ToLower(name)
		if lower == "bbox" {
			values, err := p.parseArgList(tokRPAREN)
			if err != nil {
				return nil, err
			}
			return &BBox{Values: values}, nil
		}
		args, err := p.parseArgList(tokRPAREN)
		if err != nil {
			return nil, err
		}
		return NewOperation(lower, args...), nil
	}
	full := name
	for p.peek.typ == tokDOT {
		p.nextToken() // cur = DOT
		if p.peek.typ != tokIDENT {
			return nil, parseErrorf(p.peek.lit, "expected identifier after '.'")
		}
		p.nextToken() // cur = IDENT
		full += "." + p.cur.lit
	}
	return &Property{Name: full}, nil
}

func (p *parser) parseDateCtor() (Expr, error) {
	return p.parseSingleArgCtor("date", func(child Expr) Expr { return &Date{Child: child} })
}

func (p *parser) parseTimestampCtor() (Expr, error) {
	return p.parseSingleArgCtor("timestamp", func(child Expr) Expr { return &Timestamp{Child: child} })
}

func (p *parser) parseSingleArgCtor(name string, build func(Expr) Expr) (Expr, error) {
	if p.peek.typ != tokLPAREN {
		return nil, parseErrorf(p.peek.lit, "expected '(' after %s", name)
	}
	p.nextToken() // cur = LPAREN
	args, err := p.parseArgList(tokRPAREN)
	if err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, arityError(name, len(args), "1")
	}
	return build(args[0]), nil
}

func (p *parser) parseIntervalCtor() (Expr, error) {
	if p.peek.typ != tokLPAREN {
		return nil, parseErrorf(p.peek.lit, "expected '(' after interval")
	}
	p.nextToken() // cur = LPAREN
	args, err := p.parseArgList(tokRPAREN)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, arityError("interval", len(args), "2")
	}
	return &Interval{Start: args[0], End: args[1]}, nil
}

// parseGroupOrArray handles cur == '('. "(" expr ")" is a parenthesized
// group (unwrapped); "(" expr "," expr ... ")" is an Array literal.
func (p *parser) parseGroupOrArray() (Expr, error) {
	if p.peek.typ == tokRPAREN {
		p.nextToken()
		return &Array{}, nil
	}
	p.nextToken() // move to first expr token
	first, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if p.peek.typ == tokCOMMA {
		items := []Expr{first}
		for p.peek.typ == tokCOMMA {
			p.nextToken() // cur = COMMA
			p.nextToken() // cur = next expr start
			next, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			items = append(items, next)
		}
		if p.peek.typ != tokRPAREN {
			return nil, parseErrorf(p.peek.lit, "expected ')'")
		}
		p.nextToken()
		return &Array{Items: items}, nil
	}
	if p.peek.typ != tokRPAREN {
		return nil, parseErrorf(p.peek.lit, "expected ')'")
	}
	p.nextToken()
	return first, nil
}

func (p *parser) parseBracketArray() (Expr, error) {
	items, err := p.parseArgList(tokRBRACK)
	if err != nil {
		return nil, err
	}
	return &Array{Items: items}, nil
}

// parseArgList assumes cur is already the opening delimiter and
// consumes through and including the closing one.
func (p *parser) parseArgList(closing tokenType) ([]Expr, error) {
	var args []Expr
	if p.peek.typ == closing {
		p.nextToken()
		return args, nil
	}
	p.nextToken()
	first, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	args = append(args, first)
	for p.peek.typ == tokCOMMA {
		p.nextToken() // cur = COMMA
		p.nextToken() // cur = next expr start
		next, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, next)
	}
	if p.peek.typ != closing {
		return nil, parseErrorf(p.peek.lit, "expected closing delimiter")
	}
	p.nextToken()
	return args, nil
}

// --- infix parse functions ---

func wrapNot(e Expr) Expr { return &Operation{Op: "not", Args: []Expr{e}} }

func (p *parser) makeBooleanInfix(op string, prec int) infixParseFn {
	return func(left Expr) (Expr, error) {
		p.nextToken()
		rhs, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		return flattenBoolean(op, left, rhs), nil
	}
}

func flattenBoolean(op string, left, right Expr) Expr {
	var args []Expr
	if lo, ok := left.(*Operation); ok && lo.Op == op {
		args = append(args, lo.Args...)
	} else {
		args = append(args, left)
	}
	if ro, ok := right.(*Operation); ok && ro.Op == op {
		args = append(args, ro.Args...)
	} else {
		args = append(args, right)
	}
	return &Operation{Op: op, Args: args}
}

func (p *parser) makeComparisonInfix(op string, prec int, rightAssoc bool) infixParseFn {
	return func(left Expr) (Expr, error) {
		next := prec
		if rightAssoc {
			next = prec - 1
		}
		p.nextToken()
		rhs, err := p.parseExpression(next)
		if err != nil {
			return nil, err
		}
		return &Operation{Op: op, Args: []Expr{left, rhs}}, nil
	}
}

// parseBetween implements §4.4's BETWEEN reshape. Precedence places
// AND above BETWEEN, so parsing the right-hand side at precBetween
// naturally absorbs the "a AND b" (and any further "AND c" tail) that
// the grammar requires.
func (p *parser) parseBetween(left Expr) (Expr, error) {
	p.nextToken()
	rhs, err := p.parseExpression(precBetween)
	if err != nil {
		return nil, err
	}
	return reshapeBetween(left, rhs), nil
}

func reshapeBetween(lhs, rhs Expr) Expr {
	var a, b Expr
	var tail []Expr
	if rOp, ok := rhs.(*Operation); ok && rOp.Op == "and" && len(rOp.Args) >= 2 {
		a, b = rOp.Args[0], rOp.Args[1]
		if len(rOp.Args) > 2 {
			tail = rOp.Args[2:]
		}
	} else {
		a, b = rhs, rhs
	}

	var base Expr
	if lOp, ok := lhs.(*Operation); ok && lOp.Op == "and" && len(lOp.Args) >= 1 {
		lastIdx := len(lOp.Args) - 1
		lLast := lOp.Args[lastIdx]
		remaining := lOp.Args[:lastIdx]
		betweenNode := &Operation{Op: "between", Args: []Expr{lLast, a, b}}
		if len(remaining) == 0 {
			base = betweenNode
		} else {
			args := append(append([]Expr{}, remaining...), betweenNode)
			base = &Operation{Op: "and", Args: args}
		}
	} else {
		base = &Operation{Op: "between", Args: []Expr{lhs, a, b}}
	}

	if len(tail) > 0 {
		return &Operation{Op: "and", Args: append([]Expr{base}, tail...)}
	}
	return base
}

func (p *parser) parseLike(left Expr) (Expr, error) {
	p.nextToken()
	rhs, err := p.parseExpression(precLike - 1)
	if err != nil {
		return nil, err
	}
	return &Operation{Op: "like", Args: []Expr{left, rhs}}, nil
}

func (p *parser) parseIn(left Expr) (Expr, error) {
	if p.peek.typ != tokLPAREN && p.peek.typ != tokLBRACK {
		return nil, parseErrorf(p.peek.lit, "expected '(' or '[' after IN")
	}
	p.nextToken() // cur = opening delimiter
	var arr Expr
	var err error
	if p.cur.typ == tokLPAREN {
		arr, err = p.parseGroupOrArray()
		if err == nil {
			if _, ok := arr.(*Array); !ok {
				arr = &Array{Items: []Expr{arr}}
			}
		}
	} else {
		arr, err = p.parseBracketArray()
	}
	if err != nil {
		return nil, err
	}
	return &Operation{Op: "in", Args: []Expr{left, arr}}, nil
}

func (p *parser) parseIsNull(left Expr) (Expr, error) {
	p.nextToken() // consume IS
	negate := false
	if p.cur.typ == tokNOT {
		negate = true
		p.nextToken()
	}
	if p.cur.typ != tokNULL {
		return nil, parseErrorf(p.cur.lit, "expected NULL after IS [NOT]")
	}
	base := Expr(&Operation{Op: "isnull", Args: []Expr{left}})
	if negate {
		return wrapNot(base), nil
	}
	return base, nil
}

// parseNotInfix dispatches NOT LIKE / NOT IN / NOT BETWEEN (§4.4's
// "NOT-prefixed infix" reshape): strip the NOT, build the base
// operation, wrap the result in Operation{not, [...]}.
func (p *parser) parseNotInfix(left Expr) (Expr, error) {
	switch p.peek.typ {
	case tokBETWEEN:
		p.nextToken() // cur = BETWEEN
		base, err := p.parseBetween(left)
		if err != nil {
			return nil, err
		}
		return wrapNot(base), nil
	case tokLIKE:
		p.nextToken() // cur = LIKE
		base, err := p.parseLike(left)
		if err != nil {
			return nil, err
		}
		return wrapNot(base), nil
	case tokIN:
		p.nextToken() // cur = IN
		base, err := p.parseIn(left)
		if err != nil {
			return nil, err
		}
		return wrapNot(base), nil
	default:
		return nil, parseErrorf(p.peek.lit, "expected LIKE, IN, or BETWEEN after NOT")
	}
}

// parseTextExpr parses one complete cql2-text expression. Trailing
// tokens after a complete expression are a parse error, per §4.4's
// "parser returns exactly one Expr" contract.
func parseTextExpr(input string) (Expr, error) {
	p := newParser(input)
	if p.cur.typ == tokEOF {
		return nil, parseErrorf("", "empty input")
	}
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	p.nextToken()
	if p.cur.typ != tokEOF {
		return nil, parseErrorf(p.cur.lit, "unexpected trailing input")
	}
	return expr, nil
}
