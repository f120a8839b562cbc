package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '*':
			if i+1 < len(rs) && rs[i+1] == '*' {
				toks = append(toks, token{tokPow, "**"})
				i += 2
				continue
			}
			toks = append(toks, token{tokMul, "*"})
			i++
		case r == '^':
			toks = append(toks, token{tokPow, "^"})
			i++
		case r == '/':
			toks = append(toks, token{tokDiv, "/"})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case unicode.IsDigit(r) || r == '.' || r == '-' || r == '+':
			j := i + 1
			for j < len(rs) {
				c := rs[j]
				if unicode.IsDigit(c) || c == '.' {
					j++
					continue
				}
				if (c == 'e' || c == 'E') && j+1 < len(rs) && (unicode.IsDigit(rs[j+1]) || rs[j+1] == '-' || rs[j+1] == '+') {
					j += 2
					continue
				}
				break
			}
			toks = append(toks, token{tokNumber, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_' || r == 'µ':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return toks, nil
}

// part is one named unit in a product, raised to exp.
type part struct {
	def *definition
	exp int
}

// product is the result of evaluating a unit expression.
type product struct {
	factor float64
	parts  []part
}

func (p product) mul(o product, sign int) product {
	out := product{factor: p.factor, parts: append([]part(nil), p.parts...)}
	if sign > 0 {
		out.factor *= o.factor
	} else {
		out.factor /= o.factor
	}
	for _, op := range o.parts {
		out.parts = append(out.parts, part{def: op.def, exp: op.exp * sign})
	}
	return out
}

func (p product) pow(n int) product {
	out := product{factor: math.Pow(p.factor, float64(n))}
	for _, pp := range p.parts {
		out.parts = append(out.parts, part{def: pp.def, exp: pp.exp * n})
	}
	return out
}

// merged folds repeated units together, keeping first-occurrence order.
func (p product) merged() []part {
	var out []part
	idx := map[string]int{}
	for _, pp := range p.parts {
		if i, ok := idx[pp.def.name]; ok {
			out[i].exp += pp.exp
			continue
		}
		idx[pp.def.name] = len(out)
		out = append(out, pp)
	}
	kept := out[:0]
	for _, pp := range out {
		if pp.exp != 0 {
			kept = append(kept, pp)
		}
	}
	return kept
}

type exprParser struct {
	reg  *Registry
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) parseProduct() (product, error) {
	left, err := p.parsePower()
	if err != nil {
		return product{}, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokRParen {
			return left, nil
		}
		sign := 1
		switch tok.kind {
		case tokMul:
			p.pos++
		case tokDiv:
			p.pos++
			sign = -1
		case tokIdent, tokNumber, tokLParen:
			// juxtaposition multiplies: "28.35 gram"
		default:
			return product{}, fmt.Errorf("unexpected %q", tok.text)
		}
		right, err := p.parsePower()
		if err != nil {
			return product{}, err
		}
		left = left.mul(right, sign)
	}
}

func (p *exprParser) parsePower() (product, error) {
	base, err := p.parseAtom()
	if err != nil {
		return product{}, err
	}
	tok, ok := p.peek()
	if !ok || tok.kind != tokPow {
		return base, nil
	}
	p.pos++
	exp, ok := p.peek()
	if !ok || exp.kind != tokNumber {
		return product{}, fmt.Errorf("expected integer exponent")
	}
	p.pos++
	n, err := strconv.Atoi(exp.text)
	if err != nil {
		return product{}, fmt.Errorf("exponent %q is not an integer", exp.text)
	}
	return base.pow(n), nil
}

func (p *exprParser) parseAtom() (product, error) {
	tok, ok := p.peek()
	if !ok {
		return product{}, fmt.Errorf("unexpected end of expression")
	}
	p.pos++
	switch tok.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return product{}, fmt.Errorf("invalid number %q", tok.text)
		}
		return product{factor: f}, nil
	case tokIdent:
		def, err := p.reg.resolve(tok.text)
		if err != nil {
			return product{}, err
		}
		return product{factor: 1, parts: []part{{def: def, exp: 1}}}, nil
	case tokLParen:
		inner, err := p.parseProduct()
		if err != nil {
			return product{}, err
		}
		if closing, ok := p.peek(); !ok || closing.kind != tokRParen {
			return product{}, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	default:
		return product{}, fmt.Errorf("unexpected %q", tok.text)
	}
}

// evaluate parses expr against the registry. Callers must hold r.mu.
func (r *Registry) evaluate(expr string) (product, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return product{}, err
	}
	if len(toks) == 0 {
		return product{}, fmt.Errorf("empty unit expression")
	}
	p := &exprParser{reg: r, toks: toks}
	prod, err := p.parseProduct()
	if err != nil {
		return product{}, err
	}
	if p.pos != len(toks) {
		return product{}, fmt.Errorf("unexpected %q", toks[p.pos].text)
	}
	return prod, nil
}

// compose turns an evaluated product into a unit definition. A lone unit
// with unit factor keeps its own identity, offset included.
func compose(prod product) (*definition, error) {
	parts := prod.merged()
	if prod.factor == 1 && len(parts) == 1 && parts[0].exp == 1 {
		return parts[0].def, nil
	}

	def := &definition{scale: prod.factor, dim: Dimension{}}
	var num, den []string
	for _, pp := range parts {
		if pp.def.offset != 0 {
			return nil, fmt.Errorf("offset unit '%s' cannot be combined with other units", pp.def.name)
		}
		def.scale *= math.Pow(pp.def.scale, float64(pp.exp))
		def.dim = def.dim.mul(pp.def.dim, pp.exp)

		abs := pp.exp
		if abs < 0 {
			abs = -abs
		}
		term := pp.def.name
		if abs != 1 {
			term += " ** " + strconv.Itoa(abs)
		}
		if pp.exp > 0 {
			num = append(num, term)
		} else {
			den = append(den, term)
		}
	}

	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, " * "))
	}
	for _, t := range den {
		b.WriteString(" / ")
		b.WriteString(t)
	}
	def.name = b.String()
	return def, nil
}
