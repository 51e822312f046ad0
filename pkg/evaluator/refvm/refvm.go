package refvm

import (
	"fmt"
	"math"
	"strings"

	"github.com/audioscript/jsfxgo/pkg/evaluator"
)

const memSize = 1 << 16

// VM is the reference evaluator: one persistent variable environment plus a
// flat memory block, shared across every compiled section.
type VM struct {
	env        map[string]float64
	programs   map[evaluator.SectionID][]token
	sliderVars map[string]int // lowercased var name -> 1-based slider id
	callbacks  evaluator.HostCallbacks
	mem        [memSize]float64
	usedMem    int
	compiled   bool
}

// New creates an uncompiled VM.
func New() *VM {
	return &VM{env: make(map[string]float64)}
}

// Compile implements evaluator.Evaluator.
func (v *VM) Compile(opts evaluator.CompileOptions, sections map[evaluator.SectionID]string, sliderVars map[string]int, callbacks evaluator.HostCallbacks) error {
	programs := make(map[evaluator.SectionID][]token, len(sections))
	for id, src := range sections {
		if id == evaluator.SectionSerialize && opts.NoSerialize {
			continue
		}
		toks, err := lex(src)
		if err != nil {
			return fmt.Errorf("section %d: %w", id, err)
		}
		programs[id] = toks
	}

	v.programs = programs
	v.sliderVars = make(map[string]int, len(sliderVars))
	for name, id := range sliderVars {
		v.sliderVars[strings.ToLower(name)] = id
	}
	v.callbacks = callbacks
	v.compiled = true
	return nil
}

// Init implements evaluator.Evaluator.
func (v *VM) Init() error {
	return v.RunSection(evaluator.SectionInit, 1)
}

// RunSection implements evaluator.Evaluator. Every section runs its
// statement list once per call except @sample, which the processing
// engine drives frame-by-frame; the reference VM re-executes the body
// max(frames,1) times for callers that prefer to hand it the whole block
// rather than calling once per frame themselves.
func (v *VM) RunSection(id evaluator.SectionID, frames int) error {
	if !v.compiled {
		return fmt.Errorf("refvm: not compiled")
	}
	toks, ok := v.programs[id]
	if !ok || len(toks) <= 1 { // just tokEOF
		return nil
	}
	reps := 1
	if id == evaluator.SectionSample && frames > 1 {
		reps = frames
	}
	for i := 0; i < reps; i++ {
		p := &interp{toks: toks, vm: v}
		if err := p.run(); err != nil {
			return fmt.Errorf("refvm: %w", err)
		}
	}
	return nil
}

// ReadVar implements evaluator.Evaluator.
func (v *VM) ReadVar(name string) (float64, bool) {
	val, ok := v.env[strings.ToLower(name)]
	return val, ok
}

// WriteVar implements evaluator.Evaluator. It always succeeds: EEL2-like
// languages auto-vivify variables on first use.
func (v *VM) WriteVar(name string, val float64) bool {
	v.env[strings.ToLower(name)] = val
	return true
}

// FindVar implements evaluator.Evaluator.
func (v *VM) FindVar(name string) bool {
	_, ok := v.env[strings.ToLower(name)]
	return ok
}

// ReadVMem implements evaluator.Evaluator.
func (v *VM) ReadVMem(addr, n int) ([]float64, error) {
	if addr < 0 || n < 0 || addr+n > memSize {
		return nil, fmt.Errorf("refvm: memory range [%d,%d) out of bounds", addr, addr+n)
	}
	out := make([]float64, n)
	copy(out, v.mem[addr:addr+n])
	return out, nil
}

// WriteVMem implements evaluator.Evaluator.
func (v *VM) WriteVMem(addr int, values []float64) error {
	if addr < 0 || addr+len(values) > memSize {
		return fmt.Errorf("refvm: memory range [%d,%d) out of bounds", addr, addr+len(values))
	}
	copy(v.mem[addr:], values)
	v.touchMem(addr + len(values) - 1)
	return nil
}

// UsedMem implements evaluator.Evaluator.
func (v *VM) UsedMem() int { return v.usedMem }

func (v *VM) touchMem(addr int) {
	if addr+1 > v.usedMem {
		v.usedMem = addr + 1
	}
}

// interp executes one pass over a compiled section's token stream against
// the owning VM's persistent environment.
type interp struct {
	toks []token
	pos  int
	vm   *VM
}

func (p *interp) cur() token { return p.toks[p.pos] }
func (p *interp) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *interp) expect(kind tokKind, what string) (token, error) {
	if p.cur().kind != kind {
		return token{}, fmt.Errorf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *interp) run() error {
	for p.cur().kind != tokEOF {
		if err := p.statement(); err != nil {
			return err
		}
		if p.cur().kind == tokSemi {
			p.advance()
		} else if p.cur().kind != tokEOF {
			return fmt.Errorf("expected ';'")
		}
	}
	return nil
}

func (p *interp) statement() error {
	if p.cur().kind == tokIdent {
		save := p.pos
		name := p.cur().text
		p.advance()
		if p.cur().kind == tokAssign {
			p.advance()
			val, err := p.expr()
			if err != nil {
				return err
			}
			p.vm.env[strings.ToLower(name)] = val
			return nil
		}
		if p.cur().kind == tokLParen {
			_, err := p.call(name)
			return err
		}
		p.pos = save
	}
	_, err := p.expr()
	return err
}

// mem_read(addr) and mem_write(addr, v) are the reference VM's stand-in
// for EEL2's shared linear memory, which the real language addresses
// with bracket syntax; refvm has no bracket syntax and exposes it
// through these two builtins instead.
func (p *interp) call(name string) (float64, error) {
	lower := strings.ToLower(name)

	if lower == "sliderchange" || lower == "slider_automate" || lower == "slider_show" {
		return p.sliderBuiltin(lower)
	}

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return 0, err
	}
	var args []float64
	for p.cur().kind != tokRParen {
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return 0, err
	}

	arg := func(i int) float64 {
		if i < len(args) {
			return args[i]
		}
		return 0
	}

	switch lower {
	case "sin":
		return math.Sin(arg(0)), nil
	case "cos":
		return math.Cos(arg(0)), nil
	case "sqrt":
		return math.Sqrt(arg(0)), nil
	case "abs":
		return math.Abs(arg(0)), nil
	case "floor":
		return math.Floor(arg(0)), nil
	case "ceil":
		return math.Ceil(arg(0)), nil
	case "min":
		return math.Min(arg(0), arg(1)), nil
	case "max":
		return math.Max(arg(0), arg(1)), nil
	case "log":
		return math.Log(arg(0)), nil
	case "pow":
		return math.Pow(arg(0), arg(1)), nil
	case "mem_read":
		addr := int(arg(0))
		if addr < 0 || addr >= memSize {
			return 0, fmt.Errorf("mem_read: address %d out of bounds", addr)
		}
		return p.vm.mem[addr], nil
	case "mem_write":
		addr := int(arg(0))
		if addr < 0 || addr >= memSize {
			return 0, fmt.Errorf("mem_write: address %d out of bounds", addr)
		}
		p.vm.mem[addr] = arg(1)
		p.vm.touchMem(addr)
		return arg(1), nil
	default:
		return 0, fmt.Errorf("unknown function %s", name)
	}
}

// sliderBuiltin parses the argument list of sliderchange/slider_automate/
// slider_show. Their first argument is a slider *reference*: either a bare
// identifier bound to a slider's var name (`sliderchange(slider2)`) or a
// numeric literal naming the 1-based slider id directly
// (`slider_show(1,0)`); both forms are observed in the original ecosystem.
func (p *interp) sliderBuiltin(name string) (float64, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return 0, err
	}

	id, err := p.sliderRef()
	if err != nil {
		return 0, err
	}

	var rest []float64
	for p.cur().kind == tokComma {
		p.advance()
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		rest = append(rest, v)
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return 0, err
	}

	if p.vm.callbacks == nil {
		return 0, nil
	}
	switch name {
	case "sliderchange":
		p.vm.callbacks.SliderChanged(id)
	case "slider_automate":
		p.vm.callbacks.SliderAutomated(id)
	case "slider_show":
		mode := 0
		if len(rest) > 0 {
			mode = int(rest[0])
		}
		p.vm.callbacks.SliderShow(id, mode)
	}
	return 0, nil
}

func (p *interp) sliderRef() (int, error) {
	if p.cur().kind == tokIdent {
		next := p.toks[p.pos+1]
		if next.kind == tokComma || next.kind == tokRParen {
			name := strings.ToLower(p.cur().text)
			if id, ok := p.vm.sliderVars[name]; ok {
				p.advance()
				return id, nil
			}
		}
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (p *interp) expr() (float64, error) { return p.orExpr() }

func (p *interp) orExpr() (float64, error) {
	left, err := p.andExpr()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokOp && p.cur().text == "||" {
		p.advance()
		right, err := p.andExpr()
		if err != nil {
			return 0, err
		}
		left = boolToNum(left != 0 || right != 0)
	}
	return left, nil
}

func (p *interp) andExpr() (float64, error) {
	left, err := p.cmpExpr()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokOp && p.cur().text == "&&" {
		p.advance()
		right, err := p.cmpExpr()
		if err != nil {
			return 0, err
		}
		left = boolToNum(left != 0 && right != 0)
	}
	return left, nil
}

func (p *interp) cmpExpr() (float64, error) {
	left, err := p.addExpr()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokOp && isCmpOp(p.cur().text) {
		op := p.advance().text
		right, err := p.addExpr()
		if err != nil {
			return 0, err
		}
		var res bool
		switch op {
		case "==":
			res = left == right
		case "!=":
			res = left != right
		case "<":
			res = left < right
		case "<=":
			res = left <= right
		case ">":
			res = left > right
		case ">=":
			res = left >= right
		}
		left = boolToNum(res)
	}
	return left, nil
}

func isCmpOp(s string) bool {
	switch s {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (p *interp) addExpr() (float64, error) {
	left, err := p.mulExpr()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokOp && (p.cur().text == "+" || p.cur().text == "-") {
		op := p.advance().text
		right, err := p.mulExpr()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *interp) mulExpr() (float64, error) {
	left, err := p.powExpr()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokOp && (p.cur().text == "*" || p.cur().text == "/" || p.cur().text == "%") {
		op := p.advance().text
		right, err := p.powExpr()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				left = 0
			} else {
				left /= right
			}
		case "%":
			left = math.Mod(left, right)
		}
	}
	return left, nil
}

func (p *interp) powExpr() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	if p.cur().kind == tokOp && p.cur().text == "^" {
		p.advance()
		right, err := p.powExpr()
		if err != nil {
			return 0, err
		}
		return math.Pow(left, right), nil
	}
	return left, nil
}

func (p *interp) unary() (float64, error) {
	if p.cur().kind == tokOp && p.cur().text == "-" {
		p.advance()
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	if p.cur().kind == tokOp && p.cur().text == "!" {
		p.advance()
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		return boolToNum(v == 0), nil
	}
	return p.primary()
}

func (p *interp) primary() (float64, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		return t.num, nil
	case tokLParen:
		p.advance()
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return 0, err
		}
		return v, nil
	case tokIdent:
		name := t.text
		p.advance()
		if p.cur().kind == tokLParen {
			return p.call(name)
		}
		return p.vm.env[strings.ToLower(name)], nil
	default:
		return 0, fmt.Errorf("unexpected token")
	}
}
