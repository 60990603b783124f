package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/finsightco/finsight/pkg/llm"
)

// CalculatorArgs is the typed argument record for calculator.
type CalculatorArgs struct {
	Expression string `json:"expression"`
}

// CalculatorTool evaluates arithmetic expressions over a restricted grammar:
// numbers, + - * / ( ), and the "N% of M" percentage idiom. Anything outside
// the allow-list is rejected before parsing; there is no general evaluation
// facility behind it.
type CalculatorTool struct{}

// NewCalculatorTool creates the calculator tool.
func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

func (t *CalculatorTool) Name() string { return NameCalculator }

func (t *CalculatorTool) Description() string {
	return "Perform financial calculations and mathematical operations. " +
		"Supports + - * / ( ) and percentages like \"20% of 50\"."
}

func (t *CalculatorTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "Arithmetic expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
	}
}

func (t *CalculatorTool) Invoke(ctx context.Context, args json.RawMessage) string {
	var a CalculatorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Sprintf("Calculation error: invalid arguments: %v", err)
	}
	return Calculate(a.Expression)
}

var (
	percentOfPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s+of\s+(\d+(?:\.\d+)?)`)
	percentPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
)

// Calculate evaluates a restricted arithmetic expression, returning the
// result or a descriptive error string. Integers render bare; other values
// render to 4 decimal places with trailing zeros stripped.
func Calculate(expression string) string {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return "Calculation error: empty expression"
	}

	// Rewrite the percentage idioms before the character check so "of" is
	// the only word ever accepted.
	expr = percentOfPattern.ReplaceAllString(expr, "($1/100) * $2")
	expr = percentPattern.ReplaceAllString(expr, "($1/100)")

	for _, r := range expr {
		if !strings.ContainsRune("0123456789+-*/.() ", r) {
			return "Error: Invalid characters in expression"
		}
	}

	p := &exprParser{input: expr}
	result, err := p.parse()
	if err != nil {
		return fmt.Sprintf("Calculation error: %v", err)
	}
	return formatResult(result)
}

func formatResult(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "Calculation error: result is not a finite number"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// exprParser is a recursive-descent evaluator:
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := number | '(' expr ')' | '-' factor | '+' factor
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parse() (float64, error) {
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

func (p *exprParser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) term() (float64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.factor()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.factor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) factor() (float64, error) {
	p.skipSpaces()
	switch p.peek() {
	case '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case '-':
		p.pos++
		v, err := p.factor()
		return -v, err
	case '+':
		p.pos++
		return p.factor()
	default:
		return p.number()
	}
}

func (p *exprParser) number() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		if p.pos < len(p.input) {
			return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
		}
		return 0, fmt.Errorf("unexpected end of expression")
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

var _ Tool = (*CalculatorTool)(nil)
