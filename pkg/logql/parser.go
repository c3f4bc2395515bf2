package logql

import (
	"fmt"
	"slices"
	"strings"
)

// ParseError is the type of error returned by Parse.
type ParseError struct {
	// Source column position where the error occurred.
	Position int
	// Error message.
	Message string
}

// Error returns a formatted version of the error, including the position.
func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Position, e.Message)
}

type token struct {
	pos int
	tok Token
	val string
	end int
}

type parser struct {
	src     []byte
	lexer   *lexer
	pos     int    // position of last token (tok)
	tok     Token  // last lexed token
	val     string // string value of last token (or "")
	end     int    // end offset of last token
	prevEnd int    // end offset of the last consumed token
	ahead   *token
}

// Parse uses panic/recover internally so recursive-descent methods can
// signal errors without threading (*Node, error) through every call.
// ParseError panics are caught here and returned as normal errors;
// any other panic (bug) is re-raised.
func Parse(src string) (tree *Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(ParseError); ok {
				tree = nil
				err = pe
			} else {
				panic(r)
			}
		}
	}()

	p := parser{src: []byte(src), lexer: newLexer([]byte(src))}
	p.next()

	start := p.pos
	root := &Node{Rule: RuleRoot, Pos: start}
	root.add(p.query())
	p.expect(eol)
	p.finish(root, start)

	return &Tree{Root: root}, nil
}

// query parses one of the top-level forms.
//
// user_macro | compared_agg_statement | agg_statement | log_stream_selector
func (p *parser) query() *Node {
	switch p.tok {
	case lbrace:
		sel, unwrap := p.logStreamSelector()
		if unwrap != nil {
			panic(ParseError{unwrap.Pos, "unwrap is only allowed inside a range function"})
		}
		return sel
	case identifier:
		if !IsBuiltinFunction(p.val) {
			return p.userMacro()
		}
		start := p.pos
		agg := p.aggStatement()
		if !p.matches(operator) {
			return agg
		}
		cmp := &Node{Rule: RuleComparedAggStatementCmp, Pos: p.pos}
		cmp.add(p.leaf(RuleNumberOperator))
		p.expect(number)
		cmp.add(p.leaf(RuleNumberValue))
		p.finish(cmp, cmp.Pos)

		compared := &Node{Rule: RuleComparedAggStatement, Pos: start}
		compared.add(agg, cmp)
		p.finish(compared, start)
		return compared
	default:
		panic(p.errorf("expected stream selector or function instead of %s", p.tok))
	}
}

// aggStatement parses an aggregation.
//
// aggregation_operator | unwrap_function | log_range_aggregation
func (p *parser) aggStatement() *Node {
	start := p.pos
	n := &Node{Rule: RuleAggStatement, Pos: start}
	if slices.Contains(aggregationOperatorFns, p.val) {
		n.add(p.aggregationOperator())
	} else {
		n.add(p.rangeFunction())
	}
	p.finish(n, start)
	return n
}

// aggregationOperator parses a high-level aggregation.
//
// aggregation_operator_fn [req_by_without] "(" (log_range_aggregation | unwrap_function) ")" [req_by_without]
func (p *parser) aggregationOperator() *Node {
	start := p.pos
	n := &Node{Rule: RuleAggregationOperator, Pos: start}
	n.add(p.leaf(RuleAggregationOperatorFn))

	grouped := false
	if p.isByWithout() {
		n.add(p.byWithout(RuleReqByWithout))
		grouped = true
	}

	p.expect(lparen)
	p.next()
	p.expect(identifier)
	if !slices.Contains(logRangeAggregationFns, p.val) && !slices.Contains(unwrapFns, p.val) {
		panic(p.errorf("expected range function instead of %s", p.val))
	}
	n.add(p.rangeFunction())
	p.expect(rparen)
	p.next()

	if p.isByWithout() {
		if grouped {
			panic(p.errorf("grouping is already defined"))
		}
		n.add(p.byWithout(RuleReqByWithout))
	}

	p.finish(n, start)
	return n
}

// rangeFunction parses a log range aggregation or an unwrap function. Which
// one it is depends on whether the selector ends with an unwrap statement.
//
// fn "(" log_stream_selector [unwrap_statement] "[" duration_value "]" ")" [req_by_without_unwrap]
func (p *parser) rangeFunction() *Node {
	start := p.pos
	fn := p.val
	fnNode := &Node{Rule: RuleLogRangeAggregationFn, Value: fn, Pos: p.pos}
	p.next()
	fnNode.Text = fn

	p.expect(lparen)
	p.next()
	sel, unwrap := p.logStreamSelector()

	var n *Node
	if unwrap != nil {
		if !slices.Contains(unwrapFns, fn) {
			panic(ParseError{fnNode.Pos, fmt.Sprintf("%s does not support unwrap", fn)})
		}
		fnNode.Rule = RuleUnwrapFn
		expr := &Node{Rule: RuleUnwrapExpression, Pos: sel.Pos}
		expr.add(sel, unwrap)
		expr.Text = string(p.src[sel.Pos:p.prevEnd])
		expr.Value = expr.Text
		n = &Node{Rule: RuleUnwrapFunction, Pos: start}
		n.add(fnNode, expr)
	} else {
		if !slices.Contains(logRangeAggregationFns, fn) {
			panic(ParseError{fnNode.Pos, fmt.Sprintf("%s requires an unwrap expression", fn)})
		}
		n = &Node{Rule: RuleLogRangeAggregation, Pos: start}
		n.add(fnNode, sel)
	}

	p.expect(lbracket)
	p.next()
	p.expect(duration)
	n.add(p.leaf(RuleDurationValue))
	p.expect(rbracket)
	p.next()
	p.expect(rparen)
	p.next()

	if unwrap != nil && p.isByWithout() {
		n.add(p.byWithout(RuleReqByWithoutUnwrap))
	}

	p.finish(n, start)
	return n
}

// byWithout parses a grouping clause.
//
// ("by" | "without") "(" [label ("," label)*] ")"
func (p *parser) byWithout(rule string) *Node {
	start := p.pos
	n := &Node{Rule: rule, Pos: start}
	n.add(p.leaf(RuleByWithout))
	p.expect(lparen)
	p.next()
	for p.matches(identifier) {
		n.add(p.leaf(RuleLabel))
		if !p.matches(comma) {
			break
		}
		p.next()
	}
	p.expect(rparen)
	p.next()
	p.finish(n, start)
	return n
}

// logStreamSelector parses a selector and its pipeline. A trailing unwrap
// statement is returned separately so the caller can decide whether it is
// allowed.
//
// "{" log_stream_selector_rule ("," log_stream_selector_rule)* "}" log_pipeline*
func (p *parser) logStreamSelector() (*Node, *Node) {
	start := p.pos
	n := &Node{Rule: RuleLogStreamSelector, Pos: start}
	p.expect(lbrace)
	p.next()
	if p.matches(rbrace) {
		panic(p.errorf("stream selector must contain at least one matcher"))
	}
	for {
		n.add(p.selectorRule())
		if !p.matches(comma) {
			break
		}
		p.next()
	}
	p.expect(rbrace)
	p.next()

	for {
		switch p.tok {
		case lineFilter, operator:
			n.add(p.lineFilter())
		case pipe:
			pipeStart := p.pos
			selEnd := p.prevEnd
			p.next()
			p.expect(identifier)
			if p.val == "unwrap" {
				n.Text = string(p.src[start:selEnd])
				n.Value = n.Text
				return n, p.unwrapStatement(pipeStart)
			}
			n.add(p.pipelineStage(pipeStart))
		default:
			p.finish(n, start)
			return n, nil
		}
	}
}

// selectorRule parses a label matcher.
//
// label operator quoted_str
func (p *parser) selectorRule() *Node {
	start := p.pos
	n := &Node{Rule: RuleLogStreamSelectorRule, Pos: start}
	p.expect(identifier)
	n.add(p.leaf(RuleLabel))
	p.expect(operator)
	n.add(p.leaf(RuleOperator))
	p.expect(stringLit)
	n.add(p.leaf(RuleQuotedStr))
	p.finish(n, start)
	return n
}

// lineFilter parses a line filter stage.
//
// line_filter_operator quoted_str
func (p *parser) lineFilter() *Node {
	start := p.pos
	n := &Node{Rule: RuleLineFilterExpression, Pos: start}
	n.add(p.leaf(RuleLineFilterOperator))
	p.expect(stringLit)
	n.add(p.leaf(RuleQuotedStr))
	p.finish(n, start)
	return p.pipeline(n, start)
}

// pipelineStage parses everything that follows a "|".
func (p *parser) pipelineStage(start int) *Node {
	switch {
	case p.val == "line_format":
		n := &Node{Rule: RuleLineFormatExpression, Pos: start}
		n.add(p.leaf(RuleLineFormatFn))
		p.expect(stringLit)
		n.add(p.leaf(RuleQuotedStr))
		p.finish(n, start)
		return p.pipeline(n, start)
	case p.val == "label_format":
		return p.pipeline(p.labelsFormat(start), start)
	case slices.Contains(parserFns, p.val) && p.peek().tok != operator:
		return p.pipeline(p.parserExpression(start), start)
	default:
		return p.pipeline(p.labelFilterPipeline(start), start)
	}
}

// parserExpression parses a field parser stage.
//
// parser_fn_name [parser_param ("," parser_param)*]
func (p *parser) parserExpression(start int) *Node {
	n := &Node{Rule: RuleParserExpression, Pos: start}
	n.add(p.leaf(RuleParserFnName))
	for p.matches(identifier, stringLit) {
		param := &Node{Rule: RuleParserParam, Pos: p.pos}
		if p.matches(stringLit) {
			param.add(p.leaf(RuleQuotedStr))
		} else {
			param.add(p.leaf(RuleLabel))
			if p.matches(operator) && p.val == "=" {
				p.next()
				p.expect(stringLit)
				param.add(p.leaf(RuleQuotedStr))
			}
		}
		p.finish(param, param.Pos)
		n.add(param)
		if !p.matches(comma) {
			break
		}
		p.next()
	}
	p.finish(n, start)
	return n
}

// labelsFormat parses a label_format stage. It is recognized only so the
// compiler can reject it by name.
//
// "label_format" label "=" (quoted_str | label) ("," ...)*
func (p *parser) labelsFormat(start int) *Node {
	n := &Node{Rule: RuleLabelsFormatExpression, Pos: start}
	p.next()
	for {
		p.expect(identifier)
		n.add(p.leaf(RuleLabel))
		p.expect(operator)
		p.next()
		switch p.tok {
		case stringLit:
			n.add(p.leaf(RuleQuotedStr))
		case identifier:
			n.add(p.leaf(RuleLabel))
		default:
			panic(p.errorf("expected string or label instead of %s", p.tok))
		}
		if !p.matches(comma) {
			break
		}
		p.next()
	}
	p.finish(n, start)
	return n
}

// labelFilterPipeline parses one or more label filters.
//
// label_filter_expression (("," | "and" | "or") label_filter_expression)*
func (p *parser) labelFilterPipeline(start int) *Node {
	n := &Node{Rule: RuleLabelFilterPipeline, Pos: start}
	for {
		n.add(p.labelFilterExpression())
		switch {
		case p.matches(comma):
			p.next()
		case p.matches(identifier) && strings.EqualFold(p.val, "and"):
			p.next()
		case p.matches(identifier) && strings.EqualFold(p.val, "or"):
			n.add(p.leaf(RuleLabelFilterOr))
		default:
			p.finish(n, start)
			return n
		}
	}
}

// labelFilterExpression parses a single string or number label filter.
//
// label operator (quoted_str | number_value | duration_value)
func (p *parser) labelFilterExpression() *Node {
	start := p.pos
	n := &Node{Rule: RuleLabelFilterExpression, Pos: start}
	p.expect(identifier)
	label := p.leaf(RuleLabel)
	p.expect(operator)
	op := p.leaf(RuleOperator)

	var filter *Node
	switch p.tok {
	case stringLit:
		filter = &Node{Rule: RuleStringLabelFilterExpression, Pos: start}
		filter.add(label, op, p.leaf(RuleQuotedStr))
	case number:
		op.Rule = RuleNumberOperator
		filter = &Node{Rule: RuleNumberLabelFilterExpression, Pos: start}
		filter.add(label, op, p.leaf(RuleNumberValue))
	case duration:
		op.Rule = RuleNumberOperator
		filter = &Node{Rule: RuleNumberLabelFilterExpression, Pos: start}
		filter.add(label, op, p.leaf(RuleDurationValue))
	default:
		panic(p.errorf("expected string, number or duration instead of %s", p.tok))
	}
	p.finish(filter, start)
	n.add(filter)
	p.finish(n, start)
	return n
}

// unwrapStatement parses the numeric extraction stage.
//
// "|" "unwrap" label
func (p *parser) unwrapStatement(start int) *Node {
	n := &Node{Rule: RuleUnwrapStatement, Pos: start}
	p.next()
	p.expect(identifier)
	n.add(p.leaf(RuleLabel))
	p.finish(n, start)
	return n
}

// userMacro parses a call to something that is not a builtin function.
//
// name "(" [macro_arg ("," macro_arg)*] ")"
func (p *parser) userMacro() *Node {
	start := p.pos
	macro := &Node{Rule: RuleUserMacro, Pos: start}
	call := &Node{Rule: p.val, Pos: start}
	p.next()
	p.expect(lparen)
	p.next()
	for p.matches(stringLit, number, duration, identifier) {
		call.add(p.leaf(RuleMacroArg))
		if !p.matches(comma) {
			break
		}
		p.next()
	}
	p.expect(rparen)
	p.next()
	p.finish(call, start)
	call.Value = call.Rule
	macro.add(call)
	p.finish(macro, start)
	return macro
}

func (p *parser) pipeline(stage *Node, start int) *Node {
	n := &Node{Rule: RuleLogPipeline, Pos: start}
	n.add(stage)
	p.finish(n, start)
	return n
}

// leaf consumes the current token into a leaf node.
func (p *parser) leaf(rule string) *Node {
	n := &Node{Rule: rule, Value: p.val, Pos: p.pos, Text: string(p.src[p.pos:p.end])}
	p.next()
	return n
}

// finish records the source text of a composite node.
func (p *parser) finish(n *Node, start int) {
	end := p.prevEnd
	if end < start {
		end = start
	}
	n.Text = string(p.src[start:end])
	n.Value = n.Text
}

func (p *parser) isByWithout() bool {
	return p.matches(identifier) && (p.val == "by" || p.val == "without")
}

// next parses the next token into p.tok.
func (p *parser) next() {
	p.prevEnd = p.end
	var t token
	if p.ahead != nil {
		t = *p.ahead
		p.ahead = nil
	} else {
		t = p.scan()
	}
	p.pos, p.tok, p.val, p.end = t.pos, t.tok, t.val, t.end
	if p.tok == illegal {
		panic(p.errorf("%s", p.val))
	}
}

// peek returns the token after the current one without consuming it.
func (p *parser) peek() token {
	if p.ahead == nil {
		t := p.scan()
		p.ahead = &t
	}
	return *p.ahead
}

func (p *parser) scan() token {
	pos, tok, val := p.lexer.Scan()
	end := p.lexer.pos
	if tok == eol || end > len(p.src) {
		end = len(p.src)
	}
	return token{pos: pos, tok: tok, val: val, end: end}
}

// matches returns true if current token matches one of the given tokens.
func (p *parser) matches(tokens ...Token) bool {
	return slices.Contains(tokens, p.tok)
}

// expect panics if current token is not the expected token.
func (p *parser) expect(tok Token) {
	if p.tok != tok {
		panic(p.errorf("expected %s instead of %s", tok, p.tok))
	}
}

// errorf formats an error with the current position.
func (p *parser) errorf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return ParseError{p.pos, message}
}

// IsBuiltinFunction reports whether name is an aggregation or range
// function. Any other identifier followed by "(" parses as a user macro.
func IsBuiltinFunction(name string) bool {
	return slices.Contains(aggregationOperatorFns, name) ||
		slices.Contains(logRangeAggregationFns, name) ||
		slices.Contains(unwrapFns, name)
}
