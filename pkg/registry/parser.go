package registry

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logfmt/logfmt"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const (
	errJSON   = "JSONParserErr"
	errLogfmt = "LogfmtParserErr"
)

func parsers() map[string]Transform {
	return map[string]Transform{
		"json":   jsonParser,
		"logfmt": logfmtParser,
		"regexp": regexpParser,
	}
}

// param is one extraction requested from a parser: the label to set and the
// key or path to read it from.
type param struct {
	label string
	path  string
}

func parserParams(node *logql.Node) []param {
	var params []param
	for _, p := range node.Children(logql.RuleParserParam) {
		label := p.Child(logql.RuleLabel)
		path := p.Child(logql.RuleQuotedStr)
		switch {
		case label != nil && path != nil:
			params = append(params, param{label: label.Value, path: path.Value})
		case label != nil:
			params = append(params, param{label: label.Value, path: label.Value})
		case path != nil:
			params = append(params, param{label: sanitizeLabel(path.Value), path: path.Value})
		}
	}
	return params
}

// extract records expr as the source of parser-derived labels, merging it with
// the labels of any earlier parser.
func extract(req query.Request, expr string) query.Request {
	if req.Extracted == "" {
		req = req.AddSelect(expr + " as " + extraLabelsColumn)
	} else {
		merged := fmt.Sprintf("mapUpdate(%s, %s)", req.Extracted, expr)
		req = req.ReplaceSelect(req.Extracted+" as "+extraLabelsColumn, merged+" as "+extraLabelsColumn)
		expr = merged
	}
	req.Extracted = expr
	return req
}

func jsonParser(node *logql.Node, req query.Request) (query.Request, error) {
	params := parserParams(node)

	paths := make([]jp.Expr, 0, len(params))
	args := make([]string, 0, len(params))
	for _, p := range params {
		x, a, err := jsonPath(p.path)
		if err != nil {
			return req, err
		}
		paths = append(paths, x)
		args = append(args, a)
	}

	if streaming(req) {
		return req.AddStream(query.Transform{
			Stage: "json",
			Apply: func(row query.Row) (query.Row, bool) {
				data, err := oj.ParseString(row.Line)
				if err != nil {
					row.Labels[ErrorLabel] = errJSON
					return row, true
				}
				if len(params) == 0 {
					flatten(row.Labels, "", data)
					return row, true
				}
				for i, p := range params {
					if res := paths[i].Get(data); len(res) > 0 {
						row.Labels[p.label] = valueString(res[0])
					}
				}
				return row, true
			},
		}), nil
	}

	if len(params) == 0 {
		return extract(req, "mapApply((k, v) -> (k, if(startsWith(v, '\"'), JSONExtractString(v), v)), "+
			"CAST(JSONExtractKeysAndValuesRaw(string), 'Map(String, String)'))"), nil
	}

	pairs := make([]string, 0, len(params)*2)
	for i, p := range params {
		a := "string, " + args[i]
		pairs = append(pairs, Quote(p.label),
			fmt.Sprintf("if(JSONType(%s) = 'String', JSONExtractString(%s), JSONExtractRaw(%s))", a, a, a))
	}
	return extract(req, "map("+strings.Join(pairs, ", ")+")"), nil
}

// jsonPath parses a dotted or bracketed path into a jp expression and the
// matching JSONExtract key arguments. Array indexes are 1-based in ClickHouse.
func jsonPath(path string) (jp.Expr, string, error) {
	expr := path
	switch {
	case strings.HasPrefix(expr, "$"):
	case strings.HasPrefix(expr, "["):
		expr = "$" + expr
	default:
		expr = "$." + expr
	}

	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, "", errors.NewInvalidExpressionError("json path", path, err)
	}

	var args []string
	for _, frag := range x {
		switch f := frag.(type) {
		case jp.Root, jp.Bracket:
		case jp.Child:
			args = append(args, Quote(string(f)))
		case jp.Nth:
			n := int(f)
			if n >= 0 {
				n++
			}
			args = append(args, strconv.Itoa(n))
		default:
			return nil, "", errors.NewInvalidExpressionError("json path", path, fmt.Errorf("only keys and indexes are supported"))
		}
	}
	if len(args) == 0 {
		return nil, "", errors.NewInvalidExpressionError("json path", path, fmt.Errorf("empty path"))
	}
	return x, strings.Join(args, ", "), nil
}

func flatten(labels map[string]string, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			key := sanitizeLabel(k)
			if prefix != "" {
				key = prefix + "_" + key
			}
			flatten(labels, key, child)
		}
	case []any:
		// arrays are not turned into labels
	default:
		if prefix != "" {
			labels[prefix] = valueString(t)
		}
	}
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return oj.JSON(t)
	}
}

func logfmtParser(node *logql.Node, req query.Request) (query.Request, error) {
	params := parserParams(node)

	if streaming(req) {
		return req.AddStream(query.Transform{
			Stage: "logfmt",
			Apply: func(row query.Row) (query.Row, bool) {
				kv := map[string]string{}
				d := logfmt.NewDecoder(strings.NewReader(row.Line))
				for d.ScanRecord() {
					for d.ScanKeyval() {
						kv[string(d.Key())] = string(d.Value())
					}
				}
				if d.Err() != nil {
					row.Labels[ErrorLabel] = errLogfmt
					return row, true
				}
				if len(params) == 0 {
					for k, v := range kv {
						row.Labels[sanitizeLabel(k)] = v
					}
					return row, true
				}
				for _, p := range params {
					if v, ok := kv[p.path]; ok {
						row.Labels[p.label] = v
					}
				}
				return row, true
			},
		}), nil
	}

	pairs := `extractKeyValuePairs(string, '=', ' ', '"')`
	if len(params) == 0 {
		return extract(req, pairs), nil
	}
	entries := make([]string, 0, len(params)*2)
	for _, p := range params {
		entries = append(entries, Quote(p.label), fmt.Sprintf("%s[%s]", pairs, Quote(p.path)))
	}
	return extract(req, "map("+strings.Join(entries, ", ")+")"), nil
}

func regexpParser(node *logql.Node, req query.Request) (query.Request, error) {
	params := node.Children(logql.RuleParserParam)
	if len(params) != 1 || params[0].Child(logql.RuleQuotedStr) == nil || params[0].Child(logql.RuleLabel) != nil {
		return req, errors.NewInvalidExpressionError("regexp parser", node.Text, fmt.Errorf("expected a single regular expression"))
	}
	pattern := params[0].Child(logql.RuleQuotedStr).Value
	re, err := compileRegexp(pattern)
	if err != nil {
		return req, err
	}

	groups := namedGroups(re)
	if len(groups) == 0 {
		return req, errors.NewInvalidExpressionError("regexp parser", pattern, fmt.Errorf("at least one named capture group is required"))
	}

	if streaming(req) {
		return req.AddStream(query.Transform{
			Stage: "regexp",
			Apply: func(row query.Row) (query.Row, bool) {
				match := re.FindStringSubmatch(row.Line)
				if match == nil {
					return row, true
				}
				for i, name := range groups {
					row.Labels[name] = match[i]
				}
				return row, true
			},
		}), nil
	}

	entries := make([]string, 0, len(groups)*2)
	for _, i := range slices.Sorted(maps.Keys(groups)) {
		entries = append(entries, Quote(groups[i]), fmt.Sprintf("extractGroups(string, %s)[%d]", Quote(pattern), i))
	}
	return extract(req, "map("+strings.Join(entries, ", ")+")"), nil
}

// namedGroups maps submatch indexes to capture group names.
func namedGroups(re *regexp.Regexp) map[int]string {
	groups := map[int]string{}
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" {
			groups[i] = name
		}
	}
	return groups
}
