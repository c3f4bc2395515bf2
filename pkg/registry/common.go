package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const (
	// ErrorLabel is set on rows a client-side stage failed to process.
	ErrorLabel = "__error__"

	extraLabelsColumn = "extra_labels"
	unwrappedColumn   = "unwrapped"
)

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Quote returns s as a ClickHouse string literal.
func Quote(s string) string {
	return "'" + quoter.Replace(s) + "'"
}

func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, Quote(v))
	}
	return strings.Join(quoted, ", ")
}

// DurationMs parses a LogQL duration such as 5m or 1h30m into milliseconds.
func DurationMs(s string) (int64, error) {
	d, err := model.ParseDuration(s)
	if err != nil {
		return 0, errors.NewInvalidExpressionError("duration", s, err)
	}
	if d <= 0 {
		return 0, errors.NewInvalidExpressionError("duration", s, fmt.Errorf("duration must be positive"))
	}
	return time.Duration(d).Milliseconds(), nil
}

// labelExpr returns the SQL expression reading label from the stream labels
// or, once a parser ran, from the extracted labels first.
func labelExpr(req query.Request, label string) string {
	key := Quote(label)
	if req.Extracted == "" {
		return fmt.Sprintf("JSONExtractString(labels, %s)", key)
	}
	return fmt.Sprintf("if(mapContains(%s, %s), %s[%s], JSONExtractString(labels, %s))",
		extraLabelsColumn, key, extraLabelsColumn, key, key)
}

// labelsMap returns the labels of source as a Map(String, String) expression,
// merged with the extracted labels when extracted is set.
func labelsMap(source string, extracted bool) string {
	m := fmt.Sprintf("CAST(JSONExtractKeysAndValues(%s.labels, 'String'), 'Map(String, String)')", source)
	if extracted {
		m = fmt.Sprintf("mapUpdate(%s, %s.%s)", m, source, extraLabelsColumn)
	}
	return m
}

// grouping returns the label projection for an optional by/without clause.
// empty is used when there is no clause and no extracted labels.
func grouping(clause *logql.Node, source string, extracted bool, empty string) string {
	if clause == nil {
		if extracted {
			return fmt.Sprintf("toJSONString(%s)", labelsMap(source, true))
		}
		return empty
	}
	var names []string
	for _, l := range clause.Children(logql.RuleLabel) {
		names = append(names, l.Value)
	}
	op := "IN"
	if by := clause.Child(logql.RuleByWithout); by != nil && by.Value == "without" {
		op = "NOT IN"
	}
	if len(names) == 0 {
		if op == "IN" {
			return "'{}'"
		}
		return fmt.Sprintf("toJSONString(%s)", labelsMap(source, extracted))
	}
	return fmt.Sprintf("toJSONString(mapFilter((k, v) -> k %s (%s), %s))", op, quoteList(names), labelsMap(source, extracted))
}

func compileRegexp(re string) (*regexp.Regexp, error) {
	r, err := regexp.Compile(re)
	if err != nil {
		return nil, errors.NewInvalidExpressionError("regular expression", re, err)
	}
	return r, nil
}

// anchored wraps re so it has to match the whole value, as label matchers do.
func anchored(re string) string {
	return "^(?:" + re + ")$"
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewInvalidExpressionError("number", s, err)
	}
	return f, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func seconds(ms int64) string {
	return formatNumber(float64(ms) / 1000)
}

// streaming reports whether req already has client-side transforms. Stages
// after such a transform must run client-side too, since they have to see
// its output.
func streaming(req query.Request) bool {
	return len(req.Stream) > 0
}

var invalidLabelChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeLabel turns an arbitrary key into a valid label name.
func sanitizeLabel(key string) string {
	key = invalidLabelChars.ReplaceAllString(key, "_")
	if key != "" && key[0] >= '0' && key[0] <= '9' {
		key = "_" + key
	}
	return key
}

// outerSelect builds a request reading from the named sub-query body, with
// the common table expressions of req hoisted in front of it.
func outerSelect(alias string, req query.Request, columns ...string) query.Request {
	outer := query.Request{
		Select: slices.Clone(columns),
		From:   alias,
		With:   slices.Clone(req.With),
		Matrix: req.Matrix,
		Ctx:    req.Ctx,
		Stream: req.Stream,
	}
	return outer.AddWith(alias, req.Inner(true))
}
