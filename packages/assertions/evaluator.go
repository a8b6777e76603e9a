package assertions

import (
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/data"
	"github.com/tidwall/gjson"
)

// Expectation is one declared check
type Expectation struct {
	Subject string `yaml:"subject" json:"subject"`
	Op      string `yaml:"op" json:"op"`
	Value   any    `yaml:"value,omitempty" json:"value,omitempty"`
}

func (e Expectation) String() string {
	if e.Value == nil {
		return fmt.Sprintf("%s %s", e.Subject, e.Op)
	}
	return fmt.Sprintf("%s %s %v", e.Subject, e.Op, e.Value)
}

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

// Source resolves a subject name to the actual value under test. A subject
// that resolves to nothing returns (nil, nil).
type Source interface {
	Value(subject string) (any, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(subject string) (any, error)

func (f SourceFunc) Value(subject string) (any, error) {
	return f(subject)
}

type Evaluator struct {
	source  Source
	baseDir string
}

// EvaluatorOption is a functional option for configuring an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithBaseDir resolves relative schema paths against dir
func WithBaseDir(dir string) EvaluatorOption {
	return func(e *Evaluator) {
		e.baseDir = dir
	}
}

func NewEvaluator(source Source, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{source: source}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Evaluate(exp Expectation) *Result {
	result := &Result{
		Subject:  exp.Subject,
		Operator: exp.Op,
		Expected: exp.Value,
	}

	actual, err := e.source.Value(exp.Subject)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Actual = actual

	passed, msg := e.compare(actual, exp.Op, exp.Value)
	result.Passed = passed
	result.Message = msg

	// For length, report the computed length as the actual value
	if exp.Op == "length" {
		result.Actual = computeLength(actual)
	}

	return result
}

// EvaluateAll evaluates every expectation against source
func EvaluateAll(source Source, expectations []Expectation, opts ...EvaluatorOption) []*Result {
	evaluator := NewEvaluator(source, opts...)
	results := make([]*Result, len(expectations))
	for i, exp := range expectations {
		results[i] = evaluator.Evaluate(exp)
	}
	return results
}

// Failures joins the messages of every failed result, or returns "" when
// all passed
func Failures(results []*Result) string {
	var msgs []string
	for _, r := range results {
		if !r.Passed {
			msgs = append(msgs, fmt.Sprintf("%s %s: %s", r.Subject, r.Operator, r.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

// JSONValue looks up a gjson path (bracket indexes allowed) in a JSON
// document. An empty path returns the whole document.
func JSONValue(doc gjson.Result, path string) any {
	if path == "" {
		return doc.Value()
	}
	result := doc.Get(data.NormalizePath(path))
	if !result.Exists() {
		return nil
	}
	return result.Value()
}

func (e *Evaluator) compare(actual any, op string, expected any) (bool, string) {
	switch op {
	case "notContains":
		return negate(passedOnly(e.contains(actual, expected)), fmt.Sprintf("expected not to contain %v", expected))
	case "notExists":
		return negate(passedOnly(e.exists(actual)), "expected not to exist")
	case "length":
		return e.length(actual, expected)
	case "includes":
		return e.includes(actual, expected)
	case "notIncludes":
		return negate(passedOnly(e.includes(actual, expected)), fmt.Sprintf("expected not to include %v", expected))
	case "in":
		return e.in(actual, expected)
	case "notIn":
		return negate(passedOnly(e.in(actual, expected)), fmt.Sprintf("expected not to be in %v", expected))
	case "schema":
		return e.schema(actual, expected)
	case "each":
		return e.each(actual, expected)
	default:
		return e.applyOperator(actual, op, expected)
	}
}

func passedOnly(passed bool, _ string) bool {
	return passed
}

func negate(passed bool, msg string) (bool, string) {
	if passed {
		return false, msg
	}
	return true, ""
}

func (e *Evaluator) equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	if fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

func (e *Evaluator) compareNumeric(actual, expected any, op string) (bool, string) {
	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)

	if !aOk || !eOk {
		return false, fmt.Sprintf("cannot compare non-numeric values: %v %s %v", actual, op, expected)
	}

	var passed bool
	switch op {
	case ">":
		passed = actualNum > expectedNum
	case ">=":
		passed = actualNum >= expectedNum
	case "<":
		passed = actualNum < expectedNum
	case "<=":
		passed = actualNum <= expectedNum
	}

	if passed {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v %s %v", actual, op, expected)
}

func (e *Evaluator) contains(actual, expected any) (bool, string) {
	if strings.Contains(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to contain '%v'", actual, expected)
}

func (e *Evaluator) startsWith(actual, expected any) (bool, string) {
	if strings.HasPrefix(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to start with '%v'", actual, expected)
}

func (e *Evaluator) endsWith(actual, expected any) (bool, string) {
	if strings.HasSuffix(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to end with '%v'", actual, expected)
}

func (e *Evaluator) matches(actual, expected any) (bool, string) {
	pattern := fmt.Sprintf("%v", expected)
	pattern = strings.TrimPrefix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern: %v", err)
	}

	if re.MatchString(fmt.Sprintf("%v", actual)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to match /%v/", actual, pattern)
}

func (e *Evaluator) exists(actual any) (bool, string) {
	if actual == nil {
		return false, "expected to exist"
	}
	return true, ""
}

// computeLength returns the length of a value, or -1 if it has none
func computeLength(actual any) int {
	switch v := actual.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	case nil:
		return -1
	}
	rv := reflect.ValueOf(actual)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len()
	}
	return -1
}

func (e *Evaluator) length(actual, expected any) (bool, string) {
	expectedLen, ok := toInt(expected)
	if !ok {
		return false, fmt.Sprintf("expected length must be a number, got %v", expected)
	}

	actualLen := computeLength(actual)
	if actualLen == -1 {
		return false, fmt.Sprintf("cannot get length of %T", actual)
	}

	if actualLen == expectedLen {
		return true, ""
	}
	return false, fmt.Sprintf("expected length %d, got %d", expectedLen, actualLen)
}

func (e *Evaluator) includes(actual, expected any) (bool, string) {
	arr, ok := toSlice(actual)
	if !ok {
		return false, fmt.Sprintf("expected array, got %T", actual)
	}

	for _, item := range arr {
		if passed, _ := e.equals(item, expected); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected array to include %v", expected)
}

func (e *Evaluator) in(actual, expected any) (bool, string) {
	arr, ok := toSlice(expected)
	if !ok {
		return false, fmt.Sprintf("expected array for 'in' operator, got %T", expected)
	}

	for _, item := range arr {
		if passed, _ := e.equals(actual, item); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected %v to be in %v", actual, expected)
}

func (e *Evaluator) typeCheck(actual, expected any) (bool, string) {
	expectedType := fmt.Sprintf("%v", expected)
	var actualType string

	switch actual.(type) {
	case nil:
		actualType = "null"
	case bool:
		actualType = "boolean"
	case float64, float32, int, int64, int32:
		actualType = "number"
	case string:
		actualType = "string"
	case []any, []map[string]any:
		actualType = "array"
	case map[string]any:
		actualType = "object"
	default:
		actualType = reflect.TypeOf(actual).String()
	}

	if actualType == expectedType {
		return true, ""
	}
	return false, fmt.Sprintf("expected type %s, got %s", expectedType, actualType)
}

func (e *Evaluator) schema(actual, expected any) (bool, string) {
	schemaPath := fmt.Sprintf("%v", expected)
	if !filepath.IsAbs(schemaPath) && e.baseDir != "" {
		schemaPath = filepath.Join(e.baseDir, schemaPath)
	}

	if err := data.ValidateSchema(schemaPath, actual); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (e *Evaluator) each(actual, expected any) (bool, string) {
	arr, ok := toSlice(actual)
	if !ok {
		return false, fmt.Sprintf("expected array for 'each' operator, got %T", actual)
	}

	// {op: ..., value: ...} applies an operator to every element
	if m, isMap := expected.(map[string]any); isMap {
		op, hasOp := m["op"]
		if hasOp {
			opStr := fmt.Sprintf("%v", op)
			for i, item := range arr {
				if passed, msg := e.applyOperator(item, opStr, m["value"]); !passed {
					return false, fmt.Sprintf("item[%d]: %s", i, msg)
				}
			}
			return true, ""
		}
	}

	for i, item := range arr {
		if passed, msg := e.equals(item, expected); !passed {
			return false, fmt.Sprintf("item[%d]: %s", i, msg)
		}
	}
	return true, ""
}

func (e *Evaluator) applyOperator(actual any, op string, expected any) (bool, string) {
	switch op {
	case "==", "equals":
		return e.equals(actual, expected)
	case "!=", "notEquals":
		return negate(passedOnly(e.equals(actual, expected)), fmt.Sprintf("expected not to equal %v", expected))
	case ">", ">=", "<", "<=":
		return e.compareNumeric(actual, expected, op)
	case "contains":
		return e.contains(actual, expected)
	case "startsWith":
		return e.startsWith(actual, expected)
	case "endsWith":
		return e.endsWith(actual, expected)
	case "matches":
		return e.matches(actual, expected)
	case "exists":
		return e.exists(actual)
	case "type":
		return e.typeCheck(actual, expected)
	default:
		return false, fmt.Sprintf("unknown operator: %s", op)
	}
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i, str := range s {
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}
