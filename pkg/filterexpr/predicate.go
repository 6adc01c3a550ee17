package filterexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// ValueKind describes the type a filter variable carries.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
)

// Schema whitelists the variables an expression may reference.
type Schema map[string]ValueKind

// Predicate is a compiled boolean CEL expression.
type Predicate struct {
	source  string
	program cel.Program
}

// Compile type-checks filter against schema. The expression must evaluate to a bool;
// references to variables outside the schema are rejected at compile time.
func Compile(filter string, schema Schema) (*Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, errors.New("filter expression is empty")
	}
	if len(schema) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(schema)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}
	return &Predicate{source: filter, program: program}, nil
}

// String returns the expression the predicate was compiled from.
func (p *Predicate) String() string { return p.source }

// Match evaluates the predicate against one set of variable bindings.
func (p *Predicate) Match(vars map[string]any) (bool, error) {
	out, _, err := p.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter produced %T, want bool", out.Value())
	}
	return matched, nil
}

func buildEnv(schema Schema) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(schema)+1)
	for name, kind := range schema {
		celType, err := celTypeForKind(kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindInt:
		return cel.IntType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}
