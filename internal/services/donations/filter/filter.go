// Package filter translates AIP-160 donation filters into SQL conditions.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Declarations returns the identifiers a donation filter may reference.
func Declarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("status", filtering.TypeString),
		filtering.DeclareIdent("food_category", filtering.TypeString),
		filtering.DeclareIdent("donor_id", filtering.TypeString),
		filtering.DeclareIdent("shelter_id", filtering.TypeString),
		filtering.DeclareIdent("volunteer_id", filtering.TypeString),
		filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
	)
}

type field struct {
	column    string
	timestamp bool
	// allowed restricts string values; nil accepts anything.
	allowed func(string) bool
}

var fields = map[string]field{
	"status": {column: "status", allowed: func(v string) bool {
		return domain.Status(v).Valid()
	}},
	"food_category": {column: "food_category", allowed: func(v string) bool {
		_, ok := domain.ParseFoodCategory(v)
		return ok
	}},
	"donor_id":     {column: "donor_id"},
	"shelter_id":   {column: "shelter_id"},
	"volunteer_id": {column: "volunteer_id"},
	"created_at":   {column: "created_at", timestamp: true},
}

// Parse translates filter into a SQL condition over the donations table.
// An empty filter yields an empty condition.
func Parse(filter string) (storage.Condition, error) {
	if strings.TrimSpace(filter) == "" {
		return storage.Condition{}, nil
	}
	decls, err := Declarations()
	if err != nil {
		return storage.Condition{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filter, decls)
	if err != nil {
		return storage.Condition{}, fmt.Errorf("parse filter: %w", err)
	}
	if parsed.CheckedExpr == nil || parsed.CheckedExpr.GetExpr() == nil {
		return storage.Condition{}, nil
	}
	return translateExpr(parsed.CheckedExpr.GetExpr())
}

func translateExpr(e *expr.Expr) (storage.Condition, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return storage.Condition{}, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	args := call.CallExpr.GetArgs()
	switch fn := call.CallExpr.GetFunction(); fn {
	case filtering.FunctionAnd:
		return translateJunction(args, "AND")
	case filtering.FunctionOr:
		return translateJunction(args, "OR")
	case filtering.FunctionNot:
		if len(args) != 1 {
			return storage.Condition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := translateExpr(args[0])
		if err != nil {
			return storage.Condition{}, err
		}
		return storage.Condition{Clause: "NOT " + inner.Clause, Params: inner.Params}, nil
	case filtering.FunctionEquals:
		return translateComparison(args, "=")
	case filtering.FunctionNotEquals:
		return translateComparison(args, "!=")
	case filtering.FunctionLessThan:
		return translateComparison(args, "<")
	case filtering.FunctionLessEquals:
		return translateComparison(args, "<=")
	case filtering.FunctionGreaterThan:
		return translateComparison(args, ">")
	case filtering.FunctionGreaterEquals:
		return translateComparison(args, ">=")
	default:
		return storage.Condition{}, fmt.Errorf("unsupported function: %s", fn)
	}
}

func translateJunction(args []*expr.Expr, op string) (storage.Condition, error) {
	if len(args) < 2 {
		return storage.Condition{}, fmt.Errorf("%s requires at least 2 arguments", op)
	}
	clauses := make([]string, 0, len(args))
	var params []any
	for _, arg := range args {
		cond, err := translateExpr(arg)
		if err != nil {
			return storage.Condition{}, err
		}
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}
	return storage.Condition{
		Clause: "(" + strings.Join(clauses, " "+op+" ") + ")",
		Params: params,
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (storage.Condition, error) {
	if len(args) != 2 {
		return storage.Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return storage.Condition{}, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	name := ident.IdentExpr.GetName()
	f, ok := fields[name]
	if !ok {
		return storage.Condition{}, fmt.Errorf("unknown field: %s", name)
	}

	if f.timestamp {
		millis, err := extractTimestamp(args[1])
		if err != nil {
			return storage.Condition{}, fmt.Errorf("%s: %w", name, err)
		}
		return storage.Condition{Clause: fmt.Sprintf("%s %s ?", f.column, op), Params: []any{millis}}, nil
	}

	value, err := extractString(args[1])
	if err != nil {
		return storage.Condition{}, fmt.Errorf("%s: %w", name, err)
	}
	if f.allowed != nil && !f.allowed(value) {
		return storage.Condition{}, fmt.Errorf("%s: unknown value %q", name, value)
	}
	return storage.Condition{Clause: fmt.Sprintf("%s %s ?", f.column, op), Params: []any{value}}, nil
}

func extractString(e *expr.Expr) (string, error) {
	c, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return "", fmt.Errorf("expected constant, got %T", e.GetExprKind())
	}
	s, ok := c.ConstExpr.GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return "", fmt.Errorf("expected string constant, got %T", c.ConstExpr.GetConstantKind())
	}
	return s.StringValue, nil
}

// extractTimestamp accepts timestamp("...") or a bare RFC 3339 string and
// returns UTC milliseconds.
func extractTimestamp(e *expr.Expr) (int64, error) {
	if call, ok := e.GetExprKind().(*expr.Expr_CallExpr); ok {
		if call.CallExpr.GetFunction() != filtering.FunctionTimestamp || len(call.CallExpr.GetArgs()) != 1 {
			return 0, fmt.Errorf("unsupported function in value position: %s", call.CallExpr.GetFunction())
		}
		e = call.CallExpr.GetArgs()[0]
	}
	raw, err := extractString(e)
	if err != nil {
		return 0, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", raw)
	}
	return t.UTC().UnixMilli(), nil
}
