package driver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/tailscale/hujson"

	"oak/toolchain-go/pkg/ast"
)

// LoadProgram reads an AST document from disk.
func LoadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ast %s: %w", path, err)
	}
	program, err := DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decode ast %s: %w", path, err)
	}
	return program, nil
}

// DecodeProgram decodes the parser's JSON output. Comments and trailing
// commas are accepted. The document is either a Program node or a bare
// array of statements.
func DecodeProgram(data []byte) (*ast.Program, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	switch doc := raw.(type) {
	case []any:
		body, err := decodeStatements(doc)
		if err != nil {
			return nil, err
		}
		return ast.NewProgram(body), nil
	case map[string]any:
		node, err := decodeNode(doc)
		if err != nil {
			return nil, err
		}
		if program, ok := node.(*ast.Program); ok {
			return program, nil
		}
		stmt, ok := node.(ast.Statement)
		if !ok {
			return nil, fmt.Errorf("top-level %s is not a statement", node.NodeType())
		}
		return ast.NewProgram([]ast.Statement{stmt}), nil
	default:
		return nil, fmt.Errorf("unexpected document of type %T", raw)
	}
}

func decodeNode(node map[string]any) (ast.Node, error) {
	out, err := decodeNodeBody(node)
	if err != nil {
		return nil, err
	}
	if loc, ok := node["location"].(map[string]any); ok {
		ast.SetSpan(out, decodeSpan(loc))
	}
	return out, nil
}

func decodeNodeBody(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeProgram:
		body, err := decodeStatementField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewProgram(body), nil
	case ast.NodeLiteral:
		dataType, _ := node["dataType"].(string)
		value, err := decodeLiteralValue(dataType, node["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewLiteral(dataType, value), nil
	case ast.NodeGroup:
		expr, err := decodeExpressionField(node, "exp")
		if err != nil {
			return nil, err
		}
		return ast.NewGroup(expr), nil
	case ast.NodeVarValue:
		id, _ := node["id"].(string)
		return ast.NewVarValue(id), nil
	case ast.NodeUnary:
		op, _ := node["op"].(string)
		expr, err := decodeExpressionField(node, "exp")
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(op, expr), nil
	case ast.NodeArithmetic, ast.NodeRelational, ast.NodeLogical:
		op, _ := node["op"].(string)
		left, err := decodeExpressionField(node, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpressionField(node, "right")
		if err != nil {
			return nil, err
		}
		switch ast.NodeType(typ) {
		case ast.NodeArithmetic:
			return ast.NewArithmetic(op, left, right), nil
		case ast.NodeRelational:
			return ast.NewRelational(op, left, right), nil
		default:
			return ast.NewLogical(op, left, right), nil
		}
	case ast.NodeTernary:
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, err
		}
		then, err := decodeExpressionField(node, "trueExp")
		if err != nil {
			return nil, err
		}
		els, err := decodeExpressionField(node, "falseExp")
		if err != nil {
			return nil, err
		}
		return ast.NewTernary(cond, then, els), nil
	case ast.NodeVarAssign:
		return decodeVarAssign(node)
	case ast.NodeCallee:
		return decodeCallee(node)
	case ast.NodeInstance:
		id, _ := node["id"].(string)
		rawArgs, _ := node["args"].([]any)
		args := make([]*ast.VarAssign, 0, len(rawArgs))
		for _, raw := range rawArgs {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid struct initialiser %T", raw)
			}
			assign, err := decodeVarAssign(child)
			if err != nil {
				return nil, err
			}
			args = append(args, assign)
		}
		return ast.NewInstance(id, args), nil
	case ast.NodeGet:
		object, err := decodeExpressionField(node, "object")
		if err != nil {
			return nil, err
		}
		if raw, ok := node["call"].(map[string]any); ok {
			call, err := decodeCallee(raw)
			if err != nil {
				return nil, err
			}
			return ast.NewGetCall(object, call), nil
		}
		if _, ok := node["index"]; ok {
			index, err := decodeExpressionField(node, "index")
			if err != nil {
				return nil, err
			}
			return ast.NewGetIndex(object, index), nil
		}
		property, _ := node["property"].(string)
		return ast.NewGet(object, property), nil
	case ast.NodeSet:
		object, err := decodeExpressionField(node, "object")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpressionField(node, "value")
		if err != nil {
			return nil, err
		}
		sig := stringOr(node, "sig", "=")
		if _, ok := node["index"]; ok {
			index, err := decodeExpressionField(node, "index")
			if err != nil {
				return nil, err
			}
			return ast.NewSetIndex(object, index, sig, value), nil
		}
		property, _ := node["property"].(string)
		return ast.NewSet(object, property, sig, value), nil
	case ast.NodeArrayInstance:
		elemType, _ := node["dataType"].(string)
		if _, ok := node["dim"]; ok {
			dims, err := decodeExpressionList(node, "dim")
			if err != nil {
				return nil, err
			}
			return ast.NewArrayAllocation(elemType, dims), nil
		}
		elements, err := decodeExpressionList(node, "args")
		if err != nil {
			return nil, err
		}
		return ast.NewArrayInstance(elemType, elements), nil
	case ast.NodeVarDeclaration:
		return decodeVarDeclaration(node)
	case ast.NodeFuncDeclaration:
		dataType, _ := node["dataType"].(string)
		id, _ := node["id"].(string)
		params, err := decodeDeclarationList(node, "params")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlockField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewFuncDeclaration(dataType, id, params, body), nil
	case ast.NodeStructDeclaration:
		id, _ := node["id"].(string)
		fields, err := decodeDeclarationList(node, "fields")
		if err != nil {
			return nil, err
		}
		return ast.NewStructDeclaration(id, fields), nil
	case ast.NodeBlock:
		body, err := decodeStatementField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewBlock(body), nil
	case ast.NodeExpressionStatement:
		expr, err := decodeExpressionField(node, "exp")
		if err != nil {
			return nil, err
		}
		return ast.NewExpressionStatement(expr), nil
	case ast.NodePrint:
		exprs, err := decodeExpressionList(node, "exps")
		if err != nil {
			return nil, err
		}
		return ast.NewPrint(exprs), nil
	case ast.NodeIf:
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, err
		}
		then, err := decodeStatementValue(node["stmtTrue"])
		if err != nil {
			return nil, err
		}
		var els ast.Statement
		if raw, ok := node["stmtFalse"]; ok && raw != nil {
			if els, err = decodeStatementValue(raw); err != nil {
				return nil, err
			}
		}
		return ast.NewIf(cond, then, els), nil
	case ast.NodeWhile:
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementValue(node["stmt"])
		if err != nil {
			return nil, err
		}
		return ast.NewWhile(cond, body), nil
	case ast.NodeFor:
		init, err := decodeStatementValue(node["init"])
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, err
		}
		update, err := decodeExpressionField(node, "inc")
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementValue(node["stmt"])
		if err != nil {
			return nil, err
		}
		return ast.NewFor(init, cond, update, body), nil
	case ast.NodeForEach:
		raw, ok := node["vd"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("foreach requires a variable declaration")
		}
		variable, err := decodeVarDeclaration(raw)
		if err != nil {
			return nil, err
		}
		iterable, err := decodeExpressionField(node, "arr")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlockField(node, "stmt")
		if err != nil {
			return nil, err
		}
		return ast.NewForEach(variable, iterable, body), nil
	case ast.NodeSwitch:
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, err
		}
		rawCases, _ := node["cases"].([]any)
		cases := make([]*ast.Case, 0, len(rawCases))
		for _, raw := range rawCases {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid case %T", raw)
			}
			cs, err := decodeCase(child)
			if err != nil {
				return nil, err
			}
			cases = append(cases, cs)
		}
		var def *ast.Case
		if raw, ok := node["def"].(map[string]any); ok {
			if def, err = decodeCase(raw); err != nil {
				return nil, err
			}
		}
		return ast.NewSwitch(cond, cases, def), nil
	case ast.NodeCase:
		return decodeCase(node)
	case ast.NodeBreak:
		return ast.NewBreak(), nil
	case ast.NodeContinue:
		return ast.NewContinue(), nil
	case ast.NodeReturn:
		if raw, ok := node["exp"]; ok && raw != nil {
			expr, err := decodeExpressionField(node, "exp")
			if err != nil {
				return nil, err
			}
			return ast.NewReturn(expr), nil
		}
		return ast.NewReturn(nil), nil
	default:
		return nil, fmt.Errorf("unsupported node type %q", typ)
	}
}

func decodeSpan(loc map[string]any) ast.Span {
	return ast.Span{Start: decodePosition(loc["start"]), End: decodePosition(loc["end"])}
}

func decodePosition(raw any) ast.Position {
	m, _ := raw.(map[string]any)
	return ast.Position{Offset: intField(m, "offset"), Line: intField(m, "line"), Column: intField(m, "column")}
}

func intField(m map[string]any, key string) int {
	if n, ok := m[key].(json.Number); ok {
		v, _ := n.Int64()
		return int(v)
	}
	return 0
}

func stringOr(node map[string]any, key, fallback string) string {
	if s, ok := node[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func decodeLiteralValue(dataType string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case json.Number:
		if dataType == "float" {
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid float literal %s: %w", v, err)
			}
			return f, nil
		}
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid int literal %s: %w", v, err)
		}
		if dataType == "char" {
			return rune(n), nil
		}
		return n, nil
	case string:
		if dataType == "char" {
			if v == "" {
				return rune(0), nil
			}
			r, _ := utf8.DecodeRuneInString(v)
			return r, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported literal value %T", raw)
	}
}

func decodeExpressionValue(raw any) (ast.Expression, error) {
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected expression node, got %T", raw)
	}
	node, err := decodeNode(child)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("%s is not an expression", node.NodeType())
	}
	return expr, nil
}

func decodeExpressionField(node map[string]any, key string) (ast.Expression, error) {
	expr, err := decodeExpressionValue(node[key])
	if err != nil {
		return nil, fmt.Errorf("%v.%s: %w", node["type"], key, err)
	}
	return expr, nil
}

func decodeExpressionList(node map[string]any, key string) ([]ast.Expression, error) {
	raws, _ := node[key].([]any)
	out := make([]ast.Expression, 0, len(raws))
	for _, raw := range raws {
		expr, err := decodeExpressionValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%v.%s: %w", node["type"], key, err)
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeStatementValue(raw any) (ast.Statement, error) {
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected statement node, got %T", raw)
	}
	node, err := decodeNode(child)
	if err != nil {
		return nil, err
	}
	stmt, ok := node.(ast.Statement)
	if !ok {
		return nil, fmt.Errorf("%s is not a statement", node.NodeType())
	}
	return stmt, nil
}

func decodeStatements(raws []any) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(raws))
	for _, raw := range raws {
		stmt, err := decodeStatementValue(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func decodeStatementField(node map[string]any, key string) ([]ast.Statement, error) {
	raws, _ := node[key].([]any)
	return decodeStatements(raws)
}

func decodeBlockField(node map[string]any, key string) (*ast.Block, error) {
	stmt, err := decodeStatementValue(node[key])
	if err != nil {
		return nil, fmt.Errorf("%v.%s: %w", node["type"], key, err)
	}
	block, ok := stmt.(*ast.Block)
	if !ok {
		return nil, fmt.Errorf("%v.%s must be a Block, got %s", node["type"], key, stmt.NodeType())
	}
	return block, nil
}

func decodeVarDeclaration(node map[string]any) (*ast.VarDeclaration, error) {
	dataType, _ := node["dataType"].(string)
	id, _ := node["id"].(string)
	var value ast.Expression
	if raw, ok := node["value"]; ok && raw != nil {
		expr, err := decodeExpressionField(node, "value")
		if err != nil {
			return nil, err
		}
		value = expr
	}
	decl := ast.NewVarDeclaration(dataType, id, value)
	if loc, ok := node["location"].(map[string]any); ok {
		ast.SetSpan(decl, decodeSpan(loc))
	}
	return decl, nil
}

func decodeDeclarationList(node map[string]any, key string) ([]*ast.VarDeclaration, error) {
	raws, _ := node[key].([]any)
	out := make([]*ast.VarDeclaration, 0, len(raws))
	for _, raw := range raws {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%v.%s: invalid declaration %T", node["type"], key, raw)
		}
		decl, err := decodeVarDeclaration(child)
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}

func decodeVarAssign(node map[string]any) (*ast.VarAssign, error) {
	id, _ := node["id"].(string)
	value, err := decodeExpressionField(node, "assign")
	if err != nil {
		return nil, err
	}
	assign := ast.NewVarAssign(id, stringOr(node, "sig", "="), value)
	if loc, ok := node["location"].(map[string]any); ok {
		ast.SetSpan(assign, decodeSpan(loc))
	}
	return assign, nil
}

func decodeCallee(node map[string]any) (*ast.Callee, error) {
	callee, err := decodeExpressionField(node, "callee")
	if err != nil {
		return nil, err
	}
	args, err := decodeExpressionList(node, "args")
	if err != nil {
		return nil, err
	}
	call := ast.NewCallee(callee, args)
	if loc, ok := node["location"].(map[string]any); ok {
		ast.SetSpan(call, decodeSpan(loc))
	}
	return call, nil
}

func decodeCase(node map[string]any) (*ast.Case, error) {
	var cond ast.Expression
	if raw, ok := node["cond"]; ok && raw != nil {
		expr, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, err
		}
		cond = expr
	}
	body, err := decodeStatementField(node, "stmts")
	if err != nil {
		return nil, err
	}
	cs := ast.NewCase(cond, body)
	if loc, ok := node["location"].(map[string]any); ok {
		ast.SetSpan(cs, decodeSpan(loc))
	}
	return cs, nil
}
