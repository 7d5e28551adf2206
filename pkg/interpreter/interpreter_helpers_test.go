package interpreter

import (
	"testing"

	"oak/toolchain-go/pkg/ast"
)

func runProgram(statements ...ast.Statement) *Result {
	return New().Execute(ast.Prog(statements...))
}

// mustRun executes the statements and fails the test on any error.
func mustRun(t *testing.T, statements ...ast.Statement) string {
	t.Helper()
	result := runProgram(statements...)
	for _, err := range result.Errors {
		t.Errorf("unexpected error: %v", err)
	}
	return result.Console
}

func expectErrors(t *testing.T, result *Result, messages ...string) {
	t.Helper()
	if len(result.Errors) != len(messages) {
		t.Fatalf("expected %d errors, got %d: %v", len(messages), len(result.Errors), result.Errors)
	}
	for idx, msg := range messages {
		if got := result.Errors[idx].Error(); got != msg {
			t.Fatalf("error %d: expected %q, got %q", idx, msg, got)
		}
	}
}

func expectConsole(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("console mismatch:\nwant %q\n got %q", want, got)
	}
}
