package agent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// Library answers the tool calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a tool a model can call.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary dispatches tool calls to the function declared with the same
// name.
func NewLibrary[T Function](functions []T) Library {
	byName := make(map[string]Function, len(functions))
	for _, f := range functions {
		byName[f.Declaration().Name] = f
	}
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		f, ok := byName[call.Name]
		if !ok {
			names := make([]string, 0, len(byName))
			for name := range byName {
				names = append(names, name)
			}
			slices.Sort(names)
			return failure(call.ID, call.Name, fmt.Errorf("unknown function %s, known: %s", call.Name, strings.Join(names, ", ")))
		}
		return f.Call(ctx, call.ID, call.Args)
	}
}

// NewDeclaration declares functions, in order.
func NewDeclaration[T Function](functions []T) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		decls = append(decls, f.Declaration())
	}
	return decls
}

// Tool is a Function made of its declaration and a markdown report.
type Tool struct {
	Decl   *genai.FunctionDeclaration
	Report func(ctx context.Context, args map[string]any) (string, error)
}

func (t *Tool) Declaration() *genai.FunctionDeclaration { return t.Decl }

func (t *Tool) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	md, err := t.Report(ctx, args)
	if err != nil {
		return failure(id, t.Decl.Name, err)
	}
	return success(id, t.Decl.Name, md)
}

func success(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": output}}
}

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
