package graphql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// SchemaSourceName labels the SDL in gqlparser error locations.
const SchemaSourceName = "github.schema.graphql"

// Ensure Compiler implements the QueryCompiler interface.
var _ driven.QueryCompiler = (*Compiler)(nil)

// Compiler parses query text and validates it against an optional schema.
// It is safe for concurrent use.
type Compiler struct {
	schema *ast.Schema
}

// NewCompiler loads the schema from SDL. An empty sdl yields a schema-less compiler.
func NewCompiler(sdl string) (*Compiler, error) {
	if strings.TrimSpace(sdl) == "" {
		return &Compiler{}, nil
	}

	schema, err := gqlparser.LoadSchema(&ast.Source{Name: SchemaSourceName, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return &Compiler{schema: schema}, nil
}

// NewCompilerFromSource loads the schema from src. When the snapshot cannot be
// loaded it is invalidated so the next run downloads a fresh copy.
func NewCompilerFromSource(ctx context.Context, src driven.SchemaSource) (*Compiler, error) {
	if src == nil {
		return NewCompiler("")
	}

	sdl, err := src.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: schema: %w", domain.ErrConfiguration, err)
	}

	compiler, err := NewCompiler(sdl)
	if err != nil {
		if iErr := src.Invalidate(); iErr != nil {
			logger.Warn("Failed to discard schema snapshot: %v", iErr)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return compiler, nil
}

// SchemaLess reports whether queries are parsed without validation.
func (c *Compiler) SchemaLess() bool {
	return c.schema == nil
}

// Schema returns the loaded schema, nil in schema-less mode.
func (c *Compiler) Schema() *ast.Schema {
	return c.schema
}

// Compile parses (and validates, when a schema is loaded) text.
// The handle is the *ast.QueryDocument.
func (c *Compiler) Compile(text string) (domain.Compilation, error) {
	doc, err := c.parse(text)
	if err != nil {
		return domain.Compilation{}, err
	}
	if len(doc.Operations) == 0 {
		return domain.Compilation{}, errors.New("no operation defined")
	}

	op := doc.Operations[0]
	defaults, err := variableDefaults(op)
	if err != nil {
		return domain.Compilation{}, err
	}

	return domain.Compilation{
		Handle:        doc,
		OperationName: op.Name,
		Defaults:      defaults,
	}, nil
}

func (c *Compiler) parse(text string) (*ast.QueryDocument, error) {
	if c.schema == nil {
		doc, err := parser.ParseQuery(&ast.Source{Input: text})
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	doc, errs := gqlparser.LoadQuery(c.schema, text)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// variableDefaults evaluates the default values declared on op's variables.
func variableDefaults(op *ast.OperationDefinition) (domain.Variables, error) {
	defaults := make(domain.Variables)
	for _, def := range op.VariableDefinitions {
		if def.DefaultValue == nil {
			continue
		}
		val, err := def.DefaultValue.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default for $%s: %w", def.Variable, err)
		}
		defaults[def.Variable] = val
	}
	return defaults, nil
}
