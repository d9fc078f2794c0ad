// Package pipeline chains the processing stages (lex, parse, execute) over
// a shared context, collecting diagnostics from every stage.
package pipeline

import (
	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/token"
)

// PipelineContext carries one compilation unit through the stages.
type PipelineContext struct {
	Source   string
	FilePath string

	Tokens  []token.Token
	AstRoot *ast.Program

	// Result of execution, when an execution processor ran.
	Result interface{}

	Errors []*diagnostics.Diagnostic
}

func NewPipelineContext(source, filePath string) *PipelineContext {
	return &PipelineContext{Source: source, FilePath: filePath}
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages after a failed one still run when they
// can, so callers see diagnostics from every stage that produced any.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
