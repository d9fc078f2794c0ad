package parser

import (
	"github.com/tandemjs/tandem/internal/pipeline"
)

// ParserProcessor implements pipeline.Processor for the parsing stage.
// A unit that fails to parse produces no AST: nothing downstream ever
// sees a partial tree.
type ParserProcessor struct{}

func (ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 || ctx.Tokens == nil {
		return ctx
	}
	p := New(ctx.Tokens)
	p.SetFile(ctx.FilePath)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		ctx.Errors = append(ctx.Errors, errs...)
		return ctx
	}
	program.File = ctx.FilePath
	ctx.AstRoot = program
	return ctx
}
