package backend

import (
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/pipeline"
)

// ExecutionProcessor is the pipeline stage that runs a parsed program on
// the configured backend.
type ExecutionProcessor struct {
	Backend Backend
	Runtime *Runtime
}

func (p ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 || ctx.AstRoot == nil {
		return ctx
	}
	result := p.Backend.Execute(ctx.AstRoot, p.Runtime)
	if ex, ok := result.(*evaluator.Exception); ok {
		ctx.Errors = append(ctx.Errors, &diagnostics.Diagnostic{
			Code:    diagnostics.ErrR001,
			Message: ex.Trace(),
			File:    ex.File,
			Line:    ex.Line,
			Column:  ex.Column,
		})
		return ctx
	}
	ctx.Result = result
	return ctx
}
