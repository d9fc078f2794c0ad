package lexer

import (
	"github.com/tandemjs/tandem/internal/pipeline"
)

// LexerProcessor implements pipeline.Processor for the scanning stage.
type LexerProcessor struct{}

func (LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source)
	ctx.Tokens = l.Tokenize()
	for _, d := range l.Errors() {
		d.File = ctx.FilePath
		ctx.Errors = append(ctx.Errors, d)
	}
	return ctx
}
