// Package modules resolves and evaluates import paths. Each module runs
// once; its namespace object is cached and shared by every importer.
package modules

import (
	"os"
	"path/filepath"

	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/lexer"
	"github.com/tandemjs/tandem/internal/parser"
	"github.com/tandemjs/tandem/internal/pipeline"
)

// Error kinds raised by the loader. Guest handlers and hosts can tell
// a missing file from a file that would not parse.
const (
	KindModuleNotFound = "ModuleNotFoundError"
	KindModuleParse    = "ModuleParseError"
)

// Loader caches evaluated modules by absolute path. A module that is
// still evaluating stays visible in the cache, so circular imports get
// its partially-filled namespace instead of deadlocking.
type Loader struct {
	cache      map[string]*evaluator.ObjectValue
	evaluating map[string]bool
	circular   []string
}

func NewLoader() *Loader {
	return &Loader{
		cache:      make(map[string]*evaluator.ObjectValue),
		evaluating: make(map[string]bool),
	}
}

// Install wires the loader into an evaluator as its import hook.
func (l *Loader) Install(e *evaluator.Evaluator) {
	e.LoadModule = l.load
}

// resolve turns an import path into an absolute file path, relative to
// the importing file.
func (l *Loader) resolve(path, fromFile string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	base := "."
	if fromFile != "" {
		base = filepath.Dir(fromFile)
	}
	return filepath.Clean(filepath.Join(base, path))
}

func (l *Loader) load(e *evaluator.Evaluator, path, fromFile string) (evaluator.Object, *evaluator.Exception) {
	abs := l.resolve(path, fromFile)

	if ns, ok := l.cache[abs]; ok {
		if l.InFlight(abs) {
			l.circular = append(l.circular, abs)
		}
		return ns, nil
	}

	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, evaluator.NewError(KindModuleNotFound, "cannot load module %q: %s", path, err.Error())
	}

	ctx := pipeline.NewPipelineContext(string(source), abs)
	pipeline.New(lexer.LexerProcessor{}, parser.ParserProcessor{}).Run(ctx)
	if len(ctx.Errors) > 0 {
		return nil, evaluator.NewError(KindModuleParse, "module %q failed to parse: %s", path, ctx.Errors[0].Error())
	}

	// Publish the namespace before evaluating so a cycle back into this
	// module sees whatever has been exported so far.
	ns := evaluator.NewObject()
	l.cache[abs] = ns
	l.evaluating[abs] = true
	defer delete(l.evaluating, abs)

	prevExports := e.Exports
	prevFile := e.File
	e.Exports = ns
	e.File = abs
	defer func() {
		e.Exports = prevExports
		e.File = prevFile
	}()

	moduleEnv := evaluator.NewEnclosedEnvironment(e.Globals)
	result := e.EvalProgram(ctx.AstRoot, moduleEnv)
	if ex, ok := result.(*evaluator.Exception); ok {
		delete(l.cache, abs)
		return nil, ex
	}
	return ns, nil
}

// InFlight reports whether a module is currently evaluating, which means
// an import of it would observe a partial namespace.
func (l *Loader) InFlight(path string) bool {
	return l.evaluating[path]
}

// Circular lists modules that were imported again while still
// evaluating, one entry per observed cycle edge. Those importers saw the
// namespace published so far, not the finished one.
func (l *Loader) Circular() []string {
	out := make([]string, len(l.circular))
	copy(out, l.circular)
	return out
}
