package evaluator

import (
	"github.com/tandemjs/tandem/internal/ast"
)

func (e *Evaluator) evalImportStatement(stmt *ast.ImportStatement, env *Environment) Object {
	if e.LoadModule == nil {
		return e.raise(NewError(KindError, "imports are not supported in this context"), stmt.Token)
	}
	nsObj, ex := e.LoadModule(e, stmt.Path, e.File)
	if ex != nil {
		return e.raise(ex, stmt.Token)
	}
	ns, ok := nsObj.(*ObjectValue)
	if !ok {
		return e.raise(NewError(KindError, "module %q produced no namespace", stmt.Path), stmt.Token)
	}

	if stmt.Default != nil {
		v, _ := ns.Get("default")
		env.Define(stmt.Default.Value, v)
	}
	if stmt.Namespace != nil {
		env.Define(stmt.Namespace.Value, ns)
	}
	for _, spec := range stmt.Named {
		v, _ := ns.Get(spec.Name)
		name := spec.Name
		if spec.Alias != "" {
			name = spec.Alias
		}
		env.Define(name, v)
	}
	return UNDEFINED
}

func (e *Evaluator) evalExportStatement(stmt *ast.ExportStatement, env *Environment) Object {
	if e.Exports == nil {
		// Exports outside a module context evaluate their declaration and
		// otherwise do nothing, so scripts can share files with modules.
		if stmt.Decl != nil {
			return e.Eval(stmt.Decl, env)
		}
		if stmt.Default != nil {
			return e.Eval(stmt.Default, env)
		}
		return UNDEFINED
	}

	if stmt.Default != nil {
		val := e.Eval(stmt.Default, env)
		if isSignal(val) {
			return val
		}
		e.Exports.Set("default", val)
		return UNDEFINED
	}

	if result := e.Eval(stmt.Decl, env); isSignal(result) {
		return result
	}
	for _, name := range declaredNames(stmt.Decl) {
		if v, ok := env.Get(name); ok {
			e.Exports.Set(name, v)
		}
	}
	return UNDEFINED
}

// declaredNames lists the bindings introduced by an exportable
// declaration.
func declaredNames(decl ast.Statement) []string {
	switch d := decl.(type) {
	case *ast.VarStatement:
		if d.Pattern != nil {
			return patternNames(d.Pattern)
		}
		return []string{d.Name.Value}
	case *ast.FunctionDeclaration:
		return []string{d.Name.Value}
	case *ast.ClassDeclaration:
		return []string{d.Name.Value}
	default:
		return nil
	}
}

func patternNames(pat ast.Pattern) []string {
	switch p := pat.(type) {
	case *ast.IdentifierPattern:
		return []string{p.Name}
	case *ast.ObjectPattern:
		var out []string
		for _, prop := range p.Props {
			out = append(out, patternNames(prop.Value)...)
		}
		if p.Rest != nil {
			out = append(out, p.Rest.Name)
		}
		return out
	case *ast.ArrayPattern:
		var out []string
		for _, el := range p.Elements {
			if el.Pat != nil {
				out = append(out, patternNames(el.Pat)...)
			}
		}
		if p.Rest != nil {
			out = append(out, patternNames(p.Rest)...)
		}
		return out
	default:
		return nil
	}
}
