package machine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mhr3/slo/lang/compiler"
	"github.com/mhr3/slo/lang/value"
)

// importModule implements spec.md §4.3's Imports paragraph: resolve path
// relative to the current module's directory, compile it, execute its
// top-level code in a fresh frame with its own globals table, and capture
// those globals as a Module once it returns. Repeated imports of the same
// resolved path are served from vm.moduleCache; an import still in progress
// higher up the call chain is a cycle and a runtime error.
func (vm *VM) importModule(rawPath string) (*value.Module, error) {
	resolved, err := vm.resolveModulePath(rawPath)
	if err != nil {
		return nil, vm.runtimeErrorf("import %q: %v", rawPath, err)
	}
	if mod, ok := vm.moduleCache.Get(resolved); ok {
		return mod, nil
	}
	if vm.loading[resolved] {
		return nil, vm.runtimeErrorf("import cycle detected for %q", rawPath)
	}

	src, err := os.ReadFile(resolved)
	if err != nil {
		return nil, vm.runtimeErrorf("import %q: %v", rawPath, err)
	}
	fn, err := compiler.Compile(src, resolved)
	if err != nil {
		return nil, vm.runtimeErrorf("import %q: compile error: %v", rawPath, err)
	}

	vm.loading[resolved] = true
	defer delete(vm.loading, resolved)

	savedGlobals, savedDir, savedFile := vm.globals, vm.moduleDir, vm.curFile
	vm.globals = value.NewTable()
	vm.rt.Globals.Each(func(k, v value.Value) { vm.globals.Set(k, v) })
	vm.moduleDir = filepath.Dir(resolved)
	vm.curFile = resolved

	depth := len(vm.frames)
	closure := vm.allocClosure(fn)
	vm.push(closure)
	_, callErr := vm.call(closure, 0)
	var runErr error
	if callErr == nil {
		_, runErr = vm.runLoopTo(depth)
	} else {
		runErr = callErr
	}

	modGlobals := vm.globals
	vm.globals, vm.moduleDir, vm.curFile = savedGlobals, savedDir, savedFile
	if runErr != nil {
		return nil, runErr
	}

	mod := vm.allocModule(moduleBindingName(resolved), modGlobals)
	vm.moduleCache.Put(resolved, mod)
	return mod, nil
}

// resolveModulePath joins rawPath against the importing module's directory
// (the entry file's directory for a top-level import) and appends the
// language's default source extension when rawPath has no extension.
func (vm *VM) resolveModulePath(rawPath string) (string, error) {
	dir := vm.moduleDir
	if dir == "" {
		dir = filepath.Dir(vm.curFile)
	}
	p := rawPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	if filepath.Ext(p) == "" {
		p += ".slo"
	}
	return filepath.Clean(p), nil
}

// moduleBindingName derives the bare identifier a plain (non-aliased)
// IMPORT binds its Module under: the resolved file's base name, extension
// stripped (spec.md §4.3: "bind the module to its base name").
func moduleBindingName(resolved string) string {
	base := filepath.Base(resolved)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
