// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

const i18nPkgPath = "codeberg.org/plae/plae/i18n"

// placeholderRe matches the {{.Name}} fields that i18n.Tr fills from its
// key-value arguments.
var placeholderRe = regexp.MustCompile(`{{-?\s*\.(\w+)\s*-?}}`)

type problem struct {
	pos   string
	msgid string
	msg   string
}

type extractor struct {
	root string
	cat  *catalogue

	fset *token.FileSet
	info *types.Info

	// templ sources by path, read on first use
	templSources map[string][]string

	problems []problem
}

func newExtractor(root string, cat *catalogue) *extractor {
	return &extractor{
		root:         root,
		cat:          cat,
		templSources: make(map[string][]string),
	}
}

// inspect records every msgid used by pkg.
func (e *extractor) inspect(pkg *packages.Package) {
	if pkg.TypesInfo == nil {
		return
	}

	e.fset = pkg.Fset
	e.info = pkg.TypesInfo

	for _, f := range pkg.Syntax {
		ast.Inspect(f, func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.CallExpr:
				e.call(x)
			case *ast.CompositeLit:
				e.structLit(x)
			}

			return true
		})
	}
}

// call handles i18n.MsgKey conversions, the i18n translation functions and
// arguments passed to i18n.MsgKey parameters.
func (e *extractor) call(x *ast.CallExpr) {
	if tv, ok := e.info.Types[x.Fun]; ok && tv.IsType() {
		if len(x.Args) == 1 && isMsgKey(tv.Type) {
			e.addConst(x.Args[0])
		}

		return
	}

	if fn := e.i18nFunc(x); fn != "" {
		switch fn {
		case "Tr", "NewUserError":
			if len(x.Args) < 2 {
				return
			}

			if msgid, ok := e.constString(x.Args[1]); ok {
				e.add(x.Args[1].Pos(), msgid, "")
				e.checkVars(x, 2, msgid)
			}
		case "TrN":
			if len(x.Args) < 4 {
				return
			}

			singular, ok1 := e.constString(x.Args[1])
			plural, ok2 := e.constString(x.Args[2])

			if ok1 && ok2 {
				e.add(x.Args[1].Pos(), singular, plural)
				e.checkVars(x, 4, singular, plural)
			}
		}

		return
	}

	sig, ok := e.info.TypeOf(x.Fun).(*types.Signature)
	if !ok || sig.Variadic() {
		return
	}

	params := sig.Params()
	for i, arg := range x.Args {
		if i < params.Len() && isMsgKey(params.At(i).Type()) {
			e.addConst(arg)
		}
	}
}

// structLit handles keyed struct literals with i18n.MsgKey fields, such as
// the rows of the about page.
func (e *extractor) structLit(x *ast.CompositeLit) {
	tv, ok := e.info.Types[x]
	if !ok || tv.Type == nil {
		return
	}

	st, ok := tv.Type.Underlying().(*types.Struct)
	if !ok {
		return
	}

	for _, elt := range x.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}

		name, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}

		for i := range st.NumFields() {
			if f := st.Field(i); f.Name() == name.Name && isMsgKey(f.Type()) {
				e.addConst(kv.Value)
			}
		}
	}
}

// i18nFunc is the name of the i18n package function called by x, or "".
func (e *extractor) i18nFunc(x *ast.CallExpr) string {
	sel, ok := x.Fun.(*ast.SelectorExpr)
	if !ok {
		return ""
	}

	fn, ok := e.info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != i18nPkgPath {
		return ""
	}

	return fn.Name()
}

// checkVars compares the placeholders of msgids with the constant keys of
// the key-value arguments starting at x.Args[first]. Calls that forward a
// slice with ... or use computed keys are not checked.
func (e *extractor) checkVars(x *ast.CallExpr, first int, msgids ...string) {
	if x.Ellipsis.IsValid() {
		return
	}

	args := x.Args[first:]
	if len(args)%2 != 0 {
		e.report(x.Pos(), msgids[0], "odd number of key-value arguments")

		return
	}

	keys := make(map[string]bool, len(args)/2)

	for i := 0; i < len(args); i += 2 {
		key, ok := e.constString(args[i])
		if !ok {
			return
		}

		keys[key] = true
	}

	want := placeholders(msgids...)

	for _, name := range want {
		if !keys[name] {
			e.report(x.Pos(), msgids[0], "placeholder {{."+name+"}} has no value")
		}
	}

	for key := range keys {
		if !slices.Contains(want, key) {
			e.report(x.Pos(), msgids[0], "value "+strconv.Quote(key)+" is not used by the message")
		}
	}
}

func (e *extractor) report(pos token.Pos, msgid, msg string) {
	file, line := e.position(pos, msgid)

	e.problems = append(e.problems, problem{
		pos:   file + ":" + strconv.Itoa(line),
		msgid: msgid,
		msg:   msg,
	})
}

func (e *extractor) addConst(expr ast.Expr) {
	if msgid, ok := e.constString(expr); ok {
		e.add(expr.Pos(), msgid, "")
	}
}

func (e *extractor) add(pos token.Pos, msgid, plural string) {
	file, _ := e.position(pos, msgid)
	e.cat.add(msgid, plural, file)
}

// position resolves pos relative to the module root. Calls inside generated
// templ code are attributed to the .templ source, at the first line that
// quotes msgid.
func (e *extractor) position(pos token.Pos, msgid string) (string, int) {
	p := e.fset.Position(pos)
	file, line := p.Filename, p.Line

	if src, ok := strings.CutSuffix(file, "_templ.go"); ok {
		file = src + ".templ"
		line = e.templLine(file, msgid)
	}

	if rel, err := filepath.Rel(e.root, file); err == nil {
		file = rel
	}

	return filepath.ToSlash(file), line
}

func (e *extractor) templLine(path, msgid string) int {
	lines, ok := e.templSources[path]
	if !ok {
		data, err := os.ReadFile(path) // #nosec G304 -- sibling of a loaded source file
		if err == nil {
			lines = strings.Split(string(data), "\n")
		}

		e.templSources[path] = lines
	}

	quoted := strconv.Quote(msgid)
	for i, l := range lines {
		if strings.Contains(l, quoted) {
			return i + 1
		}
	}

	return 0
}

// constString evaluates expr to a constant string, including named
// constants and constant expressions.
func (e *extractor) constString(expr ast.Expr) (string, bool) {
	tv, ok := e.info.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

// isMsgKey reports whether t is i18n.MsgKey.
func isMsgKey(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()

	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == i18nPkgPath && obj.Name() == "MsgKey"
}

// placeholders lists the distinct field names used by msgids, sorted.
func placeholders(msgids ...string) []string {
	var names []string

	for _, msgid := range msgids {
		for _, m := range placeholderRe.FindAllStringSubmatch(msgid, -1) {
			if !slices.Contains(names, m[1]) {
				names = append(names, m[1])
			}
		}
	}

	slices.Sort(names)

	return names
}
