package parser

import (
	"reflect"
	"testing"
)

const pythonSample = `import os
import sys, json
from collections import OrderedDict
from . import sibling
from ..pkg.util import helper, other as alias


def top_level(a, b=1, *args, **kwargs):
    if a and b:
        helper(a)
    for x in args:
        print(x)
    return json.dumps(a)


class Greeter(Base):
    def greet(self, name):
        return format_name(name)

    def _hidden(self):
        pass


if __name__ == "__main__":
    top_level(1)
`

func TestRegexPythonFunctions(t *testing.T) {
	p := NewRegexParser(LangPython)
	recs, err := p.Parse("pkg/mod.py", []byte(pythonSample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if recs.File.Provenance != ProvenanceRegex {
		t.Errorf("Provenance = %q, want %q", recs.File.Provenance, ProvenanceRegex)
	}
	if !recs.File.HasMainGuard {
		t.Error("HasMainGuard = false, want true")
	}
	if recs.File.Language != LangPython {
		t.Errorf("Language = %q, want python", recs.File.Language)
	}

	if len(recs.Functions) != 3 {
		t.Fatalf("got %d functions, want 3: %+v", len(recs.Functions), recs.Functions)
	}

	top := recs.Functions[0]
	if top.Name != "top_level" {
		t.Errorf("Name = %q, want top_level", top.Name)
	}
	if want := []string{"a", "b", "args", "kwargs"}; !reflect.DeepEqual(top.Params, want) {
		t.Errorf("Params = %v, want %v", top.Params, want)
	}
	if !top.Exported {
		t.Error("top_level should be exported")
	}
	// 1 + if + and + for = 4
	if top.Complexity != 4 {
		t.Errorf("Complexity = %d, want 4", top.Complexity)
	}
	if !containsString(top.Calls, "helper") || !containsString(top.Calls, "json.dumps") {
		t.Errorf("Calls = %v, want helper and json.dumps", top.Calls)
	}

	greet := recs.Functions[1]
	if greet.Name != "Greeter.greet" {
		t.Errorf("method Name = %q, want Greeter.greet", greet.Name)
	}
	if !greet.Exported {
		t.Error("Greeter.greet should be exported")
	}

	hidden := recs.Functions[2]
	if hidden.Name != "Greeter._hidden" {
		t.Errorf("method Name = %q, want Greeter._hidden", hidden.Name)
	}
	if hidden.Exported {
		t.Error("Greeter._hidden should not be exported")
	}
}

func TestRegexPythonImports(t *testing.T) {
	p := NewRegexParser(LangPython)
	recs, err := p.Parse("pkg/mod.py", []byte(pythonSample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	byModule := map[string]ImportRecord{}
	for _, imp := range recs.Imports {
		byModule[imp.Module] = imp
	}

	if _, ok := byModule["os"]; !ok {
		t.Error("missing import os")
	}
	if _, ok := byModule["sys"]; !ok {
		t.Error("missing import sys from comma list")
	}
	if _, ok := byModule["json"]; !ok {
		t.Error("missing import json from comma list")
	}

	coll, ok := byModule["collections"]
	if !ok {
		t.Fatal("missing from collections import")
	}
	if coll.Relative || !reflect.DeepEqual(coll.Symbols, []string{"OrderedDict"}) {
		t.Errorf("collections import = %+v", coll)
	}

	sib, ok := byModule[""]
	if !ok {
		t.Fatal("missing bare relative import (from . import sibling)")
	}
	if !sib.Relative || sib.Level != 1 || !reflect.DeepEqual(sib.Symbols, []string{"sibling"}) {
		t.Errorf("relative import = %+v", sib)
	}

	util, ok := byModule["pkg.util"]
	if !ok {
		t.Fatal("missing level-2 relative import")
	}
	if util.Level != 2 {
		t.Errorf("Level = %d, want 2", util.Level)
	}
	if want := []string{"helper", "other"}; !reflect.DeepEqual(util.Symbols, want) {
		t.Errorf("Symbols = %v, want %v (alias stripped)", util.Symbols, want)
	}
}

func TestRegexPythonClasses(t *testing.T) {
	p := NewRegexParser(LangPython)
	recs, err := p.Parse("pkg/mod.py", []byte(pythonSample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs.Classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(recs.Classes))
	}
	cls := recs.Classes[0]
	if cls.Name != "Greeter" || !reflect.DeepEqual(cls.Bases, []string{"Base"}) {
		t.Errorf("class = %+v", cls)
	}
}

const jsSample = `import React from 'react';
import { useState, useEffect as effect } from 'react';
import helper from './lib/helper';
const legacy = require('../legacy');

export function processOrder(order, options) {
  if (order.valid && options.strict) {
    helper(order);
  }
  return order.items.map(formatItem);
}

const formatItem = (item) => item.name;

export default class OrderView extends Component {
  render() {
    return this.props.order;
  }
}
`

func TestRegexScriptFunctions(t *testing.T) {
	p := NewRegexParser(LangJavaScript)
	recs, err := p.Parse("src/order.js", []byte(jsSample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(recs.Functions) != 2 {
		t.Fatalf("got %d functions, want 2: %+v", len(recs.Functions), recs.Functions)
	}

	proc := recs.Functions[0]
	if proc.Name != "processOrder" || !proc.Exported {
		t.Errorf("function = %+v, want exported processOrder", proc)
	}
	if want := []string{"order", "options"}; !reflect.DeepEqual(proc.Params, want) {
		t.Errorf("Params = %v, want %v", proc.Params, want)
	}
	// 1 + if + && = 3
	if proc.Complexity != 3 {
		t.Errorf("Complexity = %d, want 3", proc.Complexity)
	}
	if !containsString(proc.Calls, "helper") {
		t.Errorf("Calls = %v, want helper", proc.Calls)
	}

	arrow := recs.Functions[1]
	if arrow.Name != "formatItem" || arrow.Exported {
		t.Errorf("arrow = %+v, want unexported formatItem", arrow)
	}
}

func TestRegexScriptImports(t *testing.T) {
	p := NewRegexParser(LangJavaScript)
	recs, err := p.Parse("src/order.js", []byte(jsSample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var react, local, legacy *ImportRecord
	for i := range recs.Imports {
		switch recs.Imports[i].Module {
		case "react":
			if react == nil {
				react = &recs.Imports[i]
			}
		case "lib/helper":
			local = &recs.Imports[i]
		case "legacy":
			legacy = &recs.Imports[i]
		}
	}

	if react == nil || react.Relative {
		t.Errorf("react import = %+v, want bare non-relative", react)
	}
	if local == nil || !local.Relative || local.Level != 1 {
		t.Errorf("./lib/helper import = %+v, want relative level 1", local)
	}
	if legacy == nil || !legacy.Relative || legacy.Level != 2 {
		t.Errorf("../legacy require = %+v, want relative level 2", legacy)
	}
}

func TestRegexScriptClasses(t *testing.T) {
	p := NewRegexParser(LangJavaScript)
	recs, err := p.Parse("src/order.js", []byte(jsSample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs.Classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(recs.Classes))
	}
	cls := recs.Classes[0]
	if cls.Name != "OrderView" || !reflect.DeepEqual(cls.Bases, []string{"Component"}) {
		t.Errorf("class = %+v", cls)
	}
}

func TestLanguageFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Language
		ok   bool
	}{
		{".py", LangPython, true},
		{".jsx", LangJavaScript, true},
		{".ts", LangTypeScript, true},
		{".tsx", LangTSX, true},
		{".go", "", false},
		{".rb", "", false},
	}
	for _, tt := range tests {
		got, ok := LanguageFromExtension(tt.ext)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LanguageFromExtension(%q) = (%q, %v), want (%q, %v)", tt.ext, got, ok, tt.want, tt.ok)
		}
	}
}

func TestModuleFromSpecifier(t *testing.T) {
	tests := []struct {
		spec     string
		module   string
		relative bool
		level    int
	}{
		{"react", "react", false, 0},
		{"lodash/get", "lodash/get", false, 0},
		{"./util", "util", true, 1},
		{"./a/b", "a/b", true, 1},
		{"../shared", "shared", true, 2},
		{"../../core/db", "core/db", true, 3},
	}
	for _, tt := range tests {
		rec := moduleFromSpecifier(tt.spec)
		if rec.Module != tt.module || rec.Relative != tt.relative || rec.Level != tt.level {
			t.Errorf("moduleFromSpecifier(%q) = %+v, want {%s %v %d}", tt.spec, rec, tt.module, tt.relative, tt.level)
		}
	}
}

func TestHasMainGuard(t *testing.T) {
	if !hasMainGuard([]byte("x = 1\nif __name__ == '__main__':\n    run()\n")) {
		t.Error("single-quote main guard not detected")
	}
	if hasMainGuard([]byte("name = '__main__'\n")) {
		t.Error("false positive main guard")
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo\n", 2},
		{"one\ntwo", 2},
	}
	for _, tt := range tests {
		if got := countLines([]byte(tt.src)); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
