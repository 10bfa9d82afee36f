package export

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"orc/internal/logging"
	"orc/internal/storage"
)

func testDump(t *testing.T) *Dump {
	t.Helper()
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
	db, err := storage.Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	snap := &storage.Snapshot{
		Files: []storage.File{
			{ID: 1, Path: "app/service.py", Language: "python", LineCount: 80, Provenance: "treesitter", ContentHash: "a"},
			{ID: 2, Path: "app/models.py", Language: "python", LineCount: 40, Provenance: "treesitter", ContentHash: "b"},
		},
		Functions: []storage.Function{
			{ID: 1, FileID: 1, Name: "handle", StartLine: 10, EndLine: 30, Complexity: 3, Exported: true},
			{ID: 2, FileID: 2, Name: "Order.total", StartLine: 5, EndLine: 12, Complexity: 2, Exported: true},
		},
		Classes: []storage.Class{
			{ID: 1, FileID: 2, Name: "Order", StartLine: 3},
		},
		Dependencies: []storage.FileDependency{
			{SourceFileID: 1, TargetFileID: 2, Line: 1},
		},
	}
	if err := db.ReplaceAll(snap); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	dump, err := Collect(db)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return dump
}

func TestCollect(t *testing.T) {
	dump := testDump(t)
	if len(dump.Files) != 2 || len(dump.Functions) != 2 || len(dump.Classes) != 1 {
		t.Errorf("dump sizes = %d files, %d functions, %d classes",
			len(dump.Files), len(dump.Functions), len(dump.Classes))
	}
	if len(dump.Dependencies) != 1 {
		t.Errorf("dependencies = %+v", dump.Dependencies)
	}
	if !strings.HasPrefix(dump.Tool, "orc ") {
		t.Errorf("tool = %q", dump.Tool)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testDump(t)); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded Dump
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if len(decoded.Functions) != 2 {
		t.Errorf("decoded functions = %+v", decoded.Functions)
	}
	// AllFunctions orders by path, so models.py comes first.
	if decoded.Functions[0].FilePath != "app/models.py" {
		t.Errorf("function file path = %q", decoded.Functions[0].FilePath)
	}
}

func TestWriteSCIPRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSCIP(&buf, "/repo", testDump(t)); err != nil {
		t.Fatalf("WriteSCIP() error = %v", err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(buf.Bytes(), &index); err != nil {
		t.Fatalf("output not a valid SCIP index: %v", err)
	}

	if index.Metadata.ToolInfo.Name != "orc" {
		t.Errorf("tool name = %q", index.Metadata.ToolInfo.Name)
	}
	if index.Metadata.ProjectRoot != "file:///repo" {
		t.Errorf("project root = %q", index.Metadata.ProjectRoot)
	}
	if len(index.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(index.Documents))
	}

	var models *scippb.Document
	for _, doc := range index.Documents {
		if doc.RelativePath == "app/models.py" {
			models = doc
		}
	}
	if models == nil {
		t.Fatal("missing document for app/models.py")
	}
	// One method and one class, each with a definition occurrence.
	if len(models.Symbols) != 2 || len(models.Occurrences) != 2 {
		t.Fatalf("models.py symbols = %d, occurrences = %d", len(models.Symbols), len(models.Occurrences))
	}

	byName := make(map[string]*scippb.SymbolInformation)
	for _, sym := range models.Symbols {
		byName[sym.DisplayName] = sym
	}
	if sym := byName["Order.total"]; sym == nil || sym.Kind != scippb.SymbolInformation_Method {
		t.Errorf("Order.total symbol = %+v", sym)
	}
	if sym := byName["Order"]; sym == nil || sym.Kind != scippb.SymbolInformation_Class {
		t.Errorf("Order symbol = %+v", sym)
	}

	for _, occ := range models.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
			t.Errorf("occurrence %q is not a definition", occ.Symbol)
		}
		if occ.Range[0] < 0 {
			t.Errorf("occurrence %q has negative line", occ.Symbol)
		}
	}
}

func TestCreateOutputGzip(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "dump.json")
	w, err := CreateOutput(plain)
	if err != nil {
		t.Fatalf("CreateOutput() error = %v", err)
	}
	if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	data, err := os.ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("plain output = %q", data)
	}

	zipped := filepath.Join(dir, "dump.json.gz")
	w, err = CreateOutput(zipped)
	if err != nil {
		t.Fatalf("CreateOutput() error = %v", err)
	}
	if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(zipped)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	defer gz.Close()
	unzipped, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(unzipped) != `{"ok":true}` {
		t.Errorf("gzip output = %q", unzipped)
	}
}
