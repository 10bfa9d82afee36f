package export

import (
	"fmt"
	"io"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"orc/internal/version"
)

// WriteSCIP renders the dump as a SCIP protobuf index: one document per
// file, a definition occurrence plus symbol information per function and
// class.
func WriteSCIP(w io.Writer, projectRoot string, dump *Dump) error {
	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			Version: scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scippb.ToolInfo{
				Name:    "orc",
				Version: version.Version,
			},
			ProjectRoot:          "file://" + projectRoot,
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	docs := make(map[int64]*scippb.Document, len(dump.Files))
	for _, f := range dump.Files {
		doc := &scippb.Document{
			Language:     f.Language,
			RelativePath: f.Path,
		}
		docs[f.ID] = doc
		index.Documents = append(index.Documents, doc)
	}

	for _, fn := range dump.Functions {
		doc, ok := docs[fn.FileID]
		if !ok {
			continue
		}
		sym := symbolName(doc.RelativePath, fn.Name, "().")
		kind := scippb.SymbolInformation_Function
		if strings.Contains(fn.Name, ".") {
			kind = scippb.SymbolInformation_Method
		}
		doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
			Symbol:      sym,
			Kind:        kind,
			DisplayName: fn.Name,
		})
		doc.Occurrences = append(doc.Occurrences, definition(sym, fn.StartLine, fn.Name))
	}

	for _, cls := range dump.Classes {
		doc, ok := docs[cls.FileID]
		if !ok {
			continue
		}
		sym := symbolName(doc.RelativePath, cls.Name, "#")
		doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
			Symbol:      sym,
			Kind:        scippb.SymbolInformation_Class,
			DisplayName: cls.Name,
		})
		doc.Occurrences = append(doc.Occurrences, definition(sym, cls.StartLine, cls.Name))
	}

	data, err := proto.Marshal(index)
	if err != nil {
		return fmt.Errorf("encoding scip index: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing scip index: %w", err)
	}
	return nil
}

// symbolName builds a global SCIP symbol. Paths go in a backtick-escaped
// descriptor; the suffix distinguishes functions ("().") from types ("#").
func symbolName(path, name, suffix string) string {
	qualified := strings.ReplaceAll(name, ".", "/")
	return fmt.Sprintf("orc . . . `%s`/%s%s", path, qualified, suffix)
}

// definition emits a single-line definition occurrence. SCIP ranges are
// zero-based; stored lines are one-based.
func definition(symbol string, startLine int, name string) *scippb.Occurrence {
	line := int32(startLine - 1)
	if line < 0 {
		line = 0
	}
	return &scippb.Occurrence{
		Range:       []int32{line, 0, int32(len(name))},
		Symbol:      symbol,
		SymbolRoles: int32(scippb.SymbolRole_Definition),
	}
}
