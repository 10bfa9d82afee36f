package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := New(InternalError, "failed to write index", cause)

		msg := err.Error()
		if !strings.Contains(msg, "INTERNAL_ERROR") {
			t.Errorf("Error() should contain code, got: %s", msg)
		}
		if !strings.Contains(msg, "disk full") {
			t.Errorf("Error() should contain cause, got: %s", msg)
		}
	})

	t.Run("without cause", func(t *testing.T) {
		err := New(IndexMissing, "no index found", nil)
		msg := err.Error()
		if !strings.Contains(msg, "INDEX_MISSING") {
			t.Errorf("Error() should contain code, got: %s", msg)
		}
		if strings.Contains(msg, "<nil>") {
			t.Errorf("Error() should not print nil cause, got: %s", msg)
		}
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := New(ParseFailed, "parse failure", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	var orcErr *OrcError
	if !errors.As(wrapped, &orcErr) {
		t.Fatal("errors.As should find the OrcError through wrapping")
	}
	if orcErr.Code != ParseFailed {
		t.Errorf("Code = %s, want PARSE_FAILED", orcErr.Code)
	}
}

func TestSuggestedFixes(t *testing.T) {
	err := New(IndexMissing, "no index", nil)
	if len(err.SuggestedFixes) == 0 {
		t.Fatal("IndexMissing should carry suggested fixes")
	}
	if err.SuggestedFixes[0].Command != "orc index" {
		t.Errorf("fix command = %q, want 'orc index'", err.SuggestedFixes[0].Command)
	}

	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("InternalError should have no canned fixes, got %v", fixes)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ParseFailed, "bad file", nil).WithDetails(map[string]string{"file": "a.py"})
	details, ok := err.Details.(map[string]string)
	if !ok || details["file"] != "a.py" {
		t.Errorf("Details = %v, want file=a.py", err.Details)
	}
}
