package client

import (
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScriptEmbedded(t *testing.T) {
	data, err := fs.ReadFile(Assets(), ScriptName)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	script := string(data)
	for _, want := range []string{
		"tabkit-live",
		"ul[role=tablist] > li > a",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("Script should contain %q", want)
		}
	}
	if strings.Contains(script, `querySelectorAll("[data-toggle]")`) {
		t.Error("Tab index must count header links only, not every data-toggle element")
	}
}

func TestHandlerServesScript(t *testing.T) {
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/"+ScriptName, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	want, err := fs.ReadFile(Assets(), ScriptName)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(body) != string(want) {
		t.Error("Served script differs from embedded script")
	}
}
