package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	return s, dir
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		dataDir    string
		wantErr    bool
		wantNoData bool
	}{
		{"existing directory", dir, false, false},
		{"missing directory", filepath.Join(dir, "missing"), true, true},
		{"path is a file", file, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dataDir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNoData && !errors.Is(err, ErrNoDataDir) {
				t.Errorf("New() error = %v, want ErrNoDataDir", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Error("New() must not create the data directory")
	}
}

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.Mkdir(filepath.Join(home, "data"), 0755); err != nil {
		t.Fatal(err)
	}

	s, err := New("~/data")
	if err != nil {
		t.Fatalf("New(~/data) error: %v", err)
	}
	if s.Dir() != filepath.Join(home, "data") {
		t.Errorf("Dir() = %q, want %q", s.Dir(), filepath.Join(home, "data"))
	}

	if _, err := New("~/missing"); !errors.Is(err, ErrNoDataDir) {
		t.Errorf("New(~/missing) error = %v, want ErrNoDataDir", err)
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	s, dir := newTestStorage(t)

	type child struct {
		Attr  string `json:"attr"`
		Value int    `json:"value"`
	}
	data := struct {
		Attr     string  `json:"attr"`
		Value    int     `json:"value"`
		Children []child `json:"children"`
		Note     string  `json:"note"`
		Lines    string  `json:"lines"`
	}{
		Attr:     "陽性患者数",
		Value:    12,
		Children: []child{{Attr: "軽症・中等症", Value: 3}},
		Note:     "<b>&</b>",
		Lines:    "x\u2028y\u2029z",
	}

	if err := s.WriteJSON("summary.json", data); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatal(err)
	}

	want := `{
    "attr": "陽性患者数",
    "value": 12,
    "children": [
        {
            "attr": "軽症・中等症",
            "value": 3
        }
    ],
    "note": "<b>&</b>",
    "lines": "x` + "\u2028" + `y` + "\u2029" + `z"
}`
	if string(got) != want {
		t.Errorf("file content =\n%s\nwant\n%s", got, want)
	}

	// Writing the same value again must produce identical bytes.
	if err := s.WriteJSON("summary.json", data); err != nil {
		t.Fatalf("WriteJSON() second write error: %v", err)
	}
	again, _ := os.ReadFile(filepath.Join(dir, "summary.json"))
	if string(again) != string(got) {
		t.Error("rewrite produced different bytes")
	}

	var decoded struct {
		Attr  string `json:"attr"`
		Lines string `json:"lines"`
	}
	if err := s.ReadJSON("summary.json", &decoded); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if decoded.Attr != "陽性患者数" {
		t.Errorf("decoded attr = %q", decoded.Attr)
	}
	if decoded.Lines != data.Lines {
		t.Errorf("decoded lines = %q, want %q", decoded.Lines, data.Lines)
	}
}

func TestWriteJSON_Overwrites(t *testing.T) {
	s, dir := newTestStorage(t)

	if err := s.WriteJSON("out.json", map[string]string{"long": strings.Repeat("x", 100)}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteJSON("out.json", map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "out.json"))
	if string(got) != "{\n    \"n\": 1\n}" {
		t.Errorf("file content = %q", got)
	}
}

func TestWriteJSON_Errors(t *testing.T) {
	s, _ := newTestStorage(t)

	if err := s.WriteJSON("../escape.json", 1); err == nil {
		t.Error("WriteJSON() with escaping name expected error")
	}
	if err := s.WriteJSON("missing/sub.json", 1); err == nil {
		t.Error("WriteJSON() into missing subdirectory expected error")
	}
	if err := s.WriteJSON("bad.json", make(chan int)); err == nil {
		t.Error("WriteJSON() with unencodable value expected error")
	}
}

func TestSaveDownload(t *testing.T) {
	s, dir := newTestStorage(t)

	path, err := s.SaveDownload("report.xlsx", strings.NewReader("first version"))
	if err != nil {
		t.Fatalf("SaveDownload() error: %v", err)
	}
	if path != filepath.Join(dir, "report.xlsx") {
		t.Errorf("path = %q", path)
	}

	if _, err := s.SaveDownload("report.xlsx", strings.NewReader("v2")); err != nil {
		t.Fatalf("SaveDownload() overwrite error: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "v2" {
		t.Errorf("content = %q, want overwritten v2", got)
	}
}

func TestMarshalJSON_NoTrailingNewline(t *testing.T) {
	got, err := MarshalJSON([]int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "[\n    1,\n    2\n]" {
		t.Errorf("MarshalJSON = %q", got)
	}
}

func TestMarshalJSON_LineSeparators(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"raw separators", "a\u2028b\u2029c", `"a` + "\u2028" + `b` + "\u2029" + `c"`},
		{"escaped backslash before u2028 text", `a\u2028b`, `"a\\u2028b"`},
		{"backslash then raw separator", "a\\\u2028", `"a\\` + "\u2028" + `"`},
		{"other escapes untouched", "tab\there\u0001", `"tab\there\u0001"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalJSON(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
