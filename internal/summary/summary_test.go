package summary

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/covid19-scraping/internal/storage"
)

func TestNew_JSONShape(t *testing.T) {
	got, err := storage.MarshalJSON(New())
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}

	want := `{
    "attr": "検査実施人数",
    "value": 0,
    "children": [
        {
            "attr": "陽性患者数",
            "value": 0,
            "children": [
                {
                    "attr": "入院中",
                    "value": 0,
                    "children": [
                        {
                            "attr": "軽症・中等症",
                            "value": 0
                        },
                        {
                            "attr": "重症",
                            "value": 0
                        }
                    ]
                },
                {
                    "attr": "死亡",
                    "value": 0
                },
                {
                    "attr": "退院",
                    "value": 0
                }
            ]
        }
    ],
    "last_update": ""
}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("template JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_Independent(t *testing.T) {
	a := New()
	if err := a.Set(AttrSevere, 9); err != nil {
		t.Fatal(err)
	}
	a.LastUpdate = "2020/04/15 21:00"

	b := New()
	if v, _ := b.Get(AttrSevere); v != 0 {
		t.Errorf("fresh tree %s = %d, want 0", AttrSevere, v)
	}
	if b.LastUpdate != "" {
		t.Errorf("fresh tree LastUpdate = %q, want empty", b.LastUpdate)
	}
}

func TestSetGet(t *testing.T) {
	s := New()
	values := map[string]int{
		AttrTested:       1234,
		AttrPositive:     56,
		AttrHospitalized: 20,
		AttrMild:         18,
		AttrSevere:       2,
		AttrDeaths:       3,
		AttrDischarged:   33,
	}

	for attr, v := range values {
		if err := s.Set(attr, v); err != nil {
			t.Fatalf("Set(%s) error: %v", attr, err)
		}
	}
	for attr, want := range values {
		got, err := s.Get(attr)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", attr, err)
		}
		if got != want {
			t.Errorf("Get(%s) = %d, want %d", attr, got, want)
		}
	}
}

func TestSet_UnknownAttr(t *testing.T) {
	s := New()
	if err := s.Set("感染者", 1); !errors.Is(err, ErrUnknownAttr) {
		t.Errorf("Set() error = %v, want ErrUnknownAttr", err)
	}
	if _, err := s.Get(""); !errors.Is(err, ErrUnknownAttr) {
		t.Errorf("Get() error = %v, want ErrUnknownAttr", err)
	}
}

func TestWalk(t *testing.T) {
	var lines []string
	New().Walk(func(depth int, n *Node) {
		lines = append(lines, strings.Repeat("-", depth)+n.Attr)
	})

	want := []string{
		"検査実施人数",
		"-陽性患者数",
		"--入院中",
		"---軽症・中等症",
		"---重症",
		"--死亡",
		"--退院",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}
}
