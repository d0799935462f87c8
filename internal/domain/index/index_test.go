package index

import (
	"strings"
	"testing"
)

func TestParseMetric(t *testing.T) {
	for _, s := range []string{"cosine", "dot", "l2"} {
		m, err := ParseMetric(s)
		if err != nil {
			t.Errorf("ParseMetric(%q): unexpected error: %v", s, err)
		}
		if string(m) != s {
			t.Errorf("ParseMetric(%q) = %q", s, m)
		}
	}
	for _, s := range []string{"", "euclidean", "COSINE", "ip"} {
		if _, err := ParseMetric(s); err == nil {
			t.Errorf("ParseMetric(%q): expected error", s)
		}
	}
}

func TestNewMeta_Valid(t *testing.T) {
	m, err := NewMeta("ml_papers", 384, MetricCosine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "ml_papers" {
		t.Errorf("Name() = %q", m.Name())
	}
	if m.Dimension() != 384 {
		t.Errorf("Dimension() = %d", m.Dimension())
	}
	if m.Metric() != MetricCosine {
		t.Errorf("Metric() = %q", m.Metric())
	}
	if m.CreatedAt() == 0 {
		t.Error("CreatedAt() should be set")
	}
}

func TestNewMeta_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		coll   string
		dim    int
		metric Metric
	}{
		{"empty name", "", 384, MetricCosine},
		{"bad chars", "ml papers!", 384, MetricCosine},
		{"name too long", strings.Repeat("a", 65), 384, MetricCosine},
		{"zero dim", "papers", 0, MetricCosine},
		{"negative dim", "papers", -1, MetricCosine},
		{"dim over max", "papers", MaxDimension + 1, MetricCosine},
		{"bad metric", "papers", 384, Metric("manhattan")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMeta(tc.coll, tc.dim, tc.metric); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReconstructMeta_NoValidation(t *testing.T) {
	m := ReconstructMeta("anything", 3, MetricDot, 42)
	if m.Dimension() != 3 || m.Metric() != MetricDot || m.CreatedAt() != 42 {
		t.Errorf("ReconstructMeta lost fields: %+v", m)
	}
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("e-1", []float32{1, 2, 3}, map[string]string{"title": "t"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID() != "e-1" || len(e.Vector()) != 3 || e.Fields()["title"] != "t" {
		t.Errorf("entry lost fields: %+v", e)
	}

	if _, err := NewEntry("", []float32{1}, nil); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := NewEntry("e-2", nil, nil); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestNewEntry_ClonesVector(t *testing.T) {
	v := []float32{1, 2}
	e, err := NewEntry("e-1", v, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v[0] = 99
	if e.Vector()[0] != 1 {
		t.Error("entry vector should be a copy of the input")
	}
}
