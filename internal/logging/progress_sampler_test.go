package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default for zero", 0, 10},
		{"default for negative", -1, 10},
		{"custom", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "gel") {
		t.Error("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{4, false},
		{9.9, false},
		{10, true},
		{35, true},
		{36, false},
		{20, false},
		{100, true},
		{150, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.percent, "gel"); got != step.want {
			t.Fatalf("ShouldLog(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerPhaseChangeResetsBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(90, "  ingest  ")
	if s.lastPhase != "ingest" {
		t.Fatalf("lastPhase = %q, want trimmed", s.lastPhase)
	}
	if !s.ShouldLog(5, "optimize") {
		t.Fatal("phase change should log")
	}
	if s.ShouldLog(-1, "optimize") {
		t.Fatal("unknown percent in same phase should not log")
	}
	s.Reset()
	if !s.ShouldLog(0, "optimize") {
		t.Fatal("reset sampler should log again")
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(25, 200); got != 12.5 {
		t.Fatalf("Percent = %v", got)
	}
	if got := Percent(5, 0); got != -1 {
		t.Fatalf("Percent with unknown size = %v", got)
	}
}
