package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/framecheck/framecheck/pkg/types"
)

type stubClient struct {
	response string
	err      error
	prompt   string
}

func (s *stubClient) Query(ctx context.Context, model, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubClient) Embed(ctx context.Context, model, text string) ([]float64, error) {
	return nil, errors.New("not implemented")
}

func TestGenerateSuccess(t *testing.T) {
	stub := &stubClient{response: `Overall this is a solid image.

What works well:
The subject placement is strong.

Suggestions for improvement:
Watch the horizon line.

Advanced technique:
Try a polarizing filter.`}

	g := NewGenerator(stub, "llama3.1")
	res := g.Generate(context.Background(), types.AnalysisSummary{
		Filename:            "test.jpg",
		FollowsRuleOfThirds: true,
		SubjectDetected:     true,
		TotalLines:          4,
	})

	if !res.Success {
		t.Fatalf("Generate() failed: %s", res.Error)
	}
	if res.Feedback.OverallAssessment != "Overall this is a solid image." {
		t.Errorf("overall = %q", res.Feedback.OverallAssessment)
	}
	if res.Feedback.WhatWorksWell != "The subject placement is strong." {
		t.Errorf("works well = %q", res.Feedback.WhatWorksWell)
	}
	if res.Feedback.AdvancedTechnique != "Try a polarizing filter." {
		t.Errorf("advanced = %q", res.Feedback.AdvancedTechnique)
	}
	if res.Raw != stub.response {
		t.Error("raw response not preserved")
	}
}

func TestGeneratePromptContents(t *testing.T) {
	stub := &stubClient{response: "ok"}
	g := NewGenerator(stub, "llama3.1")

	g.Generate(context.Background(), types.AnalysisSummary{
		Filename:            "sunset.jpg",
		FollowsRuleOfThirds: true,
		TotalLines:          7,
		DiagonalLines:       3,
	})

	for _, want := range []string{
		`"sunset.jpg"`,
		"Subject follows rule of thirds: Yes",
		"Total lines detected: 7",
		"Diagonal lines: 3",
		SystemPreamble,
	} {
		if !strings.Contains(stub.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	stub := &stubClient{err: errors.New("connection refused")}
	g := NewGenerator(stub, "llama3.1")

	res := g.Generate(context.Background(), types.AnalysisSummary{FollowsRuleOfThirds: true})

	if res.Success {
		t.Fatal("expected Success=false on client error")
	}
	if res.Error != "connection refused" {
		t.Errorf("error = %q", res.Error)
	}
	if !strings.Contains(res.Feedback.WhatWorksWell, "rule of thirds") {
		t.Errorf("fallback strengths = %q", res.Feedback.WhatWorksWell)
	}
}

func TestGenerateFallsBackOnEmptyResponse(t *testing.T) {
	stub := &stubClient{response: "   \n  "}
	g := NewGenerator(stub, "llama3.1")

	res := g.Generate(context.Background(), types.AnalysisSummary{})
	if res.Success {
		t.Fatal("expected Success=false on empty response")
	}
	if res.Error != "empty response from model" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Feedback
	}{
		{
			name: "numbered headings",
			text: "Nice shot overall.\n1. Strengths\nGood light.\n2. Suggestions\nStep closer.\n3. Advanced technique\nBracket exposures.",
			want: types.Feedback{
				OverallAssessment: "Nice shot overall.",
				WhatWorksWell:     "Good light.",
				Suggestions:       "Step closer.",
				AdvancedTechnique: "Bracket exposures.",
			},
		},
		{
			name: "no recognized headings",
			text: "Just a single paragraph of advice.",
			want: types.Feedback{
				OverallAssessment: "Just a single paragraph of advice.",
			},
		},
		{
			name: "multi-line sections join with spaces",
			text: "What works well:\nFirst point.\nSecond point.",
			want: types.Feedback{
				WhatWorksWell: "First point. Second point.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSections(tt.text)
			if got != tt.want {
				t.Errorf("ParseSections() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFallback(t *testing.T) {
	good := Fallback(types.AnalysisSummary{
		FollowsRuleOfThirds: true,
		HasStrongLines:      true,
		DiagonalLines:       3,
	})
	if !strings.Contains(good.WhatWorksWell, "well-positioned") {
		t.Errorf("strengths = %q", good.WhatWorksWell)
	}
	if !strings.Contains(good.WhatWorksWell, "3 diagonal lines") {
		t.Errorf("strengths = %q", good.WhatWorksWell)
	}
	if !strings.Contains(good.Suggestions, "experimenting") {
		t.Errorf("suggestions = %q", good.Suggestions)
	}

	weak := Fallback(types.AnalysisSummary{})
	if !strings.Contains(weak.Suggestions, "rule of thirds grid lines") {
		t.Errorf("suggestions = %q", weak.Suggestions)
	}
	if !strings.Contains(weak.WhatWorksWell, "technical execution") {
		t.Errorf("strengths = %q", weak.WhatWorksWell)
	}
}
