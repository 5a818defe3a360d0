// Package feedback turns a composition analysis summary into structured,
// human-readable coaching text using a language model, with a deterministic
// fallback when the model is unavailable.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/framecheck/framecheck/pkg/client"
	"github.com/framecheck/framecheck/pkg/types"
)

// SystemPreamble frames the model as a photography instructor.
const SystemPreamble = `You are an expert photography instructor and composition analyst. You provide constructive, encouraging, and educational feedback to help photographers improve their skills. Your responses should be friendly, specific, and actionable.`

// Generator produces composition feedback from analysis summaries.
type Generator struct {
	client client.LanguageClient
	model  string
}

// Result is the outcome of one feedback request. Success is false when the
// model call failed and Feedback holds the deterministic fallback instead.
type Result struct {
	Success  bool           `json:"success"`
	Feedback types.Feedback `json:"feedback"`
	Raw      string         `json:"raw_feedback,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewGenerator creates a feedback generator backed by the given client.
func NewGenerator(c client.LanguageClient, model string) *Generator {
	return &Generator{client: c, model: model}
}

// Generate produces feedback for the given summary. A model failure is not
// an error: the result carries the fallback feedback with Success unset.
func (g *Generator) Generate(ctx context.Context, summary types.AnalysisSummary) Result {
	prompt := g.buildPrompt(summary)

	raw, err := g.client.Query(ctx, g.model, prompt)
	if err != nil || strings.TrimSpace(raw) == "" {
		res := Result{
			Success:  false,
			Feedback: Fallback(summary),
		}
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Error = "empty response from model"
		}
		return res
	}

	return Result{
		Success:  true,
		Feedback: ParseSections(raw),
		Raw:      raw,
	}
}

func (g *Generator) buildPrompt(summary types.AnalysisSummary) string {
	name := summary.Filename
	if name == "" {
		name = "uploaded image"
	}

	var b strings.Builder
	b.WriteString(SystemPreamble)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Analyze this photography composition for %q and provide constructive feedback:\n\n", name)
	b.WriteString("COMPOSITION ANALYSIS:\n")
	b.WriteString("Rule of Thirds:\n")
	fmt.Fprintf(&b, "- Subject follows rule of thirds: %s\n", yesNo(summary.FollowsRuleOfThirds))
	fmt.Fprintf(&b, "- Subject detected: %s\n", yesNo(summary.SubjectDetected))
	fmt.Fprintf(&b, "- Distance from nearest intersection: %.1f pixels\n\n", summary.DistanceToThirds)
	b.WriteString("Leading Lines:\n")
	fmt.Fprintf(&b, "- Total lines detected: %d\n", summary.TotalLines)
	fmt.Fprintf(&b, "- Diagonal lines: %d\n", summary.DiagonalLines)
	fmt.Fprintf(&b, "- Corner-originating lines: %d\n", summary.CornerLines)
	fmt.Fprintf(&b, "- Strong leading lines present: %s\n\n", yesNo(summary.HasStrongLines))
	b.WriteString(`Please provide:
1. A brief overall assessment (2-3 sentences)
2. What works well in this composition (1-2 specific points)
3. Suggestions for improvement (2-3 actionable tips)
4. One advanced technique to try next time

Keep the tone encouraging and educational. Focus on practical advice that a photographer can apply immediately.`)

	return b.String()
}

// ParseSections splits free-form model output into the four feedback
// sections by scanning for section heading keywords. Content before the
// first recognized heading lands in the overall assessment; if nothing is
// recognized, the whole text does.
func ParseSections(text string) types.Feedback {
	var fb types.Feedback

	current := &fb.OverallAssessment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "works well") || strings.Contains(lower, "strengths"):
			current = &fb.WhatWorksWell
			continue
		case strings.Contains(lower, "suggest") || strings.Contains(lower, "improve") || strings.Contains(lower, "recommendation"):
			current = &fb.Suggestions
			continue
		case strings.Contains(lower, "advanced") || strings.Contains(lower, "next time") || strings.Contains(lower, "technique"):
			current = &fb.AdvancedTechnique
			continue
		}

		if *current != "" {
			*current += " " + line
		} else {
			*current = line
		}
	}

	if fb.OverallAssessment == "" && fb.WhatWorksWell == "" && fb.Suggestions == "" && fb.AdvancedTechnique == "" {
		fb.OverallAssessment = text
	}

	return fb
}

// Fallback derives basic feedback directly from the summary when the model
// is unavailable.
func Fallback(summary types.AnalysisSummary) types.Feedback {
	var strengths, suggestions []string

	if summary.FollowsRuleOfThirds {
		strengths = append(strengths, "Your main subject is well-positioned according to the rule of thirds.")
	} else {
		suggestions = append(suggestions, "Try positioning your main subject along the rule of thirds grid lines or at intersection points for more dynamic composition.")
	}

	if summary.HasStrongLines {
		strengths = append(strengths, fmt.Sprintf("Great use of leading lines! I detected %d diagonal lines that help guide the viewer's eye.", summary.DiagonalLines))
	} else {
		suggestions = append(suggestions, "Look for natural or architectural lines that can lead the viewer's eye toward your main subject.")
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "Your image shows good technical execution.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Continue experimenting with different compositions and perspectives.")
	}

	return types.Feedback{
		OverallAssessment: "I've analyzed your image composition using computer vision techniques.",
		WhatWorksWell:     strings.Join(strengths, " "),
		Suggestions:       strings.Join(suggestions, " "),
		AdvancedTechnique: "Try using the golden ratio instead of rule of thirds, or experiment with symmetrical compositions for a different visual impact.",
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
