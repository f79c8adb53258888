// Package prompt renders the chat messages sent to the narrative generator.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"wallet_report/internal/domain/entity"
)

// AssistantName is the persona the report is written under.
const AssistantName = "CrunchGuardian AI"

var systemTmpl = template.Must(template.New("system").Parse(
	`You are {{.Assistant}}, an expert Web3 analyst. Your goal is to provide a concise, high-level due-diligence report in clean Markdown.

**CRITICAL RULE: Under no circumstances should you generate code, code snippets, filenames, or programming syntax. Your response must be pure, clean Markdown text.**

Your report MUST contain ONLY these sections:
### {{.Assistant}} Report for {{.Wallet}}
**Overall Risk Assessment:** {{.RiskLevel}}
#### Summary
[1-2 sentence overview of the wallet's main characteristics.]
#### Additional Insights & Red Flags
[Elaborate on critical findings from the data summary.]
#### Analyst's Verdict
[A final, concise expert opinion.]
---
**Important Disclaimer:** This report reflects the provided API data and is not investment advice.
`))

var userTmpl = template.Must(template.New("user").Parse(
	`Analyze the following data summary for wallet address: {{.Wallet}}
--- DATA SUMMARY ---
{{.Summary}}
--- END OF SUMMARY ---
Based on all the details in the summary, generate a professional due-diligence report in Markdown format.
`))

type promptData struct {
	Assistant string
	Wallet    string
	RiskLevel string
	Summary   string
}

// Build renders the system and user messages for one report.
func Build(nc entity.NarrativeContext, level entity.RiskLevel) ([]entity.ChatMessage, error) {
	data := promptData{
		Assistant: AssistantName,
		Wallet:    Escape(nc.WalletAddress),
		RiskLevel: level.String(),
		Summary:   Escape(nc.Summary),
	}

	system, err := render(systemTmpl, data)
	if err != nil {
		return nil, err
	}
	user, err := render(userTmpl, data)
	if err != nil {
		return nil, err
	}

	return []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: system},
		{Role: entity.RoleUser, Content: user},
	}, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return sb.String(), nil
}

// Escape neutralises template braces and section delimiters in text that came
// from upstream data or the caller.
func Escape(text string) string {
	text = splitBraces(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "---") {
			lines[i] = line[:len(line)-len(trimmed)] + "- - -" + strings.TrimLeft(trimmed, "-")
		}
	}
	return strings.Join(lines, "\n")
}

// splitBraces puts a space between adjacent identical braces so that no "{{"
// or "}}" survives, however long the run.
func splitBraces(text string) string {
	if !strings.Contains(text, "{{") && !strings.Contains(text, "}}") {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + 8)
	var prev rune
	for _, r := range text {
		if (r == '{' || r == '}') && r == prev {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}
