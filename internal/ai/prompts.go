package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/daylog/internal/domain"
)

const categorizeSystemPrompt = `You sort a person's activity log into a small taxonomy.

Rules:
- Reuse a label from "existing_categories" whenever one fits.
- Otherwise invent a short Title Case label of one or two words.
- Focused, demanding work is "Deep Work". Rest and meals are "Break".
- Label every entry.

Return ONLY a JSON object mapping each entry "id" to its label, e.g.
{"3f2a...": "Deep Work", "9c1b...": "Break"}`

type categorizeEntry struct {
	ID          string `json:"id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

type categorizePayload struct {
	ExistingCategories []string          `json:"existing_categories"`
	Entries            []categorizeEntry `json:"entries"`
}

func categorizeInput(req domain.CategorizeRequest) (string, error) {
	p := categorizePayload{
		ExistingCategories: req.RecentCategories,
		Entries:            make([]categorizeEntry, 0, len(req.Entries)),
	}
	if p.ExistingCategories == nil {
		p.ExistingCategories = []string{}
	}
	for _, e := range req.Entries {
		p.Entries = append(p.Entries, categorizeEntry{
			ID:          e.ID.String(),
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Description: e.Description,
		})
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var personas = map[domain.Tone]string{
	domain.ToneStrict: "You are a ruthless productivity auditor. Logic only. No excuses. High standards.",
	domain.ToneRoast:  "You are a sarcastic auditor. Mock the user's bad habits in a way that is funny but painfully true.",
	domain.ToneGentle: "You are a supportive life coach. Be encouraging and focus on wellbeing.",
}

// auditPrompt builds the system prompt for an audit at time now.
func auditPrompt(req domain.AuditRequest, now time.Time) string {
	persona, ok := personas[req.Tone]
	if !ok {
		persona = personas[domain.ToneStrict]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nCurrent time: %s\n\n", persona, now.Format("2006-01-02 15:04"))

	b.WriteString("Long-term goals (notebook): ")
	b.WriteString(orDefault(req.Notebook, "No long-term goals set."))
	b.WriteString("\nToday's tasks (quick note): ")
	b.WriteString(orDefault(req.QuickNote, "No specific daily tasks."))

	b.WriteString("\n\nActivity log:\n")
	if len(req.Entries) == 0 {
		b.WriteString("- nothing logged yet\n")
	}
	for _, e := range req.Entries {
		fmt.Fprintf(&b, "- %s-%s %s [%s]\n", e.StartTime, e.EndTime, e.Description, e.Category)
	}

	writeExamples(&b, "Responses the user agreed with", req.Approved)
	writeExamples(&b, "Responses the user rejected", req.Rejected)

	b.WriteString(`
Evaluate the day on alignment with the notes, efficiency (fragmentation, idle gaps)
and health (late nights, skipped meals, hours without a break). If the notes are
empty, judge against general high-performance standards.

Return ONLY a JSON object with the keys "score" (0-100 integer), "status"
("green", "yellow" or "red"), "insight" (at most 15 words) and "warning"
(a specific habit warning, or "None").`)
	return b.String()
}

func writeExamples(b *strings.Builder, title string, fs []domain.Feedback) {
	if len(fs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, f := range fs {
		fmt.Fprintf(b, "- %s\n", strings.TrimSpace(f.Response))
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
