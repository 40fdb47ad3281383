package activation

import (
	"strings"

	"github.com/andywolf/skillkit/internal/skills"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var tierHeadings = map[skills.Priority]string{
	skills.PriorityCritical: "⚠️ CRITICAL SKILLS (REQUIRED):",
	skills.PriorityHigh:     "📚 RECOMMENDED SKILLS:",
	skills.PriorityMedium:   "💡 SUGGESTED SKILLS:",
	skills.PriorityLow:      "📌 OPTIONAL SKILLS:",
}

// Render formats a report as the text block injected into the host prompt.
// A nil report renders as the empty string.
func Render(r *Report) string {
	if r == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(divider + "\n")
	sb.WriteString("🎯 SKILL ACTIVATION CHECK\n")
	sb.WriteString(divider + "\n\n")

	if r.Recommendation != nil {
		sb.WriteString("💡 DEFAULT WORKFLOW RECOMMENDATION:\n")
		sb.WriteString("  → " + r.Recommendation.Skill + "\n")
		if r.Recommendation.Reason != "" {
			sb.WriteString("    (" + r.Recommendation.Reason + ")\n")
		}
		sb.WriteString("\n")
		sb.WriteString("TIP: /auto-workflow 커맨드로 자동 분석 실행 가능\n")
		sb.WriteString(divider + "\n")
		return sb.String()
	}

	for _, group := range r.Groups {
		sb.WriteString(tierHeadings[group.Priority] + "\n")
		for _, m := range group.Matches {
			sb.WriteString("  → " + m.Skill + "\n")
		}
		sb.WriteString("\n")
	}

	if len(r.Result.Suggestions) > 0 {
		sb.WriteString("📝 CONTEXT ENHANCEMENT:\n")
		for _, s := range r.Result.Suggestions {
			sb.WriteString("  → " + s + "\n")
		}
		sb.WriteString("\n")
	}

	if r.EnhancedPrompt != "" {
		sb.WriteString("🚀 ENHANCED PROMPT:\n")
		sb.WriteString(r.EnhancedPrompt + "\n\n")
		sb.WriteString("ACTION: Use the enhanced prompt above\n")
	} else {
		sb.WriteString("ACTION: Use Skill tool BEFORE responding\n")
	}
	sb.WriteString(divider + "\n")
	return sb.String()
}
