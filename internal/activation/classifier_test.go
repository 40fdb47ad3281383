package activation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/andywolf/skillkit/internal/config"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(config.Default().Activation)

	tests := []struct {
		name     string
		prompt   string
		workflow Workflow
		skill    string
	}{
		{
			name:     "simple marker",
			prompt:   "간단한 작업 하나 처리해줘",
			workflow: WorkflowSequential,
			skill:    "sequential-task-processor",
		},
		{
			name:     "parallel marker on a short prompt",
			prompt:   "여러 작업을 병렬로 처리해줘",
			workflow: WorkflowParallel,
			skill:    "parallel-task-executor",
		},
		{
			name:     "simple marker outranks parallel marker",
			prompt:   "simple change applied to all services in parallel",
			workflow: WorkflowSequential,
			skill:    "sequential-task-processor",
		},
		{
			name:     "short prompt without markers",
			prompt:   "rename the helper function please",
			workflow: WorkflowSequential,
			skill:    "sequential-task-processor",
		},
		{
			name:     "complex marker",
			prompt:   "refactor the entire authentication flow so that tokens rotate",
			workflow: WorkflowOrchestrated,
			skill:    "dynamic-task-orchestrator",
		},
		{
			name:     "long prompt",
			prompt:   strings.Repeat("make the report nicer ", 10),
			workflow: WorkflowOrchestrated,
			skill:    "dynamic-task-orchestrator",
		},
		{
			name:     "medium prompt without markers",
			prompt:   "update the billing page so that invoices show the tax line",
			workflow: WorkflowDefault,
			skill:    "agent-workflow-manager",
		},
		{
			name:     "markers are case-insensitive",
			prompt:   "Run them CONCURRENT",
			workflow: WorkflowParallel,
			skill:    "parallel-task-executor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.Classify(tt.prompt)
			assert.Equal(t, tt.workflow, rec.Workflow)
			assert.Equal(t, tt.skill, rec.Skill)
			assert.NotEmpty(t, rec.Reason)
		})
	}
}

func TestClassify_LengthCountsRunes(t *testing.T) {
	c := NewClassifier(config.Default().Activation)

	// 40 Hangul syllables: 120 bytes, but under the 50-rune threshold.
	prompt := strings.Repeat("가나다라마바사아자차", 4)
	assert.Equal(t, WorkflowSequential, c.Classify(prompt).Workflow)
}

func TestClassify_ParallelMarkerOutranksShortPrompt(t *testing.T) {
	c := NewClassifier(config.Default().Activation)

	// Long enough for the fallback, short enough for the sequential rule.
	prompt := "run the lint and tests parallel"
	n := utf8.RuneCountInString(prompt)
	assert.Greater(t, n, 20)
	assert.Less(t, n, 50)

	assert.Equal(t, WorkflowParallel, c.Classify(prompt).Workflow)
	assert.Equal(t, WorkflowSequential, c.Classify("run the lint and tests in order").Workflow)
}

func TestClassify_CustomWorkflows(t *testing.T) {
	cfg := config.Default().Activation
	cfg.Workflows.Default = config.WorkflowConfig{Skill: "my-manager", Reason: "house rules"}
	c := NewClassifier(cfg)

	rec := c.Classify("update the billing page so that invoices show the tax line")
	assert.Equal(t, Recommendation{Workflow: WorkflowDefault, Skill: "my-manager", Reason: "house rules"}, rec)
}

func TestProperty_ClassifyYieldsKnownWorkflow(t *testing.T) {
	c := NewClassifier(config.Default().Activation)
	known := map[Workflow]string{
		WorkflowSequential:   "sequential-task-processor",
		WorkflowParallel:     "parallel-task-executor",
		WorkflowOrchestrated: "dynamic-task-orchestrator",
		WorkflowDefault:      "agent-workflow-manager",
	}

	rapid.Check(t, func(rt *rapid.T) {
		prompt := rapid.String().Draw(rt, "prompt")
		rec := c.Classify(prompt)

		skill, ok := known[rec.Workflow]
		if !ok {
			rt.Fatalf("unknown workflow %q", rec.Workflow)
		}
		if rec.Skill != skill {
			rt.Fatalf("workflow %s paired with skill %s", rec.Workflow, rec.Skill)
		}
	})
}
