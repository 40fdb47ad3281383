package activation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// SkipEnhanceEnv is set for the enhancer subprocess so that the activation
// hook it triggers in turn does not recurse.
const SkipEnhanceEnv = "SKIP_PROMPT_ENHANCE"

// Enhancer rewrites a prompt. Failures are never fatal to an activation check.
type Enhancer interface {
	Enhance(ctx context.Context, prompt, workDir string) (string, error)
}

// CommandEnhancer asks an external CLI (by default `claude --print`) to
// rewrite the prompt, bounded by Timeout.
type CommandEnhancer struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Enhance runs the command with the rewrite instruction as its final
// argument and returns trimmed stdout.
func (e *CommandEnhancer) Enhance(ctx context.Context, prompt, workDir string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(e.Args)+1)
	args = append(args, e.Args...)
	args = append(args, enhanceInstruction(prompt))

	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), SkipEnhanceEnv+"=1")

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return "", fmt.Errorf("prompt enhancer timed out: %w", ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("prompt enhancer failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func enhanceInstruction(prompt string) string {
	return "prompt-enhancer 스킬을 사용하여 다음 프롬프트를 개선해주세요.\n" +
		"개선된 프롬프트만 간결하게 출력하세요. 설명 없이 개선된 프롬프트 텍스트만 출력.\n\n" +
		"원본 프롬프트: " + prompt
}
