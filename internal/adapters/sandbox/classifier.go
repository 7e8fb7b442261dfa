package sandbox

import (
	"path/filepath"
	"strings"

	"github.com/zhangyunhao116/agentbox"
	"go.trai.ch/guard/internal/core/domain"
)

const ruleRunnable = "guard-runnable-commands"

// Classifier admits only the commands a stage policy lists as runnable.
type Classifier struct {
	all      bool
	runnable map[string]struct{}
}

// NewClassifier creates a Classifier for policy.
func NewClassifier(policy domain.SandboxPolicy) *Classifier {
	c := &Classifier{
		all:      policy.AllCommands,
		runnable: make(map[string]struct{}, len(policy.RunnableCmds)),
	}
	for _, name := range policy.RunnableCmds {
		c.runnable[commandKey(name)] = struct{}{}
	}
	return c
}

// Classify inspects the first word of a shell command string.
func (c *Classifier) Classify(command string) agentbox.ClassifyResult {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return agentbox.ClassifyResult{Decision: agentbox.Forbidden, Reason: "empty command", Rule: ruleRunnable}
	}
	return c.ClassifyArgs(fields[0], fields[1:])
}

// ClassifyArgs admits name when it is runnable in this stage.
func (c *Classifier) ClassifyArgs(name string, _ []string) agentbox.ClassifyResult {
	if c.all {
		return agentbox.ClassifyResult{Decision: agentbox.Sandboxed, Rule: ruleRunnable}
	}
	if _, ok := c.runnable[commandKey(name)]; ok {
		return agentbox.ClassifyResult{Decision: agentbox.Sandboxed, Rule: ruleRunnable}
	}
	return agentbox.ClassifyResult{
		Decision: agentbox.Forbidden,
		Reason:   name + " is not a runnable command for this stage",
		Rule:     ruleRunnable,
	}
}

func commandKey(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
