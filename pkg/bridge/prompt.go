package bridge

import (
	"fmt"
)

// Task types understood by BuildPrompt
const (
	TaskCode     = "code"
	TaskResearch = "research"
	TaskProducts = "products"
	TaskLogic    = "logic"
)

var systemInstructions = map[string]string{
	TaskCode:     "You are an expert software engineer debugging complex issues. Provide detailed analysis with code examples.",
	TaskResearch: "You are a thorough researcher. Provide evidence-backed analysis with clear reasoning chains.",
	TaskProducts: "You are a product research specialist. Find and structure comprehensive product information.",
}

const defaultInstruction = "You are a precise reasoning engine. Provide clear, structured analysis."

// SystemInstruction returns the instruction for a task type; unknown types
// get the general reasoning instruction.
func SystemInstruction(taskType string) string {
	if s, ok := systemInstructions[taskType]; ok {
		return s
	}
	return defaultInstruction
}

// BuildPrompt prefixes a query with the instruction for its task type and,
// from the second attempt on, an escalation note.
func BuildPrompt(query string, c *Context) string {
	taskType, attempts := TaskLogic, 1
	if c != nil {
		if c.TaskType != "" {
			taskType = c.TaskType
		}
		if c.Attempts > 0 {
			attempts = c.Attempts
		}
	}

	note := ""
	if attempts > 1 {
		note = fmt.Sprintf("\n\nNOTE: This is escalation attempt #%d. Previous attempts were insufficient.", attempts)
	}

	return fmt.Sprintf("%s%s\n\nTask:\n%s", SystemInstruction(taskType), note, query)
}
