package tutor

import (
	"strings"
	"testing"

	"github.com/klatt42/gifted-tudor/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPromptBasics(t *testing.T) {
	prompt := BuildSystemPrompt(PromptContext{
		StudentName: "Ada",
		GradeLevel:  "5",
	})

	assert.Contains(t, prompt, `named "Tudor" working with Ada, a gifted 5 student`)
	assert.Contains(t, prompt, "Use the Socratic Method")
	assert.Contains(t, prompt, "Use Markdown Formatting")
	assert.True(t, strings.HasSuffix(prompt,
		"Remember: Your goal is to help Ada become a confident, independent learner who loves to explore and discover."))
}

func TestBuildSystemPromptDifficultyNote(t *testing.T) {
	challenge := BuildSystemPrompt(PromptContext{
		StudentName:          "Ada",
		GradeLevel:           "5",
		DifficultyPreference: model.DifficultyChallenge,
	})
	assert.Contains(t, challenge, "Ada is a gifted learner who enjoys challenging problems.")

	advanced := BuildSystemPrompt(PromptContext{
		StudentName:          "Ada",
		GradeLevel:           "5",
		DifficultyPreference: model.DifficultyAdvanced,
	})
	assert.Contains(t, advanced, "Ada is a gifted learner working at an advanced level.")

	standard := BuildSystemPrompt(PromptContext{
		StudentName:          "Ada",
		GradeLevel:           "5",
		DifficultyPreference: model.DifficultyStandard,
	})
	assert.Contains(t, standard, "Ada is a gifted learner. Provide appropriately challenging")
}

func TestBuildSystemPromptContextLines(t *testing.T) {
	full := BuildSystemPrompt(PromptContext{
		StudentName:  "Ben",
		GradeLevel:   "7",
		Subject:      "math",
		CurrentTopic: "linear equations",
	})
	assert.Contains(t, full, "Current Subject: math\n")
	assert.Contains(t, full, "Current Topic: linear equations\n")

	bare := BuildSystemPrompt(PromptContext{
		StudentName: "Ben",
		GradeLevel:  "7",
	})
	assert.NotContains(t, bare, "Current Subject:")
	assert.NotContains(t, bare, "Current Topic:")
}
