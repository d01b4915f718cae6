package curriculum

import (
	"strings"
	"testing"

	"github.com/klatt42/gifted-tudor/model"
	"github.com/stretchr/testify/assert"
)

func TestLessonPlanCount(t *testing.T) {
	cases := []struct {
		weeks float64
		want  int
	}{
		{1, 3},
		{2, 6},
		{0.5, 2},  // ceil(1.5)
		{1.5, 5},  // ceil(4.5)
		{4, 12},
		{0, 3},  // defaults to one week
		{-2, 3}, // defaults to one week
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, LessonPlanCount(tc.weeks), "weeks=%v", tc.weeks)
	}
}

func TestBuildPromptStudentProfile(t *testing.T) {
	prompt := BuildPrompt(GenerateRequest{
		Subject:              "math",
		Grade:                "5",
		DifficultyPreference: model.DifficultyChallenge,
		DurationWeeks:        2,
	})

	assert.Contains(t, prompt, "- Grade Level: 5")
	assert.Contains(t, prompt, "- Subject: math")
	assert.Contains(t, prompt, "- Difficulty Preference: challenge (highly accelerated content, complex problem-solving, research components)")
	assert.Contains(t, prompt, "- Duration: 2 week(s)")
	assert.Contains(t, prompt, "Generate 6 lesson plans for this unit.")
	assert.True(t, strings.HasSuffix(prompt, "Respond ONLY with the JSON object, no additional text."))
}

func TestBuildPromptTopicLine(t *testing.T) {
	withTopic := BuildPrompt(GenerateRequest{
		Subject:              "science",
		Grade:                "7",
		DifficultyPreference: model.DifficultyStandard,
		Topic:                "plate tectonics",
	})
	assert.Contains(t, withTopic, "- Specific Topic: plate tectonics")
	assert.NotContains(t, withTopic, "Generate an age-appropriate, engaging topic")

	withoutTopic := BuildPrompt(GenerateRequest{
		Subject:              "science",
		Grade:                "7",
		DifficultyPreference: model.DifficultyStandard,
	})
	assert.Contains(t, withoutTopic, "- Generate an age-appropriate, engaging topic")
}

func TestBuildPromptInterests(t *testing.T) {
	prompt := BuildPrompt(GenerateRequest{
		Subject:              "ela",
		Grade:                "4",
		DifficultyPreference: model.DifficultyAdvanced,
		Interests:            []string{"dinosaurs", "space"},
	})
	assert.Contains(t, prompt, "The student has shown interest in: dinosaurs, space.")

	none := BuildPrompt(GenerateRequest{
		Subject:              "ela",
		Grade:                "4",
		DifficultyPreference: model.DifficultyAdvanced,
	})
	assert.NotContains(t, none, "has shown interest in")
}

func TestBuildPromptSchemaEchoesRequest(t *testing.T) {
	prompt := BuildPrompt(GenerateRequest{
		Subject:              "math",
		Grade:                "8",
		DifficultyPreference: model.DifficultyAdvanced,
	})

	// The target schema interpolates the request's grade and difficulty so
	// the model echoes them back verbatim.
	assert.Contains(t, prompt, `"gradeLevel": "8",`)
	assert.Contains(t, prompt, `"difficulty": "advanced",`)
}

func TestBuildPromptDeterministic(t *testing.T) {
	req := GenerateRequest{
		Subject:              "math",
		Grade:                "6",
		DifficultyPreference: model.DifficultyStandard,
		Topic:                "fractions",
		DurationWeeks:        1.5,
		Interests:            []string{"baseball"},
	}

	assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
}
