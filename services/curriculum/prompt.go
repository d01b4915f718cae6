package curriculum

import (
	"fmt"
	"math"
	"strings"

	"github.com/klatt42/gifted-tudor/model"
)

var difficultyDescriptions = map[string]string{
	model.DifficultyStandard:  "grade-appropriate content",
	model.DifficultyAdvanced:  "1-2 grades above the current level, more challenging problems",
	model.DifficultyChallenge: "highly accelerated content, complex problem-solving, research components",
}

// LessonPlanCount is the number of lessons requested for a unit of the
// given length: three per week, partial weeks rounded up.
func LessonPlanCount(durationWeeks float64) int {
	if durationWeeks <= 0 {
		durationWeeks = 1
	}
	return int(math.Ceil(durationWeeks * 3))
}

// BuildPrompt renders the curriculum generation prompt. The template is
// deterministic: the same request always produces the same prompt text.
func BuildPrompt(req GenerateRequest) string {
	duration := req.DurationWeeks
	if duration <= 0 {
		duration = 1
	}

	topicLine := "- Generate an age-appropriate, engaging topic"
	if req.Topic != "" {
		topicLine = fmt.Sprintf("- Specific Topic: %s", req.Topic)
	}

	interestContext := ""
	if len(req.Interests) > 0 {
		interestContext = fmt.Sprintf(
			"The student has shown interest in: %s. Try to incorporate these interests where relevant.",
			strings.Join(req.Interests, ", "))
	}

	var b strings.Builder
	b.WriteString("You are an expert curriculum designer specializing in gifted and talented education. Create a detailed, engaging curriculum unit for a gifted student.\n\n")
	b.WriteString("Student Profile:\n")
	fmt.Fprintf(&b, "- Grade Level: %s\n", req.Grade)
	fmt.Fprintf(&b, "- Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "- Difficulty Preference: %s (%s)\n", req.DifficultyPreference, difficultyDescriptions[req.DifficultyPreference])
	fmt.Fprintf(&b, "- Duration: %g week(s)\n", duration)
	b.WriteString(topicLine + "\n")
	if interestContext != "" {
		b.WriteString(interestContext + "\n")
	}
	b.WriteString(`
Requirements:
1. Create a curriculum unit that challenges a gifted learner
2. Include hands-on activities and project-based learning
3. Incorporate critical thinking and problem-solving
4. Allow for student choice and creativity
5. Include extension activities for those who finish early
6. Align with common core or state standards where applicable

Generate a comprehensive curriculum response in the following JSON format:
{
`)
	fmt.Fprintf(&b, `  "topic": "specific topic title",
  "gradeLevel": "%s",
  "difficulty": "%s",
`, req.Grade, req.DifficultyPreference)
	b.WriteString(`  "overview": "2-3 sentence overview of the unit",
  "learningObjectives": ["objective 1", "objective 2", ...],
  "prerequisites": ["skill 1", "skill 2", ...],
  "lessonPlans": [
    {
      "title": "Lesson title",
      "objective": "What students will learn",
      "duration": "45 minutes",
      "activities": [
        {
          "name": "Activity name",
          "type": "instruction|practice|assessment|enrichment",
          "description": "Detailed description",
          "duration": "10 minutes",
          "materials": ["material 1", "material 2"]
        }
      ],
      "assessmentCriteria": ["criterion 1", "criterion 2"],
      "extensions": ["extension activity 1"],
      "resources": [{"title": "Resource name", "type": "video|article|interactive", "url": "optional url"}]
    }
  ],
  "totalDuration": "X hours over Y weeks",
  "standards": ["Standard 1", "Standard 2"]
}

`)
	fmt.Fprintf(&b, "Generate %d lesson plans for this unit. Each lesson should build on the previous one.\n", LessonPlanCount(duration))
	b.WriteString("Respond ONLY with the JSON object, no additional text.")

	return b.String()
}
