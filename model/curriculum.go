package model

// Activity types within a lesson plan
const (
	ActivityInstruction = "instruction"
	ActivityPractice    = "practice"
	ActivityAssessment  = "assessment"
	ActivityEnrichment  = "enrichment"
)

// CurriculumActivity is a single activity inside a lesson plan.
type CurriculumActivity struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // instruction, practice, assessment, enrichment
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Materials   []string `json:"materials,omitempty"`
}

// CurriculumResource is supplementary material attached to a lesson plan.
type CurriculumResource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Type  string `json:"type"` // video, article, interactive
}

// LessonPlan is one ordered lesson within a curriculum unit.
type LessonPlan struct {
	Title              string               `json:"title"`
	Objective          string               `json:"objective"`
	Duration           string               `json:"duration"`
	Activities         []CurriculumActivity `json:"activities"`
	AssessmentCriteria []string             `json:"assessmentCriteria"`
	Extensions         []string             `json:"extensions,omitempty"`
	Resources          []CurriculumResource `json:"resources,omitempty"`
}

// CurriculumContent is the full generated curriculum unit. It is built from
// the generator's text output, validated, then persisted once as an
// immutable draft document inside Lesson.Content.
type CurriculumContent struct {
	Topic              string       `json:"topic"`
	GradeLevel         string       `json:"gradeLevel"`
	Difficulty         string       `json:"difficulty"`
	Overview           string       `json:"overview"`
	LearningObjectives []string     `json:"learningObjectives"`
	Prerequisites      []string     `json:"prerequisites,omitempty"`
	LessonPlans        []LessonPlan `json:"lessonPlans"`
	TotalDuration      string       `json:"totalDuration"`
	Standards          []string     `json:"standards,omitempty"`
}
