package ai

import (
	"math"
	"strings"
)

const (
	// MaxQuestionCount bounds generated questions per request.
	MaxQuestionCount = 50
	// MaxRecommendationCount bounds recommended topics per request.
	MaxRecommendationCount = 20

	defaultRecommendationCount = 5
	defaultMaxScore            = 10
	defaultWeeklyHours         = 5
	defaultExamType            = "practice"
)

// GenerateQuestionsInput are the arguments of GenerateQuestions.
type GenerateQuestionsInput struct {
	Subject      string
	Difficulty   int
	Count        int
	QuestionType string
}

func (in *GenerateQuestionsInput) normalize() error {
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return invalidInput("subject is required")
	}
	if in.Difficulty < 1 || in.Difficulty > 5 {
		return invalidInput("difficulty must be between 1 and 5")
	}
	if in.Count < 1 || in.Count > MaxQuestionCount {
		return invalidInput("count must be between 1 and %d", MaxQuestionCount)
	}
	if in.QuestionType == "" {
		in.QuestionType = QuestionSingleChoice
	}
	if !containsString(QuestionTypes(), in.QuestionType) {
		return invalidInput("unsupported question type %q", in.QuestionType)
	}
	return nil
}

func (in GenerateQuestionsInput) params() Params {
	return Params{
		{Name: "subject", Value: in.Subject},
		{Name: "difficulty", Value: in.Difficulty},
		{Name: "count", Value: in.Count},
		{Name: "question_type", Value: in.QuestionType},
	}
}

// SmartGradingInput are the arguments of SmartGrading.
type SmartGradingInput struct {
	QuestionContent string
	StandardAnswer  string
	StudentAnswer   string
	QuestionType    string
	MaxScore        float64
}

func (in *SmartGradingInput) normalize() error {
	if strings.TrimSpace(in.QuestionContent) == "" {
		return invalidInput("question content is required")
	}
	if strings.TrimSpace(in.StandardAnswer) == "" {
		return invalidInput("standard answer is required")
	}
	if in.QuestionType == "" {
		in.QuestionType = QuestionShortAnswer
	}
	if in.MaxScore == 0 {
		in.MaxScore = defaultMaxScore
	}
	if in.MaxScore < 0 || !finite(in.MaxScore) {
		return invalidInput("max score must be a positive number")
	}
	return nil
}

func (in SmartGradingInput) params() Params {
	return Params{
		{Name: "question_content", Value: in.QuestionContent},
		{Name: "standard_answer", Value: in.StandardAnswer},
		{Name: "student_answer", Value: in.StudentAnswer},
		{Name: "question_type", Value: in.QuestionType},
		{Name: "max_score", Value: in.MaxScore},
	}
}

// RecommendationInput are the arguments of Recommend.
type RecommendationInput struct {
	Subject    string
	StudyLevel string
	Accuracy   float64
	WeakPoints []string
	Count      int
}

func (in *RecommendationInput) normalize() error {
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return invalidInput("subject is required")
	}
	if in.StudyLevel == "" {
		in.StudyLevel = "beginner"
	}
	if err := checkAccuracy(in.Accuracy); err != nil {
		return err
	}
	if in.Count == 0 {
		in.Count = defaultRecommendationCount
	}
	if in.Count < 1 || in.Count > MaxRecommendationCount {
		return invalidInput("count must be between 1 and %d", MaxRecommendationCount)
	}
	in.WeakPoints = nonNil(in.WeakPoints)
	return nil
}

func (in RecommendationInput) params() Params {
	return Params{
		{Name: "subject", Value: in.Subject},
		{Name: "study_level", Value: in.StudyLevel},
		{Name: "accuracy", Value: in.Accuracy},
		{Name: "weak_points", Value: in.WeakPoints},
		{Name: "count", Value: in.Count},
	}
}

// PathPlanningInput are the arguments of PlanLearningPath.
type PathPlanningInput struct {
	TargetSkill  string
	CurrentLevel string
	WeeklyHours  float64
}

func (in *PathPlanningInput) normalize() error {
	in.TargetSkill = strings.TrimSpace(in.TargetSkill)
	if in.TargetSkill == "" {
		return invalidInput("target skill is required")
	}
	if in.CurrentLevel == "" {
		in.CurrentLevel = "beginner"
	}
	if !containsString([]string{"beginner", "intermediate", "advanced"}, in.CurrentLevel) {
		return invalidInput("current level must be beginner, intermediate or advanced")
	}
	if in.WeeklyHours == 0 {
		in.WeeklyHours = defaultWeeklyHours
	}
	if in.WeeklyHours < 0 || !finite(in.WeeklyHours) {
		return invalidInput("weekly hours must be a positive number")
	}
	return nil
}

func (in PathPlanningInput) params() Params {
	return Params{
		{Name: "target_skill", Value: in.TargetSkill},
		{Name: "current_level", Value: in.CurrentLevel},
		{Name: "weekly_hours", Value: in.WeeklyHours},
	}
}

// ErrorAnalysisInput are the arguments of AnalyzeError.
type ErrorAnalysisInput struct {
	QuestionContent string
	UserAnswer      string
	CorrectAnswer   string
	Subject         string
}

func (in *ErrorAnalysisInput) normalize() error {
	if strings.TrimSpace(in.QuestionContent) == "" {
		return invalidInput("question content is required")
	}
	if strings.TrimSpace(in.CorrectAnswer) == "" {
		return invalidInput("correct answer is required")
	}
	return nil
}

func (in ErrorAnalysisInput) params() Params {
	return Params{
		{Name: "question_content", Value: in.QuestionContent},
		{Name: "user_answer", Value: in.UserAnswer},
		{Name: "correct_answer", Value: in.CorrectAnswer},
		{Name: "subject", Value: in.Subject},
	}
}

// MotivationPlanInput are the arguments of PlanMotivation.
type MotivationPlanInput struct {
	LearningStatus string
	Difficulties   []string
	Goals          []string
	Achievements   []string
}

func (in *MotivationPlanInput) normalize() error {
	if strings.TrimSpace(in.LearningStatus) == "" {
		in.LearningStatus = "steady"
	}
	in.Difficulties = nonNil(in.Difficulties)
	in.Goals = nonNil(in.Goals)
	in.Achievements = nonNil(in.Achievements)
	return nil
}

func (in MotivationPlanInput) params() Params {
	return Params{
		{Name: "learning_status", Value: in.LearningStatus},
		{Name: "difficulties", Value: in.Difficulties},
		{Name: "goals", Value: in.Goals},
		{Name: "achievements", Value: in.Achievements},
	}
}

// StyleAnalysisInput are the arguments of AnalyzeLearningStyle.
type StyleAnalysisInput struct {
	StudyMinutes           int
	Accuracy               float64
	LearningDays           int
	LearningMode           string
	ReviewFrequency        int
	QuestionTypePreference map[string]int
}

func (in *StyleAnalysisInput) normalize() error {
	if in.StudyMinutes < 0 || in.LearningDays < 0 || in.ReviewFrequency < 0 {
		return invalidInput("study statistics must not be negative")
	}
	if err := checkAccuracy(in.Accuracy); err != nil {
		return err
	}
	if in.LearningMode == "" {
		in.LearningMode = "mixed"
	}
	in.QuestionTypePreference = nonNilCounts(in.QuestionTypePreference)
	return nil
}

func (in StyleAnalysisInput) params() Params {
	return Params{
		{Name: "study_minutes", Value: in.StudyMinutes},
		{Name: "accuracy", Value: in.Accuracy},
		{Name: "learning_days", Value: in.LearningDays},
		{Name: "learning_mode", Value: in.LearningMode},
		{Name: "review_frequency", Value: in.ReviewFrequency},
		{Name: "question_type_preference", Value: in.QuestionTypePreference},
	}
}

// AbilityAssessmentInput are the arguments of AssessAbility.
type AbilityAssessmentInput struct {
	StudyMinutes       int
	QuestionsCompleted int
	Accuracy           float64
	Subjects           []string
	WrongDistribution  map[string]int
}

func (in *AbilityAssessmentInput) normalize() error {
	if in.StudyMinutes < 0 || in.QuestionsCompleted < 0 {
		return invalidInput("study statistics must not be negative")
	}
	if err := checkAccuracy(in.Accuracy); err != nil {
		return err
	}
	in.Subjects = nonNil(in.Subjects)
	in.WrongDistribution = nonNilCounts(in.WrongDistribution)
	return nil
}

func (in AbilityAssessmentInput) params() Params {
	return Params{
		{Name: "study_minutes", Value: in.StudyMinutes},
		{Name: "questions_completed", Value: in.QuestionsCompleted},
		{Name: "accuracy", Value: in.Accuracy},
		{Name: "subjects", Value: in.Subjects},
		{Name: "wrong_distribution", Value: in.WrongDistribution},
	}
}

// ExamGenerationInput are the arguments of GenerateExam. Distribution maps a
// question type to the number of questions of that type.
type ExamGenerationInput struct {
	Subject      string
	Difficulty   int
	ExamType     string
	Distribution map[string]int
}

func (in *ExamGenerationInput) normalize() error {
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return invalidInput("subject is required")
	}
	if in.Difficulty < 1 || in.Difficulty > 5 {
		return invalidInput("difficulty must be between 1 and 5")
	}
	if in.ExamType == "" {
		in.ExamType = defaultExamType
	}
	total := 0
	for questionType, count := range in.Distribution {
		if !containsString(QuestionTypes(), questionType) {
			return invalidInput("unsupported question type %q", questionType)
		}
		if count < 0 {
			return invalidInput("question count for %s must not be negative", questionType)
		}
		total += count
	}
	if total > MaxQuestionCount {
		return invalidInput("an exam may hold at most %d questions", MaxQuestionCount)
	}
	in.Distribution = nonNilCounts(in.Distribution)
	return nil
}

func (in ExamGenerationInput) params() Params {
	return Params{
		{Name: "subject", Value: in.Subject},
		{Name: "difficulty", Value: in.Difficulty},
		{Name: "exam_type", Value: in.ExamType},
		{Name: "distribution", Value: in.Distribution},
	}
}

// LearningReportInput are the arguments of LearningReport.
type LearningReportInput struct {
	StudyMinutes      int
	QuestionsAnswered int
	Accuracy          float64
	WeakSubjects      []string
}

func (in *LearningReportInput) normalize() error {
	if in.StudyMinutes < 0 || in.QuestionsAnswered < 0 {
		return invalidInput("study statistics must not be negative")
	}
	if err := checkAccuracy(in.Accuracy); err != nil {
		return err
	}
	in.WeakSubjects = nonNil(in.WeakSubjects)
	return nil
}

func (in LearningReportInput) params() Params {
	return Params{
		{Name: "study_minutes", Value: in.StudyMinutes},
		{Name: "questions_answered", Value: in.QuestionsAnswered},
		{Name: "accuracy", Value: in.Accuracy},
		{Name: "weak_subjects", Value: in.WeakSubjects},
	}
}

func checkAccuracy(accuracy float64) error {
	if !finite(accuracy) || accuracy < 0 || accuracy > 100 {
		return invalidInput("accuracy must be between 0 and 100")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilCounts(counts map[string]int) map[string]int {
	if counts == nil {
		return map[string]int{}
	}
	return counts
}
