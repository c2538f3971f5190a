package dto

// GenerateQuestionsRequest is the payload of POST /ai/generate-questions.
type GenerateQuestionsRequest struct {
	Subject      string `json:"subject" validate:"required,max=120"`
	Difficulty   int    `json:"difficulty" validate:"required,min=1,max=5"`
	Count        int    `json:"count" validate:"required,min=1,max=50"`
	QuestionType string `json:"question_type" validate:"omitempty,oneof=single_choice multiple_choice true_false fill_blank short_answer"`
}

// SmartGradingRequest is the payload of POST /ai/smart-grading.
type SmartGradingRequest struct {
	QuestionContent string  `json:"question_content" validate:"required,max=4000"`
	StandardAnswer  string  `json:"standard_answer" validate:"required,max=4000"`
	StudentAnswer   string  `json:"student_answer" validate:"max=4000"`
	QuestionType    string  `json:"question_type" validate:"omitempty,oneof=single_choice multiple_choice true_false fill_blank short_answer"`
	MaxScore        float64 `json:"max_score" validate:"omitempty,gt=0,lte=1000"`
}

// RecommendationRequest is the payload of POST /ai/recommendations.
type RecommendationRequest struct {
	Subject    string   `json:"subject" validate:"required,max=120"`
	StudyLevel string   `json:"study_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Accuracy   float64  `json:"accuracy" validate:"gte=0,lte=100"`
	WeakPoints []string `json:"weak_points" validate:"max=20,dive,required,max=120"`
	Count      int      `json:"count" validate:"omitempty,min=1,max=20"`
}

// LearningPathRequest is the payload of POST /ai/learning-path.
type LearningPathRequest struct {
	TargetSkill  string  `json:"target_skill" validate:"required,max=120"`
	CurrentLevel string  `json:"current_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	WeeklyHours  float64 `json:"weekly_hours" validate:"omitempty,gt=0,lte=168"`
}

// ErrorAnalysisRequest is the payload of POST /ai/error-analysis.
type ErrorAnalysisRequest struct {
	QuestionContent string `json:"question_content" validate:"required,max=4000"`
	UserAnswer      string `json:"user_answer" validate:"max=4000"`
	CorrectAnswer   string `json:"correct_answer" validate:"required,max=4000"`
	Subject         string `json:"subject" validate:"max=120"`
}

// MotivationRequest is the payload of POST /ai/motivation.
type MotivationRequest struct {
	LearningStatus string   `json:"learning_status" validate:"max=500"`
	Difficulties   []string `json:"difficulties" validate:"max=20,dive,max=200"`
	Goals          []string `json:"goals" validate:"max=20,dive,max=200"`
	Achievements   []string `json:"achievements" validate:"max=20,dive,max=200"`
}

// LearningStyleRequest is the payload of POST /ai/learning-style.
type LearningStyleRequest struct {
	StudyMinutes           int            `json:"study_minutes" validate:"gte=0"`
	Accuracy               float64        `json:"accuracy" validate:"gte=0,lte=100"`
	LearningDays           int            `json:"learning_days" validate:"gte=0"`
	LearningMode           string         `json:"learning_mode" validate:"max=40"`
	ReviewFrequency        int            `json:"review_frequency" validate:"gte=0"`
	QuestionTypePreference map[string]int `json:"question_type_preference" validate:"max=10,dive,keys,max=40,endkeys,gte=0"`
}

// AbilityAssessmentRequest is the payload of POST /ai/ability-assessment.
type AbilityAssessmentRequest struct {
	StudyMinutes       int            `json:"study_minutes" validate:"gte=0"`
	QuestionsCompleted int            `json:"questions_completed" validate:"gte=0"`
	Accuracy           float64        `json:"accuracy" validate:"gte=0,lte=100"`
	Subjects           []string       `json:"subjects" validate:"max=20,dive,max=120"`
	WrongDistribution  map[string]int `json:"wrong_distribution" validate:"max=20,dive,keys,max=120,endkeys,gte=0"`
}

// ExamGenerationRequest is the payload of POST /ai/generate-exam.
type ExamGenerationRequest struct {
	Subject      string         `json:"subject" validate:"required,max=120"`
	Difficulty   int            `json:"difficulty" validate:"required,min=1,max=5"`
	ExamType     string         `json:"exam_type" validate:"max=40"`
	Distribution map[string]int `json:"distribution" validate:"dive,keys,oneof=single_choice multiple_choice true_false fill_blank short_answer,endkeys,gte=0,lte=50"`
}

// LearningReportRequest is the payload of POST /ai/learning-report.
type LearningReportRequest struct {
	StudyMinutes      int      `json:"study_minutes" validate:"gte=0"`
	QuestionsAnswered int      `json:"questions_answered" validate:"gte=0"`
	Accuracy          float64  `json:"accuracy" validate:"gte=0,lte=100"`
	WeakSubjects      []string `json:"weak_subjects" validate:"max=20,dive,max=120"`
}

// AIResultMeta carries provenance for an orchestrated payload.
type AIResultMeta struct {
	Operation   string      `json:"operation"`
	Source      string      `json:"source"`
	Provider    string      `json:"provider,omitempty"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	Attempts    []AIAttempt `json:"attempts"`
}

// AIAttempt summarises one provider attempt.
type AIAttempt struct {
	Provider  string  `json:"provider"`
	Outcome   string  `json:"outcome"`
	Pass      int     `json:"pass"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// AIResponse is what the service hands to handlers.
type AIResponse struct {
	Data interface{}
	Meta AIResultMeta
}
