package ai

// Question types accepted in generated questions.
const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionFillBlank      = "fill_blank"
	QuestionShortAnswer    = "short_answer"
)

// QuestionTypes lists the accepted question types in canonical order.
func QuestionTypes() []string {
	return []string{QuestionSingleChoice, QuestionMultipleChoice, QuestionTrueFalse, QuestionFillBlank, QuestionShortAnswer}
}

func questionFields() []Field {
	return []Field{
		required("content", str()),
		required("questionType", oneOf(QuestionTypes()...)),
		optional("options", stringList()),
		required("answer", str()),
		required("explanation", str()),
		required("difficulty", integerIn(1, 5)),
		optional("tags", stringList()),
	}
}

var shapes = map[OpType]Node{
	OpGenerateQuestions: arrayOf(object(questionFields()...), 1),

	OpSmartGrading: object(
		required("score", numberAtLeast(0)),
		required("accuracyScore", numberIn(0, 100)),
		required("logicScore", numberIn(0, 100)),
		required("expressionScore", numberIn(0, 100)),
		required("creativityScore", numberIn(0, 100)),
		required("feedback", object(
			required("strengths", stringList()),
			required("weaknesses", stringList()),
			required("suggestions", stringList()),
		)),
		required("encouragement", str()),
	),

	OpRecommendation: object(
		required("items", arrayOf(object(
			required("topic", str()),
			required("reason", str()),
			required("difficulty", integerIn(1, 5)),
			required("priority", oneOf("high", "medium", "low")),
		), 1)),
		required("difficultyAdjustment", oneOf("increase", "maintain", "decrease")),
		required("summary", str()),
	),

	OpPathPlanning: object(
		required("pathName", str()),
		required("description", str()),
		required("estimatedHours", numberAtLeast(0)),
		required("difficulty", oneOf("beginner", "intermediate", "advanced")),
		required("stages", arrayOf(object(
			required("name", str()),
			required("duration", str()),
			required("goals", stringList()),
			required("resources", stringList()),
		), 1)),
	),

	OpErrorAnalysis: object(
		required("errorType", oneOf("conceptual", "calculation", "careless", "comprehension", "method")),
		required("rootCause", str()),
		required("explanation", str()),
		required("correctApproach", str()),
		required("reviewSuggestions", stringList()),
		optional("similarQuestions", stringList()),
	),

	OpMotivationPlan: object(
		required("achievementRecognition", stringList()),
		required("goalSetting", stringList()),
		required("challengeIncentives", stringList()),
		required("emotionalSupport", stringList()),
		required("encouragementMessage", str()),
	),

	OpStyleAnalysis: object(
		required("styleType", oneOf("visual", "auditory", "reading", "kinesthetic", "balanced")),
		required("characteristics", stringList()),
		required("learningSuggestions", stringList()),
		required("studyMethods", stringList()),
	),

	OpAbilityAssessment: object(
		required("knowledgeMastery", numberIn(0, 100)),
		required("problemSolving", numberIn(0, 100)),
		required("concentration", numberIn(0, 100)),
		required("knowledgeTransfer", numberIn(0, 100)),
		required("learningEfficiency", numberIn(0, 100)),
		required("overallLevel", oneOf("beginner", "intermediate", "advanced", "expert")),
		required("improvementSuggestions", stringList()),
	),

	OpExamGeneration: object(
		required("title", str()),
		required("subject", str()),
		required("difficulty", integerIn(1, 5)),
		required("durationMinutes", integerAtLeast(1)),
		required("totalScore", numberAtLeast(0)),
		required("questions", arrayOf(object(append(questionFields(), required("score", numberAtLeast(0)))...), 1)),
	),

	OpLearningReport: object(
		required("summary", str()),
		required("performanceLevel", oneOf("excellent", "good", "average", "needs_improvement")),
		required("strengths", stringList()),
		required("improvements", stringList()),
		required("nextDayTasks", arrayOf(object(
			required("title", str()),
			required("minutes", integerAtLeast(1)),
		), 0)),
	),
}

// ShapeFor returns the declared output shape of op.
func ShapeFor(op OpType) (Node, bool) {
	node, ok := shapes[op]
	return node, ok
}

// Question is one generated question.
type Question struct {
	Content      string   `json:"content"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options,omitempty"`
	Answer       string   `json:"answer"`
	Explanation  string   `json:"explanation"`
	Difficulty   int      `json:"difficulty"`
	Tags         []string `json:"tags,omitempty"`
}

// GradingFeedback groups the qualitative grading notes.
type GradingFeedback struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// GradingResult is the smart grading payload.
type GradingResult struct {
	Score           float64         `json:"score"`
	AccuracyScore   float64         `json:"accuracyScore"`
	LogicScore      float64         `json:"logicScore"`
	ExpressionScore float64         `json:"expressionScore"`
	CreativityScore float64         `json:"creativityScore"`
	Feedback        GradingFeedback `json:"feedback"`
	Encouragement   string          `json:"encouragement"`
}

// RecommendationItem is one recommended study topic.
type RecommendationItem struct {
	Topic      string `json:"topic"`
	Reason     string `json:"reason"`
	Difficulty int    `json:"difficulty"`
	Priority   string `json:"priority"`
}

// Recommendation is the recommendation payload.
type Recommendation struct {
	Items                []RecommendationItem `json:"items"`
	DifficultyAdjustment string               `json:"difficultyAdjustment"`
	Summary              string               `json:"summary"`
}

// PathStage is one stage of a learning path.
type PathStage struct {
	Name      string   `json:"name"`
	Duration  string   `json:"duration"`
	Goals     []string `json:"goals"`
	Resources []string `json:"resources"`
}

// LearningPath is the path planning payload.
type LearningPath struct {
	PathName       string      `json:"pathName"`
	Description    string      `json:"description"`
	EstimatedHours float64     `json:"estimatedHours"`
	Difficulty     string      `json:"difficulty"`
	Stages         []PathStage `json:"stages"`
}

// ErrorAnalysis is the mistake analysis payload.
type ErrorAnalysis struct {
	ErrorType         string   `json:"errorType"`
	RootCause         string   `json:"rootCause"`
	Explanation       string   `json:"explanation"`
	CorrectApproach   string   `json:"correctApproach"`
	ReviewSuggestions []string `json:"reviewSuggestions"`
	SimilarQuestions  []string `json:"similarQuestions,omitempty"`
}

// MotivationPlan is the motivation payload.
type MotivationPlan struct {
	AchievementRecognition []string `json:"achievementRecognition"`
	GoalSetting            []string `json:"goalSetting"`
	ChallengeIncentives    []string `json:"challengeIncentives"`
	EmotionalSupport       []string `json:"emotionalSupport"`
	EncouragementMessage   string   `json:"encouragementMessage"`
}

// LearningStyle is the style analysis payload.
type LearningStyle struct {
	StyleType           string   `json:"styleType"`
	Characteristics     []string `json:"characteristics"`
	LearningSuggestions []string `json:"learningSuggestions"`
	StudyMethods        []string `json:"studyMethods"`
}

// AbilityAssessment is the ability assessment payload.
type AbilityAssessment struct {
	KnowledgeMastery       float64  `json:"knowledgeMastery"`
	ProblemSolving         float64  `json:"problemSolving"`
	Concentration          float64  `json:"concentration"`
	KnowledgeTransfer      float64  `json:"knowledgeTransfer"`
	LearningEfficiency     float64  `json:"learningEfficiency"`
	OverallLevel           string   `json:"overallLevel"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

// ExamQuestion is a question with its score weight.
type ExamQuestion struct {
	Question
	Score float64 `json:"score"`
}

// Exam is the exam generation payload.
type Exam struct {
	Title           string         `json:"title"`
	Subject         string         `json:"subject"`
	Difficulty      int            `json:"difficulty"`
	DurationMinutes int            `json:"durationMinutes"`
	TotalScore      float64        `json:"totalScore"`
	Questions       []ExamQuestion `json:"questions"`
}

// ReportTask is one suggested task for the next study day.
type ReportTask struct {
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
}

// LearningReport is the learning report payload.
type LearningReport struct {
	Summary          string       `json:"summary"`
	PerformanceLevel string       `json:"performanceLevel"`
	Strengths        []string     `json:"strengths"`
	Improvements     []string     `json:"improvements"`
	NextDayTasks     []ReportTask `json:"nextDayTasks"`
}
