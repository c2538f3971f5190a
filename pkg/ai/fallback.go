package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// FallbackFunc synthesizes a shape-valid payload for an operation without any
// network call. It must be deterministic for the same params.
type FallbackFunc func(params Params) any

// FallbackTable maps every operation to its fallback.
type FallbackTable map[OpType]FallbackFunc

// DefaultFallbacks returns the built-in template fallbacks.
func DefaultFallbacks() FallbackTable {
	return FallbackTable{
		OpGenerateQuestions: fallbackQuestions,
		OpSmartGrading:      fallbackGrading,
		OpRecommendation:    fallbackRecommendation,
		OpPathPlanning:      fallbackLearningPath,
		OpErrorAnalysis:     fallbackErrorAnalysis,
		OpMotivationPlan:    fallbackMotivation,
		OpStyleAnalysis:     fallbackLearningStyle,
		OpAbilityAssessment: fallbackAbility,
		OpExamGeneration:    fallbackExam,
		OpLearningReport:    fallbackReport,
	}
}

// Missing returns the operations in ops with no registered fallback.
func (t FallbackTable) Missing(ops []OpType) []OpType {
	var missing []OpType
	for _, op := range ops {
		if fn, ok := t[op]; !ok || fn == nil {
			missing = append(missing, op)
		}
	}
	return missing
}

// Generate runs the fallback registered for op.
func (t FallbackTable) Generate(op OpType, params Params) any {
	fn, ok := t[op]
	if !ok || fn == nil {
		// New rejects incomplete tables, so this is unreachable for a built Orchestrator.
		panic(fmt.Sprintf("ai: no fallback registered for %s", op))
	}
	return fn(params)
}

// toTree converts a typed payload into the generic JSON tree providers produce.
func toTree(value any) any {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("ai: encode fallback payload: %v", err))
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		panic(fmt.Sprintf("ai: decode fallback payload: %v", err))
	}
	return tree
}

func fallbackQuestions(params Params) any {
	return toTree(buildQuestions(
		params.String("subject"),
		params.Int("difficulty"),
		params.Int("count"),
		params.String("question_type"),
		0,
	))
}

func buildQuestions(subject string, difficulty, count int, questionType string, offset int) []Question {
	subject = orDefault(subject, "general")
	difficulty = clampInt(difficulty, 1, 5)
	count = clampInt(count, 1, MaxQuestionCount)
	if !containsString(QuestionTypes(), questionType) {
		questionType = QuestionSingleChoice
	}

	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		number := offset + i + 1
		question := Question{
			Content:      fmt.Sprintf("%s practice question %d (difficulty %d): review the key concept covered in this unit.", subject, number, difficulty),
			QuestionType: questionType,
			Explanation:  fmt.Sprintf("This is a template question generated while AI providers were unavailable. Review the %s notes for the reasoning.", subject),
			Difficulty:   difficulty,
			Tags:         []string{subject, "fallback"},
		}
		switch questionType {
		case QuestionSingleChoice, QuestionMultipleChoice:
			question.Options = []string{"Option A", "Option B", "Option C", "Option D"}
			question.Answer = "Option A"
		case QuestionTrueFalse:
			question.Options = []string{"True", "False"}
			question.Answer = "True"
		default:
			question.Answer = fmt.Sprintf("Reference answer for %s question %d", subject, number)
		}
		questions = append(questions, question)
	}
	return questions
}

func fallbackGrading(params Params) any {
	maxScore := params.Float("max_score")
	if maxScore <= 0 {
		maxScore = 10
	}
	similarity := tokenOverlap(params.String("standard_answer"), params.String("student_answer"))
	accuracy := round1(similarity * 100)

	result := GradingResult{
		Score:           round1(similarity * maxScore),
		AccuracyScore:   accuracy,
		LogicScore:      round1(clampFloat(accuracy*0.9+10, 0, 100)),
		ExpressionScore: round1(clampFloat(50+similarity*50, 0, 100)),
		CreativityScore: round1(clampFloat(40+similarity*40, 0, 100)),
		Feedback: GradingFeedback{
			Strengths:   []string{},
			Weaknesses:  []string{},
			Suggestions: []string{"Compare your answer with the reference answer point by point."},
		},
	}

	switch {
	case similarity >= 0.8:
		result.Feedback.Strengths = append(result.Feedback.Strengths, "The answer covers the key points of the reference answer.")
		result.Encouragement = "Excellent work, keep it up!"
	case similarity >= 0.5:
		result.Feedback.Strengths = append(result.Feedback.Strengths, "The answer captures part of the expected reasoning.")
		result.Feedback.Weaknesses = append(result.Feedback.Weaknesses, "Some key points from the reference answer are missing.")
		result.Encouragement = "Good progress, a little more detail will get you there."
	case similarity > 0:
		result.Feedback.Weaknesses = append(result.Feedback.Weaknesses, "Most key points from the reference answer are missing.")
		result.Feedback.Suggestions = append(result.Feedback.Suggestions, "Review the core concept before answering again.")
		result.Encouragement = "Every attempt builds understanding, keep practicing."
	default:
		result.Feedback.Weaknesses = append(result.Feedback.Weaknesses, "The answer does not overlap with the reference answer.")
		result.Feedback.Suggestions = append(result.Feedback.Suggestions, "Start from the definition and build the answer step by step.")
		result.Encouragement = "Don't give up, revisit the material and try again."
	}

	return toTree(result)
}

func fallbackRecommendation(params Params) any {
	subject := orDefault(params.String("subject"), "general")
	count := clampInt(params.Int("count"), 1, MaxRecommendationCount)
	accuracy := params.Float("accuracy")
	adjustment := difficultyAdjustment(accuracy)
	difficulty := clampInt(levelDifficulty(params.String("study_level"))+adjustmentDelta(adjustment), 1, 5)

	items := make([]RecommendationItem, 0, count)
	for _, weak := range params.Strings("weak_points") {
		if len(items) == count {
			break
		}
		items = append(items, RecommendationItem{
			Topic:      weak,
			Reason:     "Listed as a weak point in recent practice.",
			Difficulty: clampInt(difficulty-1, 1, 5),
			Priority:   "high",
		})
	}
	generic := []string{"fundamentals review", "mixed practice set", "timed drill", "challenge problems"}
	for i := 0; len(items) < count; i++ {
		priority := "medium"
		if i >= 2 {
			priority = "low"
		}
		items = append(items, RecommendationItem{
			Topic:      fmt.Sprintf("%s %s", subject, generic[i%len(generic)]),
			Reason:     fmt.Sprintf("Keeps %s practice balanced at the current level.", subject),
			Difficulty: difficulty,
			Priority:   priority,
		})
	}

	return toTree(Recommendation{
		Items:                items,
		DifficultyAdjustment: adjustment,
		Summary:              fmt.Sprintf("Recommended %d %s topics; difficulty should %s based on %.0f%% accuracy.", len(items), subject, adjustment, accuracy),
	})
}

func fallbackLearningPath(params Params) any {
	skill := orDefault(params.String("target_skill"), "the target skill")
	level := normalizeLevel(params.String("current_level"))
	weekly := params.Float("weekly_hours")
	if weekly <= 0 {
		weekly = 5
	}

	type plannedStage struct {
		name  string
		hours float64
		goals []string
	}
	stages := []plannedStage{
		{"Foundations", 10, []string{"Understand the core vocabulary of " + skill, "Complete introductory exercises"}},
		{"Core Practice", 20, []string{"Apply " + skill + " to standard problems", "Review mistakes weekly"}},
		{"Applied Projects", 20, []string{"Build a small project using " + skill, "Explain your solution to a peer"}},
		{"Mastery Review", 10, []string{"Solve mixed challenge sets", "Summarize what you learned"}},
	}
	switch level {
	case "intermediate":
		stages = stages[1:]
	case "advanced":
		stages = stages[2:]
	}

	path := LearningPath{
		PathName:    fmt.Sprintf("%s learning path", skill),
		Description: fmt.Sprintf("A %d-stage plan to progress in %s from the %s level.", len(stages), skill, level),
		Difficulty:  level,
		Stages:      make([]PathStage, 0, len(stages)),
	}
	for _, stage := range stages {
		weeks := int(math.Ceil(stage.hours / weekly))
		path.EstimatedHours += stage.hours
		path.Stages = append(path.Stages, PathStage{
			Name:      stage.name,
			Duration:  pluralize(weeks, "week"),
			Goals:     stage.goals,
			Resources: []string{fmt.Sprintf("%s course notes", skill), "Practice question bank"},
		})
	}

	return toTree(path)
}

func fallbackErrorAnalysis(params Params) any {
	question := params.String("question_content")
	user := strings.TrimSpace(params.String("user_answer"))
	correct := strings.TrimSpace(params.String("correct_answer"))
	subject := orDefault(params.String("subject"), "this subject")

	analysis := ErrorAnalysis{
		CorrectApproach: fmt.Sprintf("Work through the question step by step and compare each step with the correct answer %q.", correct),
		ReviewSuggestions: []string{
			fmt.Sprintf("Review the %s concept this question targets.", subject),
			"Redo the question without looking at the answer.",
		},
		SimilarQuestions: []string{fmt.Sprintf("Try another %s question of the same type.", subject)},
	}

	switch {
	case user == "":
		analysis.ErrorType = "comprehension"
		analysis.RootCause = "No answer was given, which usually means the question was not understood."
	case strings.EqualFold(user, correct):
		analysis.ErrorType = "careless"
		analysis.RootCause = "The answer matches the reference; the mistake was likely in how it was recorded."
	case containsDigit(user) && containsDigit(correct):
		analysis.ErrorType = "calculation"
		analysis.RootCause = "Both answers are numeric, so the method was likely right but a calculation step went wrong."
	case tokenOverlap(correct, user) >= 0.6:
		analysis.ErrorType = "careless"
		analysis.RootCause = "The answer is close to the reference, which points to a careless slip."
	default:
		analysis.ErrorType = "conceptual"
		analysis.RootCause = "The answer differs substantially from the reference, which points to a gap in the underlying concept."
	}
	analysis.Explanation = fmt.Sprintf("For the question %q the expected answer is %q, but %q was given.", question, correct, user)

	return toTree(analysis)
}

func fallbackMotivation(params Params) any {
	plan := MotivationPlan{
		AchievementRecognition: []string{},
		GoalSetting:            []string{},
		ChallengeIncentives:    []string{},
		EmotionalSupport:       []string{},
	}
	for _, achievement := range params.Strings("achievements") {
		plan.AchievementRecognition = append(plan.AchievementRecognition, "Well done on: "+achievement)
	}
	if len(plan.AchievementRecognition) == 0 {
		plan.AchievementRecognition = append(plan.AchievementRecognition, "Showing up to study consistently is already an achievement.")
	}
	for _, goal := range params.Strings("goals") {
		plan.GoalSetting = append(plan.GoalSetting, "Break \""+goal+"\" into weekly milestones you can check off.")
	}
	if len(plan.GoalSetting) == 0 {
		plan.GoalSetting = append(plan.GoalSetting, "Set one small, measurable goal for this week.")
	}
	for _, difficulty := range params.Strings("difficulties") {
		plan.ChallengeIncentives = append(plan.ChallengeIncentives, "Turn \""+difficulty+"\" into a 15-minute daily challenge.")
	}
	if len(plan.ChallengeIncentives) == 0 {
		plan.ChallengeIncentives = append(plan.ChallengeIncentives, "Try one question above your usual difficulty each day.")
	}

	status := strings.ToLower(params.String("learning_status"))
	switch {
	case strings.Contains(status, "tired"), strings.Contains(status, "stress"), strings.Contains(status, "frustrat"):
		plan.EmotionalSupport = append(plan.EmotionalSupport, "It is normal to feel this way; short breaks help you come back stronger.")
	default:
		plan.EmotionalSupport = append(plan.EmotionalSupport, "Progress is rarely linear; trust the routine you are building.")
	}
	plan.EmotionalSupport = append(plan.EmotionalSupport, "Celebrate small wins along the way.")
	plan.EncouragementMessage = "You are making progress every day. Keep going!"

	return toTree(plan)
}

func fallbackLearningStyle(params Params) any {
	style := strings.ToLower(strings.TrimSpace(params.String("learning_mode")))
	if !containsString([]string{"visual", "auditory", "reading", "kinesthetic"}, style) {
		style = "balanced"
	}
	days := params.Int("learning_days")
	if days <= 0 {
		days = 1
	}
	perDay := params.Float("study_minutes") / float64(days)

	result := LearningStyle{
		StyleType:       style,
		Characteristics: []string{fmt.Sprintf("Studies about %.0f minutes per active day.", perDay)},
		LearningSuggestions: []string{
			"Review mistakes within 24 hours.",
			"Mix question types within a session.",
		},
		StudyMethods: []string{},
	}
	if freq := params.Int("review_frequency"); freq > 0 {
		result.Characteristics = append(result.Characteristics, fmt.Sprintf("Reviews material %s per week.", pluralize(freq, "time")))
	}
	if preferences := params.Counts("question_type_preference"); len(preferences) > 0 {
		favourite := ""
		for _, key := range sortedKeys(preferences) {
			if favourite == "" || preferences[key] > preferences[favourite] {
				favourite = key
			}
		}
		result.Characteristics = append(result.Characteristics, "Prefers "+favourite+" questions.")
	}

	switch style {
	case "visual":
		result.StudyMethods = append(result.StudyMethods, "Mind maps", "Diagrams and charts")
	case "auditory":
		result.StudyMethods = append(result.StudyMethods, "Explain concepts aloud", "Recorded lectures")
	case "reading":
		result.StudyMethods = append(result.StudyMethods, "Structured notes", "Summaries after each chapter")
	case "kinesthetic":
		result.StudyMethods = append(result.StudyMethods, "Hands-on exercises", "Practice problems immediately after theory")
	default:
		result.StudyMethods = append(result.StudyMethods, "Alternate reading and practice", "Spaced repetition")
	}

	return toTree(result)
}

func fallbackAbility(params Params) any {
	accuracy := clampFloat(params.Float("accuracy"), 0, 100)
	completed := float64(params.Int("questions_completed"))
	minutes := params.Float("study_minutes")

	efficiency := 0.0
	if minutes > 0 {
		efficiency = clampFloat(completed/minutes*50, 0, 100)
	}
	result := AbilityAssessment{
		KnowledgeMastery:   round1(accuracy),
		ProblemSolving:     round1(clampFloat(accuracy*0.9+math.Min(completed/10, 10), 0, 100)),
		Concentration:      round1(clampFloat(minutes/3, 0, 100)),
		KnowledgeTransfer:  round1(clampFloat(accuracy*0.8+float64(len(params.Strings("subjects")))*5, 0, 100)),
		LearningEfficiency: round1(efficiency),
		ImprovementSuggestions: []string{
			"Keep a steady daily practice routine.",
		},
	}

	average := (result.KnowledgeMastery + result.ProblemSolving + result.Concentration + result.KnowledgeTransfer + result.LearningEfficiency) / 5
	switch {
	case average >= 85:
		result.OverallLevel = "expert"
	case average >= 70:
		result.OverallLevel = "advanced"
	case average >= 50:
		result.OverallLevel = "intermediate"
	default:
		result.OverallLevel = "beginner"
	}

	if weakest := topCount(params.Counts("wrong_distribution")); weakest != "" {
		result.ImprovementSuggestions = append(result.ImprovementSuggestions, "Focus review time on "+weakest+", where most mistakes occur.")
	}
	if accuracy < 60 {
		result.ImprovementSuggestions = append(result.ImprovementSuggestions, "Slow down and consolidate fundamentals before moving on.")
	}

	return toTree(result)
}

func fallbackExam(params Params) any {
	subject := orDefault(params.String("subject"), "general")
	difficulty := clampInt(params.Int("difficulty"), 1, 5)
	examType := orDefault(params.String("exam_type"), "practice")

	distribution := params.Counts("distribution")
	if len(distribution) == 0 {
		distribution = map[string]int{QuestionSingleChoice: 5}
	}

	exam := Exam{
		Title:      fmt.Sprintf("%s %s exam", subject, examType),
		Subject:    subject,
		Difficulty: difficulty,
		Questions:  []ExamQuestion{},
	}
	for _, questionType := range QuestionTypes() {
		count := distribution[questionType]
		if count <= 0 {
			continue
		}
		for _, question := range buildQuestions(subject, difficulty, count, questionType, len(exam.Questions)) {
			score := questionScore(questionType)
			exam.TotalScore += score
			exam.Questions = append(exam.Questions, ExamQuestion{Question: question, Score: score})
		}
	}
	if len(exam.Questions) == 0 {
		for _, question := range buildQuestions(subject, difficulty, 5, QuestionSingleChoice, 0) {
			exam.TotalScore += questionScore(QuestionSingleChoice)
			exam.Questions = append(exam.Questions, ExamQuestion{Question: question, Score: questionScore(QuestionSingleChoice)})
		}
	}
	exam.DurationMinutes = maxInt(10, len(exam.Questions)*3)

	return toTree(exam)
}

func fallbackReport(params Params) any {
	accuracy := params.Float("accuracy")
	minutes := params.Int("study_minutes")
	answered := params.Int("questions_answered")

	report := LearningReport{
		Summary:      fmt.Sprintf("Studied %s and answered %s with %.0f%% accuracy.", pluralize(minutes, "minute"), pluralize(answered, "question"), accuracy),
		Strengths:    []string{},
		Improvements: []string{},
		NextDayTasks: []ReportTask{},
	}

	switch {
	case accuracy >= 90:
		report.PerformanceLevel = "excellent"
		report.Strengths = append(report.Strengths, "Very high accuracy across answered questions.")
	case accuracy >= 75:
		report.PerformanceLevel = "good"
		report.Strengths = append(report.Strengths, "Solid accuracy with room to take on harder questions.")
	case accuracy >= 60:
		report.PerformanceLevel = "average"
		report.Improvements = append(report.Improvements, "Review incorrect answers to lift accuracy above 75%.")
	default:
		report.PerformanceLevel = "needs_improvement"
		report.Improvements = append(report.Improvements, "Return to fundamentals and practice easier questions first.")
	}
	if minutes >= 60 {
		report.Strengths = append(report.Strengths, "Consistent study time today.")
	} else {
		report.Improvements = append(report.Improvements, "Aim for at least 60 minutes of focused study.")
	}

	for _, subject := range params.Strings("weak_subjects") {
		report.NextDayTasks = append(report.NextDayTasks, ReportTask{Title: "Review " + subject + " mistakes", Minutes: 30})
	}
	report.NextDayTasks = append(report.NextDayTasks, ReportTask{Title: "Mixed practice set", Minutes: 20})

	return toTree(report)
}

// tokenOverlap is the Jaccard similarity of the token sets of a and b.
// Han, Hiragana, Katakana and Hangul runes each count as one token.
func tokenOverlap(a, b string) float64 {
	left, right := tokenSet(a), tokenSet(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	shared := 0
	for token := range left {
		if _, ok := right[token]; ok {
			shared++
		}
	}
	union := len(left) + len(right) - shared
	return float64(shared) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens[word.String()] = struct{}{}
			word.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
			flush()
			tokens[string(r)] = struct{}{}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func difficultyAdjustment(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "increase"
	case accuracy <= 60:
		return "decrease"
	default:
		return "maintain"
	}
}

func adjustmentDelta(adjustment string) int {
	switch adjustment {
	case "increase":
		return 1
	case "decrease":
		return -1
	}
	return 0
}

func levelDifficulty(level string) int {
	switch normalizeLevel(level) {
	case "advanced":
		return 4
	case "intermediate":
		return 3
	}
	return 2
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "intermediate" || level == "advanced" {
		return level
	}
	return "beginner"
}

func questionScore(questionType string) float64 {
	switch questionType {
	case QuestionMultipleChoice:
		return 3
	case QuestionTrueFalse:
		return 1
	case QuestionShortAnswer:
		return 5
	}
	return 2
}

func topCount(counts map[string]int) string {
	keys := sortedKeys(counts)
	sort.SliceStable(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })
	if len(keys) == 0 || counts[keys[0]] <= 0 {
		return ""
	}
	return keys[0]
}

func containsDigit(text string) bool {
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
