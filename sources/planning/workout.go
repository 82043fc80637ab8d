package planning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fitcoach/sources/persistence/entities"
)

const WorkoutSystemPrompt = `You are a fitness and nutrition expert. Generate personalized fitness and nutrition plans based on user data, goals and preferences. Create practical, science-backed plans that are tailored to the individual's needs.

For each plan, include:
1) Introduction with personalized motivation
2) Weekly workout schedule with specific exercises (sets, reps, duration)
3) Nutrition plan with meal suggestions and macronutrient targets
4) Progress tracking metrics
5) Adaptation guidelines based on progress

Be specific, actionable, and accommodating of any health conditions or limitations the user has mentioned.`

const (
	WorkoutWeeks    = 4
	WorkoutDuration = "4 weeks"

	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"

	defaultSessionsPerWeek = 3
	defaultWorkoutFocus    = "general fitness"
)

// BuildWorkoutPrompt renders the user prompt for a four week progressive
// workout plan.
func BuildWorkoutPrompt(profile *entities.UserProfile, personalization *entities.Personalization, parameters entities.PlanParameters) string {
	if personalization == nil {
		personalization = entities.DefaultPersonalization(profile.ID)
	}

	var b strings.Builder
	b.WriteString("Generate a personalized fitness and nutrition plan for this user:\n\n")

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", positive(profile.Age, ""))
	fmt.Fprintf(&b, "- Gender: %s\n", text(profile.Gender))
	fmt.Fprintf(&b, "- Weight: %s\n", measure(profile.WeightKg, "kg"))
	fmt.Fprintf(&b, "- Height: %s\n", measure(profile.HeightCm, "cm"))
	if bmi := profile.BMI(); bmi > 0 {
		fmt.Fprintf(&b, "- BMI: %.1f\n", bmi)
	}

	b.WriteString("\nHealth Data:\n")
	fmt.Fprintf(&b, "- Fitness level: %s\n", text(profile.ActivityLevel))
	fmt.Fprintf(&b, "- Health conditions: %s\n", list(profile.MedicalConditions))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", list(profile.DietaryRestrictions))
	fmt.Fprintf(&b, "- Allergies: %s\n", list(profile.Allergies))

	fmt.Fprintf(&b, "\nGoals: %s\n", list(profile.Goals))

	b.WriteString("\nPreferences:\n")
	fmt.Fprintf(&b, "- Sessions per week: %d\n", orInt(parameters.SessionsPerWeek, defaultSessionsPerWeek))
	fmt.Fprintf(&b, "- Session length: %s\n", positive(parameters.SessionMinutes, " minutes"))
	fmt.Fprintf(&b, "- Available equipment: %s\n", listOr(parameters.Equipment, "bodyweight only"))
	fmt.Fprintf(&b, "- Focus areas: %s\n", listOr(parameters.FocusAreas, defaultWorkoutFocus))
	fmt.Fprintf(&b, "- Preferred workout time: %s\n", personalization.ActivityPatterns.PreferredTimeOfDay)
	fmt.Fprintf(&b, "- Workout consistency (1-10): %d\n", personalization.ActivityPatterns.ConsistencyScore)
	fmt.Fprintf(&b, "- Plan adherence rate: %d%%\n", personalization.BehavioralInsights.PlanAdherenceRate)

	b.WriteString("\nCreate a 4-week progressive plan that will help them achieve their goals while considering their current fitness level, any health conditions, and preferences.\n")
	b.WriteString("Start each week with a line \"Week N\" and each session with its day followed by a colon and the session focus.\n")
	b.WriteString("List every exercise on its own line as \"Name: S sets x R reps\" or \"Name: N minutes\".\n")
	b.WriteString("Finish with the sections \"Nutrition Guidelines\", \"Progress Tracking\" and \"Adaptation Guidelines\".")

	return b.String()
}

// WorkoutDifficulty maps a self-reported fitness level onto a plan difficulty.
func WorkoutDifficulty(level string) string {
	level = strings.ToLower(level)
	switch {
	case strings.Contains(level, DifficultyBeginner):
		return DifficultyBeginner
	case strings.Contains(level, DifficultyAdvanced):
		return DifficultyAdvanced
	default:
		return DifficultyIntermediate
	}
}

var focusKeywords = []struct {
	pattern *regexp.Regexp
	area    string
}{
	{regexp.MustCompile(`(?i)\b(lose|loss|cut|fat)\b`), "weight loss"},
	{regexp.MustCompile(`(?i)\b(gain|muscle|bulk|hypertrophy)\b`), "muscle building"},
	{regexp.MustCompile(`(?i)\bstrength`), "strength training"},
	{regexp.MustCompile(`(?i)\b(endurance|cardio|stamina|running)\b`), "cardio endurance"},
	{regexp.MustCompile(`(?i)\b(flexib|mobility|stretch)`), "flexibility"},
	{regexp.MustCompile(`(?i)\bhealth`), "general health"},
}

// WorkoutFocusAreas derives the plan focus areas from free-form goals.
func WorkoutFocusAreas(goals []string) []string {
	areas := []string{}
	seen := map[string]bool{}
	for _, goal := range goals {
		for _, keyword := range focusKeywords {
			if keyword.pattern.MatchString(goal) && !seen[keyword.area] {
				seen[keyword.area] = true
				areas = append(areas, keyword.area)
			}
		}
	}
	if len(areas) == 0 {
		return []string{defaultWorkoutFocus}
	}
	return areas
}

type workoutSection int

const (
	workoutIntro workoutSection = iota
	workoutSchedule
	workoutNutrition
	workoutProgress
	workoutAdaptation
)

var (
	weekHeader        = regexp.MustCompile(`(?i)^week\s*(\d{1,2})\b[\s:\-–—]*(.*)$`)
	sessionHeader     = regexp.MustCompile(`(?i)^((?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)|(?:day|session|workout)\s*\d{1,2})\b[\s:\-–—]*(.*)$`)
	workoutSectionTag = regexp.MustCompile(`(?i)^(?:weekly\s+)?(introduction|overview|nutrition(?:al)?(?:\s+plan|\s+guidelines)?|progress(?:\s+tracking)?(?:\s+metrics)?|tracking(?:\s+metrics)?|adaptation(?:\s+guidelines)?|progression(?:\s+guidelines)?)\s*(:?)\s*(.*)$`)
	setsReps          = regexp.MustCompile(`(?i)(\d+)\s*(?:sets?\s*(?:of|x|×)?|x|×)\s*(\d+(?:\s*[-–]\s*\d+)?)`)
	durationAmount    = regexp.MustCompile(`(?i)(\d+)\s*(?:[-–]\s*\d+\s*)?(?:min|minutes?)\b`)
	exerciseNote      = regexp.MustCompile(`(?i)^(rest|notes?|tip)\b`)
)

// ParseWorkoutPlan turns free-form completion text into a workout body with
// the given number of weeks. Like ParsePlan it never fails.
func ParseWorkoutPlan(raw string, weeks int) *entities.WorkoutBody {
	p := &workoutParser{body: entities.NewWorkoutBody(max(weeks, 1)), week: -1}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		p.consume(line)
	}
	p.body.Introduction = strings.Join(p.intro, "\n")
	return p.body
}

type workoutParser struct {
	body    *entities.WorkoutBody
	section workoutSection
	intro   []string

	week     int
	overflow bool
	session  *entities.WorkoutSession
}

func (p *workoutParser) consume(line string) {
	text := clean(line)
	if text == "" {
		return
	}

	if m := weekHeader.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		p.section = workoutSchedule
		p.session = nil
		p.overflow = n < 1 || n > len(p.body.Weeks)
		if !p.overflow {
			p.week = n - 1
			if theme := strings.TrimSpace(m[2]); theme != "" {
				p.body.Weeks[p.week].Theme = theme
			}
		}
		return
	}

	// A heading is either bare or followed by a colon.
	if m := workoutSectionTag.FindStringSubmatch(text); m != nil && (m[2] != "" || strings.TrimSpace(m[3]) == "") {
		p.openSection(strings.ToLower(m[1]))
		if rest := strings.TrimSpace(m[3]); rest != "" && m[2] != "" {
			p.consume(rest)
		}
		return
	}

	switch p.section {
	case workoutNutrition:
		p.body.NutritionGuidelines = append(p.body.NutritionGuidelines, text)
	case workoutProgress:
		p.body.ProgressMetrics = append(p.body.ProgressMetrics, text)
	case workoutAdaptation:
		p.body.Adaptations = append(p.body.Adaptations, text)
	default:
		p.scheduleLine(text)
	}
}

func (p *workoutParser) openSection(name string) {
	p.session = nil
	p.overflow = false
	switch {
	case strings.HasPrefix(name, "nutrition"):
		p.section = workoutNutrition
	case strings.HasPrefix(name, "progress") && !strings.HasPrefix(name, "progression"),
		strings.HasPrefix(name, "tracking"):
		p.section = workoutProgress
	case strings.HasPrefix(name, "adaptation"), strings.HasPrefix(name, "progression"):
		p.section = workoutAdaptation
	default:
		p.section = workoutIntro
	}
}

func (p *workoutParser) scheduleLine(text string) {
	if p.overflow {
		return
	}
	if m := sessionHeader.FindStringSubmatch(text); m != nil {
		if p.week < 0 {
			p.week = 0
		}
		p.section = workoutSchedule
		week := &p.body.Weeks[p.week]
		week.Sessions = append(week.Sessions, entities.WorkoutSession{
			Day:       strings.TrimSpace(m[1]),
			Focus:     strings.TrimSpace(m[2]),
			Exercises: []entities.Exercise{},
		})
		p.session = &week.Sessions[len(week.Sessions)-1]
		return
	}

	switch {
	case p.section == workoutIntro:
		p.intro = append(p.intro, text)
	case p.session == nil:
		if week := &p.body.Weeks[p.week]; week.Theme == "" {
			week.Theme = text
		}
	case !exerciseNote.MatchString(text):
		p.session.Exercises = append(p.session.Exercises, parseExercise(text))
	}
}

func parseExercise(text string) entities.Exercise {
	name, detail := text, text
	if i := strings.Index(text, ":"); i > 0 {
		name, detail = text[:i], text[i+1:]
	} else if loc := setsReps.FindStringIndex(text); loc != nil && loc[0] > 0 {
		name = text[:loc[0]]
	} else if loc := durationAmount.FindStringIndex(text); loc != nil && loc[0] > 0 {
		name = text[:loc[0]]
	}

	exercise := entities.Exercise{Name: strings.TrimSpace(strings.Trim(name, " -–—,"))}
	if m := setsReps.FindStringSubmatch(detail); m != nil {
		exercise.Sets, _ = strconv.Atoi(m[1])
		exercise.Reps = strings.Join(strings.Fields(strings.ReplaceAll(m[2], "–", "-")), "")
	}
	if m := durationAmount.FindStringSubmatch(detail); m != nil {
		exercise.DurationMinutes, _ = strconv.Atoi(m[1])
	}
	return exercise
}

func populatedSessions(body *entities.WorkoutBody) int {
	count := 0
	for _, week := range body.Weeks {
		count += len(week.Sessions)
	}
	return count
}
