package planning

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"fitcoach/sources/persistence/entities"

	"github.com/shopspring/decimal"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

type section int

const (
	sectionDays section = iota
	sectionShopping
	sectionTips
	sectionAlternatives
)

var (
	listMarker    = regexp.MustCompile(`^(?:[#>*\-+•]+\s*|\d+[.)]\s+)+`)
	dayHeader     = regexp.MustCompile(`(?i)^(?:day\s*([1-7])|(monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b[\s:\-–—]*(.*)$`)
	mealHeader    = regexp.MustCompile(`(?i)^(breakfast|lunch|dinner|snacks?)\b(?:\s*\([^)]*\))?[\s:\-–—]*(.*)$`)
	sectionHeader = regexp.MustCompile(`(?i)^(?:weekly\s+)?(shopping list|grocery list|meal prep(?:aration)?(?: tips| recommendations)?|alternatives?(?: options)?)\b\s*(:?)\s*(.*)$`)
	fieldLine     = regexp.MustCompile(`(?i)^(meal name|name|brief description|description|key ingredients|ingredients|approximate macros|macros|prep(?:aration)? time|cooking difficulty|difficulty)\s*:\s*(.*)$`)
	labelled      = regexp.MustCompile(`^([^:]{1,40}):\s*(.*)$`)
	proteinAmount = regexp.MustCompile(`(?i)protein\D{0,6}?(\d+(?:\.\d+)?)`)
	carbsAmount   = regexp.MustCompile(`(?i)carb(?:s|ohydrates?)?\D{0,6}?(\d+(?:\.\d+)?)`)
	fatAmount     = regexp.MustCompile(`(?i)fats?\D{0,6}?(\d+(?:\.\d+)?)`)
	firstNumber   = regexp.MustCompile(`\d+`)
	difficultyNum = regexp.MustCompile(`[1-5]`)
)

// ParsePlan turns free-form completion text into a plan body. It never fails:
// days it cannot recognise stay empty and the body always has seven days.
func ParsePlan(raw string) *entities.PlanBody {
	p := &planParser{body: entities.NewPlanBody(), day: -1, alternativeDay: -1}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		p.consume(line)
	}
	return p.body
}

type planParser struct {
	body    *entities.PlanBody
	section section

	day   int
	meal  *entities.Meal
	field string

	category       int
	alternativeDay int
	nested         bool
}

func (p *planParser) consume(line string) {
	text := clean(line)
	if text == "" {
		return
	}

	if m := sectionHeader.FindStringSubmatch(text); m != nil {
		name, rest := strings.ToLower(m[1]), m[3]
		inline := m[2] != "" && rest != "" && !strings.HasSuffix(rest, ":")
		if inline && p.section == sectionDays && p.day >= 0 && !strings.Contains(name, "list") {
			p.inline(name, rest)
			return
		}
		p.openSection(name)
		if inline {
			p.consume(rest)
		}
		return
	}

	if m := dayHeader.FindStringSubmatch(text); m != nil {
		index := dayIndex(m[1], m[2])
		resume := p.nested && bareDay(m[3])
		switch {
		case p.section == sectionAlternatives && !resume:
			p.alternativeDay = index
			if m[3] != "" {
				p.addAlternative(m[3])
			}
			return
		case p.section == sectionTips && !resume:
			p.body.MealPrepTips = append(p.body.MealPrepTips, text)
			return
		}
		p.section = sectionDays
		p.day = index
		p.meal = nil
		p.field = ""
		return
	}

	switch p.section {
	case sectionShopping:
		p.shopping(text)
	case sectionTips:
		p.body.MealPrepTips = append(p.body.MealPrepTips, text)
	case sectionAlternatives:
		p.addAlternative(text)
	default:
		p.dayLine(text)
	}
}

func (p *planParser) openSection(name string) {
	p.nested = p.section == sectionDays && p.meal != nil
	p.meal = nil
	p.field = ""
	switch {
	case strings.Contains(name, "list"):
		p.section = sectionShopping
		p.category = -1
	case strings.HasPrefix(name, "meal prep"):
		p.section = sectionTips
	default:
		p.section = sectionAlternatives
		p.alternativeDay = p.day
	}
}

// inline handles "Alternative: ..." and "Meal prep: ..." lines written inside a day.
func (p *planParser) inline(name, value string) {
	if strings.HasPrefix(name, "meal prep") {
		p.body.MealPrepTips = append(p.body.MealPrepTips, value)
		return
	}
	alternative := entities.PlanAlternative{DayIndex: p.day, Alternative: value}
	if p.meal != nil {
		alternative.MealType = p.meal.Type
	}
	p.body.Alternatives = append(p.body.Alternatives, alternative)
}

func (p *planParser) dayLine(text string) {
	if p.day < 0 {
		return
	}

	if m := mealHeader.FindStringSubmatch(text); m != nil {
		p.body.Days[p.day].Meals = append(p.body.Days[p.day].Meals, entities.Meal{
			Type:        mealType(m[1]),
			Name:        strings.TrimSpace(m[2]),
			Ingredients: []string{},
		})
		p.meal = &p.body.Days[p.day].Meals[len(p.body.Days[p.day].Meals)-1]
		p.field = ""
		return
	}

	if p.meal == nil {
		return
	}

	if m := fieldLine.FindStringSubmatch(text); m != nil {
		p.field = strings.ToLower(m[1])
		p.setField(p.field, strings.TrimSpace(m[2]))
		return
	}

	if strings.Contains(p.field, "ingredients") {
		p.meal.Ingredients = append(p.meal.Ingredients, splitItems(text)...)
		return
	}

	switch {
	case p.meal.Name == "":
		p.meal.Name = text
	case p.meal.Description == "":
		p.meal.Description = text
	}
}

func (p *planParser) setField(field, value string) {
	switch {
	case strings.Contains(field, "name"):
		p.meal.Name = value
	case strings.Contains(field, "description"):
		p.meal.Description = value
	case strings.Contains(field, "ingredients"):
		p.meal.Ingredients = append(p.meal.Ingredients, splitItems(value)...)
	case strings.Contains(field, "macros"):
		p.meal.Macros = parseMacros(value)
	case strings.Contains(field, "time"):
		p.meal.PrepTimeMinutes = parseMinutes(value)
	case strings.Contains(field, "difficulty"):
		if d := difficultyNum.FindString(value); d != "" {
			p.meal.Difficulty, _ = strconv.Atoi(d)
		}
	}
}

func (p *planParser) shopping(text string) {
	if m := labelled.FindStringSubmatch(text); m != nil {
		p.body.ShoppingList = append(p.body.ShoppingList, entities.ShoppingCategory{
			Category: strings.TrimSpace(m[1]),
			Items:    splitItems(m[2]),
		})
		p.category = len(p.body.ShoppingList) - 1
		return
	}

	if p.category < 0 {
		p.body.ShoppingList = append(p.body.ShoppingList, entities.ShoppingCategory{Category: "General", Items: []string{}})
		p.category = len(p.body.ShoppingList) - 1
	}
	category := &p.body.ShoppingList[p.category]
	category.Items = append(category.Items, splitItems(text)...)
}

func (p *planParser) addAlternative(text string) {
	alternative := entities.PlanAlternative{DayIndex: max(p.alternativeDay, 0), Alternative: text}
	if m := mealHeader.FindStringSubmatch(text); m != nil {
		alternative.MealType = mealType(m[1])
		alternative.Alternative = strings.TrimSpace(m[2])
	}
	if alternative.Alternative == "" {
		return
	}
	p.body.Alternatives = append(p.body.Alternatives, alternative)
}

func clean(line string) string {
	text := strings.TrimSpace(line)
	text = strings.NewReplacer("**", "", "__", "").Replace(text)
	text = listMarker.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func dayIndex(number, weekday string) int {
	if number != "" {
		n, _ := strconv.Atoi(number)
		return n - 1
	}
	for i, name := range entities.Weekdays {
		if strings.EqualFold(name, weekday) {
			return i
		}
	}
	return 0
}

// bareDay reports whether a day header carries no content of its own, as in
// "Day 3" or "Day 3: Wednesday".
func bareDay(rest string) bool {
	rest = strings.TrimSpace(strings.Trim(rest, ":()-–— "))
	return rest == "" || slices.ContainsFunc(entities.Weekdays, func(day string) bool { return strings.EqualFold(day, rest) })
}

func mealType(header string) string {
	header = strings.ToLower(header)
	if strings.HasPrefix(header, MealSnack) {
		return MealSnack
	}
	return header
}

func splitItems(text string) []string {
	items := []string{}
	for _, item := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' }) {
		if item = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(item), ".")); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseMacros(text string) entities.Macros {
	return entities.Macros{
		Protein: grams(proteinAmount, text),
		Carbs:   grams(carbsAmount, text),
		Fat:     grams(fatAmount, text),
	}
}

func grams(pattern *regexp.Regexp, text string) decimal.Decimal {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero
	}
	return value
}

func parseMinutes(text string) int {
	n, err := strconv.Atoi(firstNumber.FindString(text))
	if err != nil {
		return 0
	}
	if strings.Contains(strings.ToLower(text), "hour") {
		return n * 60
	}
	return n
}
