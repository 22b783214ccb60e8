package dataset

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDataNotFound indicates the backing data file does not exist.
var ErrDataNotFound = errors.New("data file not found")

// ErrMissingColumn indicates the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// LowHappinessCutoff is the largest happiness index still labelled low.
const LowHappinessCutoff = 5

// Canonical field names of a cleaned record.
const (
	FieldLowHappiness   = "low_happiness"
	FieldAge            = "age"
	FieldGender         = "gender"
	FieldScreenTime     = "daily_screen_time"
	FieldSleepQuality   = "sleep_quality"
	FieldStressLevel    = "stress_level"
	FieldDaysOffline    = "days_without_social_media"
	FieldExerciseFreq   = "exercise_frequency"
	FieldPlatform       = "platform"
	FieldHappinessIndex = "happiness_index"
)

// column binds a raw CSV header to its canonical field.
type column struct {
	Raw   string
	Field string
}

// columns lists the retained raw columns in record order. Five of them carry
// unit suffixes in the raw header and are renamed.
var columns = []column{
	{Raw: "Age", Field: FieldAge},
	{Raw: "Gender", Field: FieldGender},
	{Raw: "Daily_Screen_Time(hrs)", Field: FieldScreenTime},
	{Raw: "Sleep_Quality(1-10)", Field: FieldSleepQuality},
	{Raw: "Stress_Level(1-10)", Field: FieldStressLevel},
	{Raw: "Days_Without_Social_Media", Field: FieldDaysOffline},
	{Raw: "Exercise_Frequency(week)", Field: FieldExerciseFreq},
	{Raw: "Social_Media_Platform", Field: FieldPlatform},
	{Raw: "Happiness_Index(1-10)", Field: FieldHappinessIndex},
}

// Record is one cleaned survey respondent. Every field is present.
type Record struct {
	LowHappiness           int     `json:"low_happiness"`
	Age                    float64 `json:"age"`
	Gender                 string  `json:"gender"`
	DailyScreenTime        float64 `json:"daily_screen_time"`
	SleepQuality           float64 `json:"sleep_quality"`
	StressLevel            float64 `json:"stress_level"`
	DaysWithoutSocialMedia float64 `json:"days_without_social_media"`
	ExerciseFrequency      float64 `json:"exercise_frequency"`
	Platform               string  `json:"platform"`
	HappinessIndex         float64 `json:"happiness_index"`
}

// Domain is the closed, ordered set of levels observed for a categorical
// field. The first level is the reference level.
type Domain struct {
	field  string
	levels []string
	index  map[string]int
}

// NewDomain builds a domain from observed values. Duplicates are collapsed
// and levels are sorted so the reference level does not depend on row order.
func NewDomain(field string, observed []string) Domain {
	levels := slices.Clone(observed)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	index := make(map[string]int, len(levels))
	for i, l := range levels {
		index[l] = i
	}
	return Domain{field: field, levels: levels, index: index}
}

// Field returns the canonical name of the categorical field.
func (d Domain) Field() string { return d.field }

// Levels returns a copy of the ordered levels.
func (d Domain) Levels() []string { return slices.Clone(d.levels) }

// Len returns the number of levels.
func (d Domain) Len() int { return len(d.levels) }

// Reference returns the reference level, or "" for an empty domain.
func (d Domain) Reference() string {
	if len(d.levels) == 0 {
		return ""
	}
	return d.levels[0]
}

// Index returns the position of value in the domain.
func (d Domain) Index(value string) (int, bool) {
	i, ok := d.index[value]
	return i, ok
}

// Contains reports whether value is a level of the domain.
func (d Domain) Contains(value string) bool {
	_, ok := d.index[value]
	return ok
}

// Stats reports what cleaning did to the raw rows.
type Stats struct {
	RawRows        int            `json:"raw_rows"`
	Retained       int            `json:"retained"`
	Dropped        int            `json:"dropped"`
	DroppedByField map[string]int `json:"dropped_by_field,omitempty"`
}

// Dataset is the cleaned record set plus the categorical domains fixed at
// load time.
type Dataset struct {
	Records  []Record
	Gender   Domain
	Platform Domain
	Stats    Stats
}

// Labels returns the outcome column.
func (d *Dataset) Labels() []int {
	labels := make([]int, len(d.Records))
	for i, r := range d.Records {
		labels[i] = r.LowHappiness
	}
	return labels
}

// LowHappiness derives the binary outcome from a happiness index.
func LowHappiness(happiness float64) int {
	if happiness <= LowHappinessCutoff {
		return 1
	}
	return 0
}

// missingColumnError names the absent header.
func missingColumnError(raw string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, raw)
}
