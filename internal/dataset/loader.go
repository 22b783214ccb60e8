package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads and cleans the survey CSV at path. A missing file is reported
// with ErrDataNotFound and the expected path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: expected %s", ErrDataNotFound, path)
		}
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// Read parses CSV from r. The first row must be the header.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty data file: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Enforce the header's width on every following row.
	cr.FieldsPerRecord = len(header)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return Clean(header, rows)
}

// Clean applies the cleaning policy to raw rows:
//
//   - unit-suffixed headers are mapped to canonical fields and all other
//     columns are discarded;
//   - categorical domains are established from every raw row, before any
//     row is dropped;
//   - low_happiness is derived from happiness_index;
//   - rows with a missing value in any retained field are dropped.
func Clean(header []string, rows [][]string) (*Dataset, error) {
	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var genders, platforms []string
	for _, row := range rows {
		if v, ok := cell(row, idx[FieldGender]); ok {
			genders = append(genders, v)
		}
		if v, ok := cell(row, idx[FieldPlatform]); ok {
			platforms = append(platforms, v)
		}
	}

	ds := &Dataset{
		Records:  make([]Record, 0, len(rows)),
		Gender:   NewDomain(FieldGender, genders),
		Platform: NewDomain(FieldPlatform, platforms),
		Stats: Stats{
			RawRows:        len(rows),
			DroppedByField: make(map[string]int),
		},
	}

	for _, row := range rows {
		rec, missing := parseRow(row, idx)
		if len(missing) > 0 {
			ds.Stats.Dropped++
			for _, f := range missing {
				ds.Stats.DroppedByField[f]++
			}
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	ds.Stats.Retained = len(ds.Records)

	return ds, nil
}

// Table renders the cleaned records back into raw header layout. Cleaning
// the result yields the same records.
func (d *Dataset) Table() (header []string, rows [][]string) {
	header = make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Raw
	}

	rows = make([][]string, len(d.Records))
	for i, r := range d.Records {
		rows[i] = []string{
			formatFloat(r.Age),
			r.Gender,
			formatFloat(r.DailyScreenTime),
			formatFloat(r.SleepQuality),
			formatFloat(r.StressLevel),
			formatFloat(r.DaysWithoutSocialMedia),
			formatFloat(r.ExerciseFrequency),
			r.Platform,
			formatFloat(r.HappinessIndex),
		}
	}
	return header, rows
}

// Reclean applies the cleaning rules to the already cleaned records. The
// result holds the same records.
func (d *Dataset) Reclean() (*Dataset, error) {
	header, rows := d.Table()
	return Clean(header, rows)
}

// resolveColumns maps each canonical field to its position in header.
func resolveColumns(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		pos[strings.TrimSpace(h)] = i
	}

	idx := make(map[string]int, len(columns))
	for _, c := range columns {
		i, ok := pos[c.Raw]
		if !ok {
			return nil, missingColumnError(c.Raw)
		}
		idx[c.Field] = i
	}
	return idx, nil
}

// parseRow converts a raw row into a Record. It returns the canonical names
// of every field that is missing or unparsable.
func parseRow(row []string, idx map[string]int) (Record, []string) {
	var (
		rec     Record
		missing []string
	)

	num := func(field string, dst *float64) {
		v, ok := cell(row, idx[field])
		if !ok {
			missing = append(missing, field)
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			missing = append(missing, field)
			return
		}
		*dst = f
	}
	str := func(field string, dst *string) {
		v, ok := cell(row, idx[field])
		if !ok {
			missing = append(missing, field)
			return
		}
		*dst = v
	}

	num(FieldAge, &rec.Age)
	str(FieldGender, &rec.Gender)
	num(FieldScreenTime, &rec.DailyScreenTime)
	num(FieldSleepQuality, &rec.SleepQuality)
	num(FieldStressLevel, &rec.StressLevel)
	num(FieldDaysOffline, &rec.DaysWithoutSocialMedia)
	num(FieldExerciseFreq, &rec.ExerciseFrequency)
	str(FieldPlatform, &rec.Platform)
	num(FieldHappinessIndex, &rec.HappinessIndex)

	if len(missing) == 0 {
		rec.LowHappiness = LowHappiness(rec.HappinessIndex)
	}
	return rec, missing
}

// cell returns the trimmed value at i, or false when it is absent or one of
// the missing-value markers.
func cell(row []string, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[i])
	switch strings.ToLower(v) {
	case "", "na", "nan", "null":
		return "", false
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
