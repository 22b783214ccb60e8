// Package modeltest builds deterministic survey data and trained models for
// tests of packages that sit on top of the model.
package modeltest

import (
	"encoding/csv"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/wellstat/internal/dataset"
	"github.com/abhisek/wellstat/internal/glm"
	"github.com/abhisek/wellstat/internal/model"
)

var (
	Genders   = []string{"Female", "Male", "Other"}
	Platforms = []string{"Facebook", "Instagram", "LinkedIn", "TikTok", "X (Twitter)", "YouTube"}
)

// Dataset returns n survey records drawn from a fixed logistic relationship
// between habits and low happiness. Every level of both categorical fields
// appears when n >= 18.
func Dataset(n int, seed uint64) *dataset.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	records := make([]dataset.Record, n)
	for i := range records {
		r := dataset.Record{
			Age:                    float64(16 + rng.IntN(34)),
			Gender:                 Genders[i%len(Genders)],
			DailyScreenTime:        math.Round((1+rng.Float64()*9)*10) / 10,
			SleepQuality:           float64(1 + rng.IntN(10)),
			StressLevel:            float64(1 + rng.IntN(10)),
			DaysWithoutSocialMedia: float64(rng.IntN(10)),
			ExerciseFrequency:      float64(rng.IntN(8)),
			Platform:               Platforms[(i/len(Genders))%len(Platforms)],
		}
		eta := -0.5 +
			0.45*(r.DailyScreenTime-5) -
			0.3*(r.SleepQuality-5) +
			0.35*(r.StressLevel-5) -
			0.1*r.ExerciseFrequency
		if rng.Float64() < glm.Sigmoid(eta) {
			r.HappinessIndex = float64(2 + rng.IntN(4))
		} else {
			r.HappinessIndex = float64(6 + rng.IntN(5))
		}
		r.LowHappiness = dataset.LowHappiness(r.HappinessIndex)
		records[i] = r
	}

	gender := make([]string, n)
	platform := make([]string, n)
	for i, r := range records {
		gender[i] = r.Gender
		platform[i] = r.Platform
	}
	return &dataset.Dataset{
		Records:  records,
		Gender:   dataset.NewDomain(dataset.FieldGender, gender),
		Platform: dataset.NewDomain(dataset.FieldPlatform, platform),
		Stats:    dataset.Stats{RawRows: n, Retained: n},
	}
}

// Model trains on Dataset(n, seed) and fails the test on error.
func Model(t testing.TB, n int, seed uint64) *model.Model {
	t.Helper()
	m, err := model.Train(Dataset(n, seed), glm.DefaultOptions())
	require.NoError(t, err)
	return m
}

// WriteCSV writes Dataset(n, seed) in the raw survey layout to a file in a
// temporary directory and returns its path.
func WriteCSV(t testing.TB, n int, seed uint64) string {
	t.Helper()
	header, rows := Dataset(n, seed).Table()

	path := filepath.Join(t.TempDir(), "survey.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(rows))
	return path
}

// Case returns a valid case for models trained on Dataset.
func Case() model.Case {
	return model.Case{
		Age:                    27,
		Gender:                 "Female",
		DailyScreenTime:        7.5,
		SleepQuality:           4,
		StressLevel:            8,
		DaysWithoutSocialMedia: 1,
		ExerciseFrequency:      2,
		Platform:               "Instagram",
	}
}
