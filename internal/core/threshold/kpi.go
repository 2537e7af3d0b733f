package threshold

import (
	"errors"
	"fmt"
	"regexp"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether p is a zero-padded "YYYY-MM" month.
// Periods are ordered by string comparison everywhere, so nothing else is accepted.
func ValidPeriod(p string) bool {
	return periodPattern.MatchString(p)
}

// CheckPeriod returns an error naming the field when p is not a valid period.
func CheckPeriod(field, p string) error {
	if !ValidPeriod(p) {
		return fmt.Errorf("%s %q is not a YYYY-MM period", field, p)
	}
	return nil
}

// Mode selects how bands are applied.
type Mode string

const (
	// ModeFixed compares achievement (value / target, in percent) against static bands.
	ModeFixed Mode = "fixed"
	// ModeDynamic applies bands that were resolved from history by an external job.
	// Bands are in value units; nothing is recomputed here.
	ModeDynamic Mode = "dynamic"
)

// Mark tags a KPI value row. It is either Normal or ManualException.
type Mark interface {
	isMark()
}

// Normal is the default mark of an ingested value.
type Normal struct{}

// ManualException excludes a period from colour aggregation.
type ManualException struct {
	Reason string
}

func (Normal) isMark()          {}
func (ManualException) isMark() {}

// IsException reports whether the mark excludes its period from rollups.
func IsException(m Mark) bool {
	_, ok := m.(ManualException)
	return ok
}

// Value is one period of a KPI time series.
type Value struct {
	Period string
	Value  float64
	Target float64 // per-period target; zero means "use the KPI target"
	Mark   Mark
}

// KPI is the evaluator's view of an indicator.
type KPI struct {
	ID         string
	Name       string
	Target     float64
	Thresholds []Version
	Values     []Value // ordered by period, oldest first
}

// Band is a half-open range [Min, Max). A nil bound is unbounded.
type Band struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Contains reports whether x lies within the band.
func (b Band) Contains(x float64) bool {
	if b.Min != nil && x < *b.Min {
		return false
	}
	if b.Max != nil && x >= *b.Max {
		return false
	}
	return true
}

// Version is one revision of a KPI's threshold configuration.
type Version struct {
	Version       int
	Mode          Mode
	EffectiveFrom string // period the version applies from; empty applies always
	Green         *Band
	Yellow        *Band
	Red           *Band
}

// Validate checks the version can be applied.
func (v Version) Validate() error {
	if v.Mode != ModeFixed && v.Mode != ModeDynamic {
		return fmt.Errorf("unknown threshold mode %q", v.Mode)
	}
	if v.EffectiveFrom != "" {
		if err := CheckPeriod("effective_from", v.EffectiveFrom); err != nil {
			return err
		}
	}
	if v.Green == nil && v.Yellow == nil && v.Red == nil {
		if v.Mode == ModeDynamic {
			return errors.New("dynamic thresholds have not been resolved")
		}
		return errors.New("no threshold bands configured")
	}
	for _, nb := range []struct {
		name string
		band *Band
	}{{"green", v.Green}, {"yellow", v.Yellow}, {"red", v.Red}} {
		if nb.band == nil || nb.band.Min == nil || nb.band.Max == nil {
			continue
		}
		if *nb.band.Min >= *nb.band.Max {
			return fmt.Errorf("%s band min %.2f is not below max %.2f", nb.name, *nb.band.Min, *nb.band.Max)
		}
	}
	return nil
}

// match returns the highest qualifying band. Priority: green > yellow > red.
// The boolean is false when x falls outside every configured band.
func (v Version) match(x float64) (Status, bool) {
	if v.Green != nil && v.Green.Contains(x) {
		return StatusGreen, true
	}
	if v.Yellow != nil && v.Yellow.Contains(x) {
		return StatusYellow, true
	}
	if v.Red != nil && v.Red.Contains(x) {
		return StatusRed, true
	}
	return StatusRed, false
}

// ActiveVersion selects the threshold version for a period: the highest
// version whose EffectiveFrom is not after the period, else the highest
// version overall. Periods compare lexically ("2024-01" < "2024-02").
func ActiveVersion(versions []Version, period string) (Version, error) {
	if len(versions) == 0 {
		return Version{}, errors.New("no threshold versions configured")
	}

	var (
		best     Version
		found    bool
		fallback = versions[0]
	)
	for _, v := range versions {
		if v.EffectiveFrom != "" {
			if err := CheckPeriod("effective_from", v.EffectiveFrom); err != nil {
				return Version{}, fmt.Errorf("version %d: %w", v.Version, err)
			}
		}
		if v.Version > fallback.Version {
			fallback = v
		}
		if v.EffectiveFrom != "" && period != "" && v.EffectiveFrom > period {
			continue
		}
		if !found || v.Version > best.Version {
			best = v
			found = true
		}
	}
	if !found {
		return fallback, nil
	}
	return best, nil
}

// Fixed builds the common "green ≥ g, yellow ≥ y, red < y" fixed configuration.
func Fixed(greenMin, yellowMin float64) Version {
	g, y := greenMin, yellowMin
	return Version{
		Version: 1,
		Mode:    ModeFixed,
		Green:   &Band{Min: &g},
		Yellow:  &Band{Min: &y, Max: &g},
		Red:     &Band{Max: &y},
	}
}
