package services

import (
	"reflect"
	"sort"
	"strings"

	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/survey"
)

// Change significance of a profile update.
const (
	ChangeNone  = "none"
	ChangeMinor = "minor"
	ChangeMajor = "major"
)

// baseCriticalFields are critical for every profile, independent of the
// survey's per-field validation flags.
var baseCriticalFields = []string{"email", "civilite"}

// Significance is the outcome of classifying an update: whether it can
// be applied immediately or must wait for admin validation, and which
// critical fields moved.
type Significance struct {
	Level         string
	CriticalMoved []string
}

// IsMajor reports whether the update needs the clone protocol.
func (s Significance) IsMajor() bool { return s.Level == ChangeMajor }

// Status renders the validation status stored on the pending clone.
func (s Significance) Status() string {
	switch s.Level {
	case ChangeMajor:
		return models.StatusMajorUpdatePrefix + strings.Join(s.CriticalMoved, ", ")
	case ChangeMinor:
		return models.StatusMinorUpdate
	default:
		return ""
	}
}

// CriticalFields is the set of field names whose change makes an update
// major: the survey's validate-on-change flags, the base set, and the
// business wall triggers.
func CriticalFields(profile *survey.Profile) map[string]bool {
	critical := make(map[string]bool)
	for _, name := range profile.ValidateChangeFields() {
		critical[name] = true
	}
	for _, name := range baseCriticalFields {
		critical[name] = true
	}
	for _, name := range models.BusinessWallKeys {
		critical[name] = true
	}
	return critical
}

// Classify compares the stored values with a submission and grades the
// update. Only fields present in the submission are considered.
func Classify(profile *survey.Profile, old, submitted map[string]any) Significance {
	critical := CriticalFields(profile)
	var moved []string
	changed := false
	for name, newValue := range submitted {
		if sameValue(old[name], newValue) {
			continue
		}
		changed = true
		if critical[name] {
			moved = append(moved, name)
		}
	}
	if !changed {
		return Significance{Level: ChangeNone}
	}
	if len(moved) == 0 {
		return Significance{Level: ChangeMinor}
	}
	sort.Strings(moved)
	return Significance{Level: ChangeMajor, CriticalMoved: moved}
}

// sameValue compares a stored value with a submitted one, tolerating the
// string/[]string/[]any shapes JSON round trips produce.
func sameValue(prev, next any) bool {
	prevList, prevIsList := toStringList(prev)
	nextList, nextIsList := toStringList(next)
	if prevIsList && nextIsList {
		if len(prevList) != len(nextList) {
			return false
		}
		for i := range prevList {
			if prevList[i] != nextList[i] {
				return false
			}
		}
		return true
	}
	if prevS, ok := asComparable(prev); ok {
		if nextS, ok := asComparable(next); ok {
			return prevS == nextS
		}
	}
	return reflect.DeepEqual(prev, next)
}

func toStringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func asComparable(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
