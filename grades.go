package scitech

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed grades.yaml
var gradesYAML []byte

// ErrUnknownGrade is returned when a grade id is not in the catalog
var ErrUnknownGrade = errors.New("unknown grade")

var (
	gradesOnce sync.Once
	grades     []GradeLevel
	gradesErr  error
)

// ParseGrades decodes a grade catalog and checks that ids are unique
func ParseGrades(data []byte) ([]GradeLevel, error) {
	var list []GradeLevel
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse grades: %w", err)
	}

	seen := make(map[string]bool, len(list))
	for i, g := range list {
		if g.ID == "" || g.Label == "" {
			return nil, fmt.Errorf("grade %d: id and label are required", i)
		}
		if seen[g.ID] {
			return nil, fmt.Errorf("duplicate grade id: %s", g.ID)
		}
		seen[g.ID] = true
	}
	return list, nil
}

// Grades returns the embedded grade catalog in display order
func Grades() []GradeLevel {
	gradesOnce.Do(func() {
		grades, gradesErr = ParseGrades(gradesYAML)
	})
	if gradesErr != nil {
		// the catalog is compiled in; a bad file is a build defect
		panic(gradesErr)
	}
	out := make([]GradeLevel, len(grades))
	copy(out, grades)
	return out
}

// GradeByID looks up a grade in the catalog
func GradeByID(id string) (GradeLevel, error) {
	for _, g := range Grades() {
		if g.ID == id {
			return g, nil
		}
	}
	return GradeLevel{}, fmt.Errorf("%w: %s", ErrUnknownGrade, id)
}
