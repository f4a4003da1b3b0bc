package draft

import (
	"fmt"
	"strings"
)

// Milestone is a named funding sub-goal. Target holds the text typed into the
// target input; TargetAmount parses it.
type Milestone struct {
	Label  int
	Name   string
	Target string
}

// NameField is the generated input name for the milestone name.
func (m Milestone) NameField() string { return fmt.Sprintf("milestoneName-%d", m.Label) }

// TargetField is the generated input name for the milestone target.
func (m Milestone) TargetField() string { return fmt.Sprintf("milestoneTarget-%d", m.Label) }

// TargetAmount parses the target. An empty target is zero.
func (m Milestone) TargetAmount() (float64, error) {
	s := strings.TrimSpace(m.Target)
	if s == "" {
		return 0, nil
	}
	return ParseNumber(s)
}

// AddMilestone appends an empty milestone and returns its label.
func (m *Manager) AddMilestone() int {
	label := len(m.milestones) + 1
	m.milestones = append(m.milestones, Milestone{Label: label})
	return label
}

// RemoveMilestone drops the most recently added milestone. No-op when empty.
func (m *Manager) RemoveMilestone() bool {
	if len(m.milestones) == 0 {
		return false
	}
	m.milestones = m.milestones[:len(m.milestones)-1]
	return true
}

// SetMilestone updates the inputs of the milestone with the given label.
func (m *Manager) SetMilestone(label int, name, target string) error {
	if label < 1 || label > len(m.milestones) {
		return fmt.Errorf("no milestone %d", label)
	}
	m.milestones[label-1].Name = name
	m.milestones[label-1].Target = target
	return nil
}

// Milestones returns a copy of the milestone list.
func (m *Manager) Milestones() []Milestone {
	out := make([]Milestone, len(m.milestones))
	copy(out, m.milestones)
	return out
}

// milestoneInput resolves a generated field name to a milestone index and
// whether it is the target input.
func (m *Manager) milestoneInput(name string) (idx int, target bool, ok bool) {
	for i, ms := range m.milestones {
		switch name {
		case ms.NameField():
			return i, false, true
		case ms.TargetField():
			return i, true, true
		}
	}
	return 0, false, false
}
