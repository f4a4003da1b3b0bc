package draft

import (
	"encoding/json"
	"strings"
)

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

// RecordMilestone is a milestone as stored by the backend.
type RecordMilestone struct {
	Name   string     `json:"milestone_name"`
	Target FlexString `json:"target_amount"`
}

// MissionRecord is the mission returned by GET /my-missions/{id}.
type MissionRecord struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Goals           string            `json:"goals"`
	Type            string            `json:"type"`
	TeamInfo        string            `json:"teamInfo"`
	FundingGoal     FlexString        `json:"fundingGoal"`
	BudgetBreakdown string            `json:"budgetBreakdown"`
	Rewards         string            `json:"rewards"`
	LaunchDate      string            `json:"launchDate"`
	EndTime         string            `json:"endTime"`
	Milestones      []RecordMilestone `json:"milestones"`
	Images          []string          `json:"images"`
	Videos          []string          `json:"videos"`
	Documents       []string          `json:"documents"`
}

// datePart keeps the YYYY-MM-DD prefix of an ISO timestamp.
func datePart(s string) string {
	if i := strings.Index(s, "T"); i >= 0 {
		return s[:i]
	}
	return s
}

func (r *MissionRecord) scalarValues() map[string]string {
	return map[string]string{
		FieldTitle:           r.Title,
		FieldDescription:     r.Description,
		FieldGoals:           r.Goals,
		FieldType:            r.Type,
		FieldTeamInfo:        r.TeamInfo,
		FieldFundingGoal:     string(r.FundingGoal),
		FieldBudgetBreakdown: r.BudgetBreakdown,
		FieldRewards:         r.Rewards,
		FieldLaunchDate:      datePart(r.LaunchDate),
		FieldEndTime:         datePart(r.EndTime),
	}
}

func (r *MissionRecord) remoteFiles(c Category) []string {
	switch c {
	case CategoryImages:
		return r.Images
	case CategoryVideo:
		return r.Videos
	default:
		return r.Documents
	}
}

// Seed fills the draft from a fetched mission: scalar fields, milestones
// (recreated one by one) and the remote files of every category.
func (m *Manager) Seed(r *MissionRecord) {
	if r == nil {
		return
	}
	m.original = r.scalarValues()
	for name, v := range m.original {
		m.values[name] = v
	}

	m.milestones = nil
	for _, rm := range r.Milestones {
		label := m.AddMilestone()
		_ = m.SetMilestone(label, rm.Name, string(rm.Target))
	}

	for _, c := range Categories {
		for _, u := range r.remoteFiles(c) {
			if strings.TrimSpace(u) == "" {
				continue
			}
			m.files[c].Add(RemoteFile{URL: u})
		}
	}
}

// Change is one scalar field edited since seeding.
type Change struct {
	Field string
	Label string
	Old   string
	New   string
}

// Changes lists edited scalar fields in form order. Empty outside edit mode.
func (m *Manager) Changes() []Change {
	if m.original == nil {
		return nil
	}
	var out []Change
	for _, sec := range m.sections {
		for _, f := range sec.Fields {
			old, ok := m.original[f.Name]
			if !ok {
				continue
			}
			if cur := m.values[f.Name]; cur != old {
				out = append(out, Change{Field: f.Name, Label: f.Label, Old: old, New: cur})
			}
		}
	}
	return out
}
