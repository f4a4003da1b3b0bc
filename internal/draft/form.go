package draft

// FieldKind selects how a field is edited and validated.
type FieldKind int

const (
	KindText FieldKind = iota
	KindLongText
	KindNumber
	KindDate
	KindChoice
	KindCheckbox
	KindFiles
)

// DateLayout is the format of date fields, matching a native date input.
const DateLayout = "2006-01-02"

// Field names used by the mission form.
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldGoals           = "goals"
	FieldType            = "type"
	FieldTeamInfo        = "teamInfo"
	FieldFundingGoal     = "fundingGoal"
	FieldBudgetBreakdown = "budgetBreakdown"
	FieldRewards         = "rewards"
	FieldLaunchDate      = "launchDate"
	FieldEndTime         = "endTime"
	FieldTermsAgree      = "termsAgree"
	FieldAccuracyConfirm = "accuracyConfirm"
)

// Field is one row of the validation rule table.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Min      *float64
	Max      *float64
	MaxLen   int
	Choices  []string
	Category Category // KindFiles only
}

// Section is one wizard step.
type Section struct {
	Title      string
	Fields     []Field
	Milestones bool // milestone inputs follow the static fields
}

// HasFiles reports whether the section stages files.
func (s Section) HasFiles() bool {
	for _, f := range s.Fields {
		if f.Kind == KindFiles {
			return true
		}
	}
	return false
}

func bound(v float64) *float64 { return &v }

// MissionTypes are the accepted values of the type field.
var MissionTypes = []string{"orbital", "lunar", "planetary", "deep-space", "research", "other"}

// DefaultSections returns the mission form layout.
func DefaultSections() []Section {
	return []Section{
		{
			Title: "Mission Basics",
			Fields: []Field{
				{Name: FieldTitle, Label: "Mission Title", Kind: KindText, Required: true, MaxLen: 120},
				{Name: FieldDescription, Label: "Mission Description", Kind: KindLongText, Required: true},
				{Name: FieldGoals, Label: "Mission Goals", Kind: KindLongText, Required: true},
				{Name: FieldType, Label: "Mission Type", Kind: KindChoice, Required: true, Choices: MissionTypes},
				{Name: FieldTeamInfo, Label: "Team Information", Kind: KindLongText},
			},
		},
		{
			Title: "Funding & Timeline",
			Fields: []Field{
				{Name: FieldFundingGoal, Label: "Funding Goal", Kind: KindNumber, Required: true, Min: bound(1)},
				{Name: FieldBudgetBreakdown, Label: "Budget Breakdown", Kind: KindLongText},
				{Name: FieldRewards, Label: "Backer Rewards", Kind: KindLongText},
				{Name: FieldLaunchDate, Label: "Launch Date", Kind: KindDate, Required: true},
				{Name: FieldEndTime, Label: "Campaign End Date", Kind: KindDate, Required: true},
			},
			Milestones: true,
		},
		{
			Title: "Media & Documents",
			Fields: []Field{
				{Name: CategoryImages.FieldName(), Label: CategoryImages.Label(), Kind: KindFiles, Category: CategoryImages},
				{Name: CategoryVideo.FieldName(), Label: CategoryVideo.Label(), Kind: KindFiles, Category: CategoryVideo},
				{Name: CategoryDocuments.FieldName(), Label: CategoryDocuments.Label(), Kind: KindFiles, Category: CategoryDocuments},
			},
		},
		{
			Title: "Review & Launch",
			Fields: []Field{
				{Name: FieldTermsAgree, Label: "I agree to the Terms of Service", Kind: KindCheckbox, Required: true},
				{Name: FieldAccuracyConfirm, Label: "I confirm the information is accurate", Kind: KindCheckbox, Required: true},
			},
		},
	}
}

// milestoneTargetMin is the lower bound of every milestone target.
var milestoneTargetMin = bound(0)
