package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/orbitfund/orbitfund/internal/draft"
)

// draftFile is a mission written as YAML for non-interactive submission.
// File paths are relative to the YAML file.
type draftFile struct {
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	Goals           string `yaml:"goals"`
	Type            string `yaml:"type"`
	TeamInfo        string `yaml:"team_info"`
	FundingGoal     string `yaml:"funding_goal"`
	BudgetBreakdown string `yaml:"budget_breakdown"`
	Rewards         string `yaml:"rewards"`
	LaunchDate      string `yaml:"launch_date"`
	EndTime         string `yaml:"end_time"`
	TermsAgree      bool   `yaml:"terms_agree"`
	AccuracyConfirm bool   `yaml:"accuracy_confirm"`

	Milestones []struct {
		Name   string `yaml:"name"`
		Target string `yaml:"target"`
	} `yaml:"milestones"`

	Images    []string `yaml:"images"`
	Video     []string `yaml:"video"`
	Documents []string `yaml:"documents"`
}

func loadDraftFile(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	var df draftFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parsing draft %s: %w", path, err)
	}
	return &df, nil
}

// apply fills mgr from the file, staging files through the same selection
// path the picker uses.
func (df *draftFile) apply(mgr *draft.Manager, baseDir string) error {
	values := []struct{ name, value string }{
		{draft.FieldTitle, df.Title},
		{draft.FieldDescription, df.Description},
		{draft.FieldGoals, df.Goals},
		{draft.FieldType, df.Type},
		{draft.FieldTeamInfo, df.TeamInfo},
		{draft.FieldFundingGoal, df.FundingGoal},
		{draft.FieldBudgetBreakdown, df.BudgetBreakdown},
		{draft.FieldRewards, df.Rewards},
		{draft.FieldLaunchDate, df.LaunchDate},
		{draft.FieldEndTime, df.EndTime},
	}
	for _, v := range values {
		if err := mgr.SetValue(v.name, v.value); err != nil {
			return err
		}
	}
	if err := mgr.SetChecked(draft.FieldTermsAgree, df.TermsAgree); err != nil {
		return err
	}
	if err := mgr.SetChecked(draft.FieldAccuracyConfirm, df.AccuracyConfirm); err != nil {
		return err
	}

	for _, ms := range df.Milestones {
		label := mgr.AddMilestone()
		if err := mgr.SetMilestone(label, ms.Name, ms.Target); err != nil {
			return err
		}
	}

	files := map[draft.Category][]string{
		draft.CategoryImages:    df.Images,
		draft.CategoryVideo:     df.Video,
		draft.CategoryDocuments: df.Documents,
	}
	for _, c := range draft.Categories {
		var paths []string
		for _, p := range files[c] {
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			if !c.Accepts(p) {
				return fmt.Errorf("%s: not accepted for %s", p, c.Label())
			}
			paths = append(paths, p)
		}
		if len(paths) == 0 {
			continue
		}
		sel, err := draft.SelectPaths(paths...)
		if err != nil {
			return err
		}
		mgr.AddFiles(c, sel)
	}
	return nil
}
