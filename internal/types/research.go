package types

import "strings"

// ResearchReportSet holds the four deep-research reports produced by the
// research fan-out. The set is all-or-nothing: a partially populated set is
// never handed to downstream stages.
type ResearchReportSet struct {
	CompanyStrategyReport string `json:"company_strategy_report" validate:"required"`
	RoleSuccessReport     string `json:"role_success_report" validate:"required"`
	TeamCultureReport     string `json:"team_culture_report" validate:"required"`
	DomainKnowledgeReport string `json:"domain_knowledge_report" validate:"required"`
}

// Complete reports whether every report in the set is non-empty.
func (r *ResearchReportSet) Complete() bool {
	return r != nil &&
		strings.TrimSpace(r.CompanyStrategyReport) != "" &&
		strings.TrimSpace(r.RoleSuccessReport) != "" &&
		strings.TrimSpace(r.TeamCultureReport) != "" &&
		strings.TrimSpace(r.DomainKnowledgeReport) != ""
}

// Combined renders the four reports as a single labeled document for
// downstream consumption by the guide synthesizer and judges.
func (r *ResearchReportSet) Combined() string {
	var sb strings.Builder
	sb.WriteString("Company Strategy Report:\n")
	sb.WriteString(r.CompanyStrategyReport)
	sb.WriteString("\n\nRole Success Report:\n")
	sb.WriteString(r.RoleSuccessReport)
	sb.WriteString("\n\nTeam Culture Report:\n")
	sb.WriteString(r.TeamCultureReport)
	sb.WriteString("\n\nDomain Knowledge Report:\n")
	sb.WriteString(r.DomainKnowledgeReport)
	return sb.String()
}
