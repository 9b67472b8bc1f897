package taskgen

import (
	"sort"

	"maintenance-dashboard/internal/models"
)

const (
	areaMatchPoints  = 50
	levelMatchPoints = 30
	hasSkillsPoints  = 10
)

// Requirement is what a strategy asks of its assignee. Empty fields match nobody.
type Requirement struct {
	Area       string
	SkillLevel string
}

func requirementOf(st models.EquipmentStrategy) Requirement {
	return Requirement{Area: st.RequiredArea, SkillLevel: st.RequiredSkillLevel}
}

// ScoreStaff adds 50 when the department or any skill area equals the required area, 30 when
// any skill level equals the required level and 10 when the member has any skill at all.
func ScoreStaff(member models.StaffMember, req Requirement) int {
	score := 0
	if req.Area != "" && (member.Area == req.Area || anySkill(member, func(s models.Skill) bool { return s.Area == req.Area })) {
		score += areaMatchPoints
	}
	if req.SkillLevel != "" && anySkill(member, func(s models.Skill) bool { return s.Level == req.SkillLevel }) {
		score += levelMatchPoints
	}
	if len(member.Skills) > 0 {
		score += hasSkillsPoints
	}
	return score
}

func anySkill(member models.StaffMember, match func(models.Skill) bool) bool {
	for _, skill := range member.Skills {
		if match(skill) {
			return true
		}
	}
	return false
}

// BestStaff returns the highest scoring member, keeping pool order among equal scores. It
// returns nil when nobody scores above zero.
func BestStaff(pool []models.StaffMember, req Requirement) (*models.StaffMember, int) {
	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(pool))
	for i, member := range pool {
		ranked[i] = scored{index: i, score: ScoreStaff(member, req)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) == 0 || ranked[0].score <= 0 {
		return nil, 0
	}
	best := pool[ranked[0].index]
	return &best, ranked[0].score
}
