package taskgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"maintenance-dashboard/internal/models"
)

func TestScoreStaff(t *testing.T) {
	req := Requirement{Area: "第1工場", SkillLevel: "上級"}
	tests := []struct {
		name   string
		member models.StaffMember
		want   int
	}{
		{"no match no skills", models.StaffMember{Area: "本社"}, 0},
		{"department only", models.StaffMember{Area: "第1工場"}, 50},
		{"skill area and level", models.StaffMember{Skills: []models.Skill{{Level: "上級", Area: "第1工場"}}}, 90},
		{"level on another skill", models.StaffMember{Area: "第1工場", Skills: []models.Skill{{Level: "初級"}, {Level: "上級"}}}, 90},
		{"skills without match", models.StaffMember{Skills: []models.Skill{{Level: "初級", Area: "第3工場"}}}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreStaff(tt.member, req))
		})
	}
}

func TestScoreStaffEmptyRequirementMatchesNobody(t *testing.T) {
	member := models.StaffMember{Skills: []models.Skill{{Type: "電気"}}}
	assert.Equal(t, 10, ScoreStaff(member, Requirement{}))
}

func TestBestStaff(t *testing.T) {
	pool := []models.StaffMember{
		{ID: "S1", Skills: []models.Skill{{Level: "上級"}}},
		{ID: "S2", Area: "第1工場"},
		{ID: "S3", Area: "第1工場"},
	}
	best, score := BestStaff(pool, Requirement{Area: "第1工場", SkillLevel: "上級"})
	require.NotNil(t, best)
	assert.Equal(t, "S2", best.ID, "ties keep pool order")
	assert.Equal(t, 50, score)
}

func TestBestStaffNoneWhenAllZero(t *testing.T) {
	best, score := BestStaff([]models.StaffMember{{ID: "S1"}, {ID: "S2"}}, Requirement{Area: "X"})
	assert.Nil(t, best)
	assert.Zero(t, score)

	best, _ = BestStaff(nil, Requirement{})
	assert.Nil(t, best)
}

func genSkill(rt *rapid.T, label string) models.Skill {
	return models.Skill{
		Type:  rapid.SampledFrom([]string{"機械", "電気", "計装"}).Draw(rt, label+"_type"),
		Level: rapid.SampledFrom([]string{"初級", "中級", "上級"}).Draw(rt, label+"_level"),
		Area:  rapid.SampledFrom([]string{"第1工場", "第2工場", "本社"}).Draw(rt, label+"_area"),
	}
}

func TestProperty_AddingSkillNeverLowersScore(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		req := Requirement{
			Area:       rapid.SampledFrom([]string{"", "第1工場", "第2工場"}).Draw(rt, "req_area"),
			SkillLevel: rapid.SampledFrom([]string{"", "中級", "上級"}).Draw(rt, "req_level"),
		}
		member := models.StaffMember{Area: rapid.SampledFrom([]string{"", "第1工場", "本社"}).Draw(rt, "dept")}
		n := rapid.IntRange(0, 4).Draw(rt, "skills")
		for i := 0; i < n; i++ {
			member.Skills = append(member.Skills, genSkill(rt, "skill"))
		}
		before := ScoreStaff(member, req)
		member.Skills = append(member.Skills, genSkill(rt, "added"))
		after := ScoreStaff(member, req)
		if after < before {
			rt.Fatalf("score dropped from %d to %d", before, after)
		}
	})
}

func TestProperty_BestStaffNeverPicksZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		req := Requirement{Area: "第1工場", SkillLevel: "上級"}
		n := rapid.IntRange(0, 6).Draw(rt, "pool")
		pool := make([]models.StaffMember, n)
		for i := range pool {
			if rapid.Bool().Draw(rt, "has_skill") {
				pool[i].Skills = []models.Skill{genSkill(rt, "skill")}
			}
			pool[i].Area = rapid.SampledFrom([]string{"", "第1工場"}).Draw(rt, "dept")
		}
		best, score := BestStaff(pool, req)
		if best == nil {
			for _, m := range pool {
				if ScoreStaff(m, req) > 0 {
					rt.Fatalf("missed a positive candidate")
				}
			}
			return
		}
		if score <= 0 {
			rt.Fatalf("picked a zero score candidate")
		}
		for _, m := range pool {
			if ScoreStaff(m, req) > score {
				rt.Fatalf("picked %d but %d available", score, ScoreStaff(m, req))
			}
		}
	})
}
