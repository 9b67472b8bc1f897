package aggregate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"maintenance-dashboard/internal/models"
)

const riskScale = 5

// Rank defaults. Assessments without a value land in rank 1. Text that names no known rank
// lands in rank 3. The two constants disagree and are kept as the imported data expects.
const (
	missingRank  = 1
	unmappedRank = 3
)

// severityRanks is the 非常に低い..非常に高い scale, magnitudeRanks the 小さい..非常に大きい scale.
// 中程度 appears on both with the same rank; severity is consulted first.
var (
	severityRanks = map[string]int{
		"非常に低い": 1,
		"低い":    2,
		"中程度":   3,
		"高い":    4,
		"非常に高い": 5,
	}
	magnitudeRanks = map[string]int{
		"小さい":    1,
		"中程度":    3,
		"大きい":    4,
		"非常に大きい": 5,
	}
)

type RiskMatrix struct {
	Z          [][]int  `json:"z"`
	X          []string `json:"x"`
	Y          []string `json:"y"`
	Type       string   `json:"type"`
	Colorscale string   `json:"colorscale"`
	ShowScale  bool     `json:"showscale"`
}

func (RiskMatrix) Kind() Kind { return KindRiskMatrix }

// EmptyRiskMatrix returns the 5×5 all-zero heatmap with its fixed axis labels.
func EmptyRiskMatrix() RiskMatrix {
	m := RiskMatrix{
		Z:          make([][]int, riskScale),
		X:          make([]string, riskScale),
		Y:          make([]string, riskScale),
		Type:       "heatmap",
		Colorscale: "YlOrRd",
		ShowScale:  true,
	}
	for i := 0; i < riskScale; i++ {
		m.Z[i] = make([]int, riskScale)
		m.X[i] = "信頼性" + strconv.Itoa(i+1)
		m.Y[i] = "影響度" + strconv.Itoa(i+1)
	}
	return m
}

// RiskMatrixOf counts assessments into z[impact-1][reliability-1]. Assessments whose rank
// falls outside 1..5 are not counted.
func RiskMatrixOf(assessments []models.RiskAssessment) RiskMatrix {
	m := EmptyRiskMatrix()
	for _, a := range assessments {
		impact, ok := ResolveRank(a.Impact)
		if !ok {
			continue
		}
		reliability, ok := ResolveRank(a.Reliability)
		if !ok {
			continue
		}
		m.Z[impact-1][reliability-1]++
	}
	return m
}

// ResolveRank turns a stored rank into 1..5. Numbers, numeric text (full-width digits
// included) and the Japanese adjectives are accepted. The second value is false for a
// number outside 1..5 or a fraction.
func ResolveRank(value any) (int, bool) {
	switch v := value.(type) {
	case nil:
		return missingRank, true
	case int:
		return checkRank(float64(v))
	case int32:
		return checkRank(float64(v))
	case int64:
		return checkRank(float64(v))
	case float32:
		return checkRank(float64(v))
	case float64:
		return checkRank(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return unmappedRank, true
		}
		return checkRank(f)
	case []byte:
		return resolveText(string(v))
	case string:
		return resolveText(v)
	default:
		return unmappedRank, true
	}
}

func resolveText(raw string) (int, bool) {
	text := strings.TrimSpace(norm.NFKC.String(raw))
	if text == "" {
		return missingRank, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return checkRank(f)
	}
	if rank, ok := severityRanks[text]; ok {
		return rank, true
	}
	if rank, ok := magnitudeRanks[text]; ok {
		return rank, true
	}
	return unmappedRank, true
}

func checkRank(f float64) (int, bool) {
	if f != math.Trunc(f) || f < 1 || f > riskScale {
		return 0, false
	}
	return int(f), true
}
