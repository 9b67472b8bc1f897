package aggregate

import (
	"strings"

	"maintenance-dashboard/internal/models"
)

// UnknownSeverity labels anomaly reports without a 重大度.
const UnknownSeverity = "不明"

type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type SeverityCounts []SeverityCount

func (SeverityCounts) Kind() Kind { return KindAnomalySeverity }

// SeverityCountsOf counts reports per severity in order of first appearance.
func SeverityCountsOf(reports []models.AnomalyReport) SeverityCounts {
	index := map[string]int{}
	out := SeverityCounts{}
	for _, r := range reports {
		severity := strings.TrimSpace(r.Severity)
		if severity == "" {
			severity = UnknownSeverity
		}
		pos, ok := index[severity]
		if !ok {
			pos = len(out)
			index[severity] = pos
			out = append(out, SeverityCount{Severity: severity})
		}
		out[pos].Count++
	}
	return out
}
