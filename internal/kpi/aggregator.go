// Package kpi calcula os números do dashboard a partir do snapshot de leads
// visíveis para o viewer. Todas as funções são puras e recebem o "agora".
package kpi

import (
	"math"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const DefaultTrailingMonths = 6

// Metas por usuário comum, por papel do viewer.
const (
	UserQuota       = 3
	TeamLeaderQuota = 5
	AdminQuota      = 7

	IncentivePerUser = 5
	BonusPerUser     = 7
)

type MonthBucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// inMonth: [início do mês, início do mês seguinte), no fuso de "start".
func inMonth(ts, start time.Time) bool {
	if ts.IsZero() {
		return false
	}
	ts = ts.In(start.Location())
	next := start.AddDate(0, 1, 0)
	return !ts.Before(start) && ts.Before(next)
}

func MonthAccepted(leads []entity.Lead, now time.Time) int {
	start := StartOfMonth(now)
	n := 0
	for i := range leads {
		if leads[i].Status.Is(entity.StatusAccepted) && inMonth(leads[i].CreatedAt, start) {
			n++
		}
	}
	return n
}

func OverdueCount(leads []entity.Lead, now time.Time) int {
	n := 0
	for i := range leads {
		switch leads[i].Status.Kind() {
		case entity.StatusAccepted, entity.StatusFollowUp:
			continue
		}
		if at := leads[i].NextActionAt; at != nil && !at.IsZero() && at.Before(now) {
			n++
		}
	}
	return n
}

func OpenCount(leads []entity.Lead) int {
	n := 0
	for i := range leads {
		switch leads[i].Status.Kind() {
		case entity.StatusAccepted, entity.StatusClosed, entity.StatusRejected:
		default:
			n++
		}
	}
	return n
}

func FollowUpCount(leads []entity.Lead) int {
	n := 0
	for i := range leads {
		if leads[i].Status.Is(entity.StatusFollowUp) {
			n++
		}
	}
	return n
}

// TrailingMonths devolve n meses de calendário, do mais antigo ao atual.
func TrailingMonths(leads []entity.Lead, now time.Time, n int) []MonthBucket {
	if n <= 0 {
		return []MonthBucket{}
	}
	current := StartOfMonth(now)
	buckets := make([]MonthBucket, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		m := time.Date(current.Year(), current.Month()-time.Month(n-1-i), 1, 0, 0, 0, 0, current.Location())
		key := m.Format("2006-01")
		buckets[i] = MonthBucket{Key: key, Label: m.Format("Jan")}
		index[key] = i
	}

	for i := range leads {
		l := &leads[i]
		if l.CreatedAt.IsZero() || !l.Status.Is(entity.StatusAccepted) {
			continue
		}
		key := l.CreatedAt.In(current.Location()).Format("2006-01")
		if idx, ok := index[key]; ok {
			buckets[idx].Count++
		}
	}
	return buckets
}

func perUserQuota(role entity.Role) int {
	switch role {
	case entity.RoleAdmin:
		return AdminQuota
	case entity.RoleTeamLeader:
		return TeamLeaderQuota
	default:
		return UserQuota
	}
}

// multiplier: 1 para user; para papéis privilegiados, o tamanho da equipe (mínimo 1).
func multiplier(role entity.Role, teamSize int) int {
	if !role.Privileged() {
		return 1
	}
	if teamSize < 1 {
		return 1
	}
	return teamSize
}

func Target(role entity.Role, teamSize int) int {
	return perUserQuota(role) * multiplier(role, teamSize)
}

func IncentiveMark(role entity.Role, teamSize int) int {
	return IncentivePerUser * multiplier(role, teamSize)
}

func BonusMark(role entity.Role, teamSize int) int {
	return BonusPerUser * multiplier(role, teamSize)
}

// ProgressPercent nunca devolve NaN/Inf: meta <= 0 dá 0%.
func ProgressPercent(accepted, target int) int {
	if target <= 0 || accepted <= 0 {
		return 0
	}
	pct := 100 * float64(accepted) / float64(target)
	return int(math.Round(math.Min(100, pct)))
}

func Remaining(accepted, target int) int {
	return max(0, target-accepted)
}

func Scope(role entity.Role) string {
	if role.Privileged() {
		return "team-wide"
	}
	return "per-user"
}
