package reminder

import (
	"strconv"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Key identifica um lembrete: o mesmo lead com outro horário é outro lembrete.
type Key string

func KeyFor(leadID string, at time.Time) Key {
	return Key(leadID + "@" + strconv.FormatInt(at.UTC().UnixNano(), 10))
}

type candidate struct {
	key  Key
	lead entity.Lead
	due  time.Time
}

type reconcilePlan struct {
	arm    []candidate
	keep   []candidate
	cancel []Key
}

// plan compara o que já está armado com o snapshot atual. Só entram leads
// com próxima ação estritamente no futuro.
func plan(armed map[Key]struct{}, leads []entity.Lead, now time.Time) reconcilePlan {
	var p reconcilePlan
	wanted := make(map[Key]struct{}, len(leads))

	for i := range leads {
		l := leads[i]
		if l.ID == "" || l.NextActionAt == nil || l.NextActionAt.IsZero() {
			continue
		}
		due := *l.NextActionAt
		if !due.After(now) {
			continue
		}
		key := KeyFor(l.ID, due)
		if _, dup := wanted[key]; dup {
			continue
		}
		wanted[key] = struct{}{}

		c := candidate{key: key, lead: l, due: due}
		if _, ok := armed[key]; ok {
			p.keep = append(p.keep, c)
		} else {
			p.arm = append(p.arm, c)
		}
	}

	for key := range armed {
		if _, ok := wanted[key]; !ok {
			p.cancel = append(p.cancel, key)
		}
	}
	return p
}
