package classroom

import (
	"maps"
	"slices"
	"time"
)

type PollID string

// Poll is a single question vote. Responses hold at most one option index per connection.
type Poll struct {
	ID        PollID         `json:"id"`
	Question  string         `json:"question"`
	Options   []string       `json:"options"`
	OwnerID   ConnID         `json:"ownerId"`
	OwnerName string         `json:"ownerName"`
	Responses map[ConnID]int `json:"responses"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Tally counts the responses per option, in option order.
func (p Poll) Tally() []int {
	counts := make([]int, len(p.Options))
	for _, idx := range p.Responses {
		if idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}
	return counts
}

// clone detaches the returned poll from the aggregate's internal maps.
func (p *Poll) clone() Poll {
	c := *p
	c.Options = slices.Clone(p.Options)
	c.Responses = maps.Clone(p.Responses)
	if c.Responses == nil {
		c.Responses = make(map[ConnID]int)
	}
	return c
}
