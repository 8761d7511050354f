// Package model contains domain models passed between layers.
package model

// DefaultRating is the rating a participant starts with when none is given.
const DefaultRating = 1000

// Participant is a rated member of the roster.
type Participant struct {
	ID     int    `json:"id"`     // stable identifier assigned by the roster store
	Name   string `json:"name"`   // unique display name
	Rating int    `json:"rating"` // skill rating, changed only by explicit update
}

// Team is one side of a match inside a partition.
type Team struct {
	Number  int           `json:"team_number"` // 1-based position inside the partition
	Members []Participant `json:"members"`
	Rating  int           `json:"rating"` // effective rating: ratings plus in-team synergy
}

// Partition is one complete assignment of the roster to teams.
// Teams at positions 2k and 2k+1 play against each other.
type Partition struct {
	Teams   []Team `json:"teams"`
	Fitness int    `json:"fitness"` // total absolute imbalance, lower is better
}

// TeamCount returns the number of teams in the partition.
func (p Partition) TeamCount() int {
	return len(p.Teams)
}

// MemberIDs returns the participant ids of every team, in team order.
func (p Partition) MemberIDs() [][]int {
	out := make([][]int, len(p.Teams))
	for i, t := range p.Teams {
		ids := make([]int, len(t.Members))
		for j, m := range t.Members {
			ids[j] = m.ID
		}
		out[i] = ids
	}
	return out
}

// Matches returns the rating difference of every opposing pair of teams.
func (p Partition) Matches() []int {
	out := make([]int, 0, len(p.Teams)/2)
	for i := 0; i+1 < len(p.Teams); i += 2 {
		d := p.Teams[i].Rating - p.Teams[i+1].Rating
		if d < 0 {
			d = -d
		}
		out = append(out, d)
	}
	return out
}
