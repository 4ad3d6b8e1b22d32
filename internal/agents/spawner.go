package agents

import (
	"fmt"
	"math/rand"

	"github.com/talgya/tribute-arena/internal/world"
)

// Age range for reaped tributes, and the fixed age used without variance.
const (
	MinAge   = 12
	MaxAge   = 18
	FixedAge = 16
)

// Spawner creates tributes for a new game.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID

	// Unused names per gender, shuffled; refilled when drained.
	pools map[Gender][]string
	taken map[string]bool
}

// NewSpawner creates a spawner drawing from rng.
func NewSpawner(rng *rand.Rand) *Spawner {
	return &Spawner{
		rng:    rng,
		nextID: 1,
		pools:  make(map[Gender][]string),
		taken:  make(map[string]bool),
	}
}

// Spawn creates count tributes spread evenly across the districts,
// a male and a female from each before moving to the next district.
func (s *Spawner) Spawn(count int, useAges bool) []*Tribute {
	out := make([]*Tribute, 0, count)
	for i := 0; i < count; i++ {
		district := District((i/2)%NumDistricts + 1)
		gender := GenderMale
		if i%2 == 1 {
			gender = GenderFemale
		}
		age := FixedAge
		if useAges {
			age = s.roll(MinAge, MaxAge)
		}
		out = append(out, s.spawnOne(district, gender, age))
	}
	return out
}

func (s *Spawner) spawnOne(district District, gender Gender, age int) *Tribute {
	id := s.nextID
	s.nextID++

	return &Tribute{
		ID:            id,
		Name:          s.generateName(gender, district),
		District:      district,
		Gender:        gender,
		Age:           age,
		Stats:         s.rollStats(age, district),
		Health:        VitalMax,
		Hunger:        VitalMax,
		Thirst:        VitalMax,
		Stamina:       VitalMax,
		Alive:         true,
		Inventory:     []Item{},
		Location:      world.Unplaced,
		PrevLocation:  world.Unplaced,
		Activity:      ActivityWaiting,
		LastAction:    "Waiting for launch...",
		Relationships: make(map[AgentID]Relationship),
	}
}

func (s *Spawner) rollStats(age int, district District) Stats {
	young := age <= 13
	old := age >= 17

	st := Stats{
		Strength:     s.roll(3, 10),
		Speed:        s.roll(3, 10),
		Constitution: s.roll(3, 10),
		Intellect:    s.roll(2, 10),
		Aggression:   s.roll(2, 10),
	}
	if young {
		st.Strength -= 2
		st.Speed += 2
	}
	if old {
		st.Strength += 2
		st.Constitution++
	}

	switch district {
	case 1, 2, 4: // Careers
		st.Strength += 2
		st.Aggression += 2
		st.Constitution++
	case 7, 11: // Lumber, agriculture
		st.Constitution += 2
		st.Strength++
	case 3, 5: // Technology, power
		st.Intellect += 3
	case 9, 12: // Grain, mining
		st.Constitution++
	}
	return st
}

// roll returns a uniform integer in [lo, hi].
func (s *Spawner) roll(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

// generateName draws a name no other tribute of this spawner carries.
// Once a gender's pool is used up, names repeat with a district suffix.
func (s *Spawner) generateName(g Gender, d District) string {
	if len(s.pools[g]) == 0 {
		names := maleNames
		if g == GenderFemale {
			names = femaleNames
		}
		pool := make([]string, len(names))
		for i, j := range s.rng.Perm(len(names)) {
			pool[i] = names[j]
		}
		s.pools[g] = pool
	}
	base := s.pools[g][0]
	s.pools[g] = s.pools[g][1:]

	name := base
	if s.taken[name] {
		name = fmt.Sprintf("%s of District %d", base, int(d))
	}
	for n := 2; s.taken[name]; n++ {
		name = fmt.Sprintf("%s of District %d (%d)", base, int(d), n)
	}
	s.taken[name] = true
	return name
}

var maleNames = []string{
	"Ash", "Bram", "Cato", "Dell", "Ezra", "Finch", "Gale", "Hollis",
	"Jory", "Kell", "Linus", "Marek", "Nolan", "Oren", "Pike", "Reed",
	"Silas", "Thane", "Vance", "Wren",
}

var femaleNames = []string{
	"Ada", "Briar", "Clove", "Dara", "Elsa", "Fern", "Greta", "Hazel",
	"Iris", "Juno", "Lark", "Maren", "Nell", "Opal", "Posy", "Rue",
	"Sage", "Tamsin", "Vera", "Willa",
}
