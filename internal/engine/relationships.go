// Relationship dynamics: initial district bonds and hostility toward killers.
package engine

import "github.com/talgya/tribute-arena/internal/agents"

// HostilityPenalty is the trust each living friend of a victim loses
// toward the attacker.
const HostilityPenalty = -30

// seedTrust creates the starting bonds: district partners, and career
// tributes across districts when the career pact is on.
func seedTrust(tributes []*agents.Tribute, careerPact bool) {
	for _, a := range tributes {
		for _, b := range tributes {
			if a.ID == b.ID {
				continue
			}
			switch {
			case a.District == b.District:
				agents.ModifyTrust(a, b.ID, DistrictTrust)
			case careerPact && a.District.IsCareer() && b.District.IsCareer():
				agents.ModifyTrust(a, b.ID, CareerTrust)
			}
		}
	}
}

// PropagateHostility turns the victim's living friends against the
// attacker. One hop only; friends of friends are unaffected.
func PropagateHostility(attackerID agents.AgentID, victim *agents.Tribute, all []*agents.Tribute) {
	for _, other := range all {
		if other.ID == attackerID || other.ID == victim.ID || !other.Alive {
			continue
		}
		rel, ok := victim.Relationships[other.ID]
		if !ok || !rel.Category().Friendly() {
			continue
		}
		agents.ModifyTrust(other, attackerID, HostilityPenalty)
	}
}
