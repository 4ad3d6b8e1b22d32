package engine

import (
	"math"

	"github.com/talgya/tribute-arena/internal/agents"
)

// Combat tuning.
const (
	fleeChance        = 0.5
	combatRollMax     = 20
	minDamage         = 5.0
	damageScale       = 0.5
	armorFactor       = 0.7
	combatTrustLoss   = -50
	killHype          = 5
	firstStrikeMargin = 2 // Speed lead above which a doomed duelist strikes first
	dominanceGap      = 20
	evenGap           = 10
)

// combatVerb picks narrative text from a's view given both scores.
func combatVerb(a, b float64) string {
	verb := "fought"
	if a > b+dominanceGap {
		verb = "dominated"
	}
	if b > a+dominanceGap {
		verb = "was crushed by"
	}
	if math.Abs(a-b) < evenGap {
		verb = "clashed evenly with"
	}
	return verb
}

// combatScore rolls one side's strength in the exchange.
func (t *turn) combatScore(tr *agents.Tribute) float64 {
	st := tr.Stats
	return float64(2*st.Strength+st.Speed+tr.WeaponBonus()) +
		float64(st.Aggression)/2 +
		float64(t.rng.Intn(combatRollMax+1))
}

// tryFlee gives a hurt, faster tribute a chance to slip away.
func (t *turn) tryFlee(runner, chaser *agents.Tribute) bool {
	if runner.Health >= agents.LowHealthFlee || runner.Stats.Speed <= chaser.Stats.Speed {
		return false
	}
	if t.rng.Float64() >= fleeChance {
		return false
	}
	runner.LastAction = "Fled from " + chaser.Name
	t.logf(LogFlee, "%s fled from %s!", runner.Name, chaser.Name)
	return true
}

// fight resolves one exchange between two living tributes.
func (t *turn) fight(a, b *agents.Tribute, lethality float64) {
	if !a.Alive || !b.Alive {
		return
	}
	if t.tryFlee(a, b) || t.tryFlee(b, a) {
		return
	}

	sa, sb := t.combatScore(a), t.combatScore(b)

	toA := max(minDamage, (sb-sa)*damageScale) * lethality
	toB := max(minDamage, (sa-sb)*damageScale) * lethality
	if a.HasTrait(agents.TraitArmor) {
		toA *= armorFactor
	}
	if b.HasTrait(agents.TraitArmor) {
		toB *= armorFactor
	}
	a.Hurt(toA)
	b.Hurt(toB)

	weapon := "fists"
	if w, ok := a.BestWeapon(); ok {
		weapon = w.Name
	}
	t.logf(LogCombat, "%s %s %s using %s.", a.Name, combatVerb(sa, sb), b.Name, weapon)

	agents.ModifyTrust(a, b.ID, combatTrustLoss)
	agents.ModifyTrust(b, a.ID, combatTrustLoss)
	a.LastAttackerID, b.LastAttackerID = b.ID, a.ID
	a.Activity, b.Activity = agents.ActivityFighting, agents.ActivityFighting
	a.LastAction, b.LastAction = "Fought "+b.Name, "Fought "+a.Name

	t.envenom(a, b)
	t.envenom(b, a)

	if a.Health <= 0 && b.Health <= 0 {
		switch {
		case a.Stats.Speed > b.Stats.Speed+firstStrikeMargin:
			a.Health = 1
		case b.Stats.Speed > a.Stats.Speed+firstStrikeMargin:
			b.Health = 1
		}
	}

	switch {
	case a.Health <= 0 && b.Health <= 0:
		t.logf(LogDeath, "%s and %s killed each other in a brutal duel.", a.Name, b.Name)
		t.eliminate(a, "Died fighting "+b.Name)
		t.eliminate(b, "Died fighting "+a.Name)
	case a.Health <= 0:
		t.slay(b, a)
	case b.Health <= 0:
		t.slay(a, b)
	}
}

// envenom spends the attacker's poison vial on a still-standing opponent.
func (t *turn) envenom(attacker, victim *agents.Tribute) {
	if victim.Health <= 0 || !attacker.HasItem(agents.ItemPoisonVial) {
		return
	}
	attacker.RemoveItem(agents.ItemPoisonVial)
	victim.Status = victim.Status.With(agents.StatusPoisoned)
	t.logf(LogStatus, "%s's poisoned blade left %s Poisoned.", attacker.Name, victim.Name)
}

// slay credits the killer and eliminates the victim.
func (t *turn) slay(killer, victim *agents.Tribute) {
	killer.Kills++
	killer.Hype += killHype
	t.logf(LogDeath, "%s was killed by %s.", victim.Name, killer.Name)
	t.eliminate(victim, "Slain by "+killer.Name)
	PropagateHostility(killer.ID, victim, t.s.Tributes)
}
