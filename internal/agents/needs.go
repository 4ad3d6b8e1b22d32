package agents

// Vital bounds. Every vitals mutation goes through ClampVital.
const (
	VitalMin = 0.0
	VitalMax = 100.0
)

// Thresholds below which a tribute acts on a need.
const (
	RestThreshold   = 10 // Stamina at or below this: rest instead of moving
	LowHealthFlee   = 30 // Health below this: may flee a fight
	LowHealthCover  = 40 // Health below this: seek cover
	HurtThreshold   = 50 // Health below this: avoid enemies
	HealThreshold   = 60 // Health below this: use a healing item
	HungryThreshold = 40 // Hunger below this: seek food biomes
	EatThreshold    = 50 // Hunger below this: eat from inventory
	ThirstThreshold = 50 // Thirst below this: seek water, drink
)

// ClampVital bounds v to [VitalMin, VitalMax].
func ClampVital(v float64) float64 {
	if v < VitalMin {
		return VitalMin
	}
	if v > VitalMax {
		return VitalMax
	}
	return v
}

// Hurt lowers health, floored at zero.
func (t *Tribute) Hurt(amount float64) {
	t.Health = ClampVital(t.Health - amount)
}

// Heal raises health, capped at the maximum.
func (t *Tribute) Heal(amount float64) {
	t.Health = ClampVital(t.Health + amount)
}

// Tire lowers stamina; negative amounts restore it.
func (t *Tribute) Tire(amount float64) {
	t.Stamina = ClampVital(t.Stamina - amount)
}

// Starve lowers hunger fullness; negative amounts feed.
func (t *Tribute) Starve(amount float64) {
	t.Hunger = ClampVital(t.Hunger - amount)
}

// Parch lowers thirst fullness; negative amounts quench.
func (t *Tribute) Parch(amount float64) {
	t.Thirst = ClampVital(t.Thirst - amount)
}

// WantsWater reports whether the tribute should seek a water biome.
func (t *Tribute) WantsWater() bool {
	return t.Thirst < ThirstThreshold || t.Status.Has(StatusHeatstroke)
}

// WantsFood reports whether the tribute should seek a foraging biome.
func (t *Tribute) WantsFood() bool {
	return t.Hunger < HungryThreshold
}

// WantsWeapon reports whether the tribute is unarmed.
func (t *Tribute) WantsWeapon() bool {
	return !t.HasKind(KindWeapon)
}

// WantsCover reports whether the tribute should hide.
func (t *Tribute) WantsCover() bool {
	return t.Health < LowHealthCover || t.Status.Has(StatusBleeding)
}
