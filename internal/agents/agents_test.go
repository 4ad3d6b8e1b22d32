package agents

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/talgya/tribute-arena/internal/world"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		trust int
		want  Category
	}{
		{-100, CategoryEnemy},
		{-20, CategoryEnemy},
		{-19, CategoryNeutral},
		{0, CategoryNeutral},
		{19, CategoryNeutral},
		{20, CategoryAlly},
		{59, CategoryAlly},
		{60, CategoryCloseAlly},
		{89, CategoryCloseAlly},
		{90, CategorySoulmate},
		{100, CategorySoulmate},
	}
	for _, tt := range tests {
		if got := CategoryFor(tt.trust); got != tt.want {
			t.Errorf("CategoryFor(%d) = %s, want %s", tt.trust, got, tt.want)
		}
	}
}

func TestModifyTrustClampsAndCreates(t *testing.T) {
	a := &Tribute{ID: 1}
	ModifyTrust(a, 2, 40)
	if got := a.Relationship(2); got.Trust != 40 || got.Category() != CategoryAlly {
		t.Fatalf("after +40: %+v (%s)", got, got.Category())
	}
	ModifyTrust(a, 2, 500)
	if got := a.Relationship(2).Trust; got != TrustMax {
		t.Errorf("trust = %d, want clamp to %d", got, TrustMax)
	}
	ModifyTrust(a, 2, -1000)
	if got := a.Relationship(2); got.Trust != TrustMin || got.Category() != CategoryEnemy {
		t.Errorf("after -1000: %+v (%s)", got, got.Category())
	}
	if got := a.Relationship(3); got.Trust != 0 || got.Category() != CategoryNeutral {
		t.Errorf("unknown relationship = %+v, want neutral zero", got)
	}
}

func TestRelationshipJSONIgnoresStoredCategory(t *testing.T) {
	var r Relationship
	if err := json.Unmarshal([]byte(`{"trust":250,"category":"Enemy"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Trust != TrustMax || r.Category() != CategorySoulmate {
		t.Errorf("decoded %+v (%s), want clamped soulmate", r, r.Category())
	}

	data, err := json.Marshal(Relationship{Trust: 65})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"trust":65,"category":"Close Ally"}` {
		t.Errorf("encoded %s", data)
	}
}

func TestStatusSetJSON(t *testing.T) {
	s := StatusSet(0).With(StatusBleeding).With(StatusHeatstroke)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["Bleeding","Heatstroke"]` {
		t.Fatalf("encoded %s", data)
	}
	var back StatusSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != s {
		t.Errorf("round trip = %v, want %v", back.List(), s.List())
	}
	if back.Without(StatusBleeding).Has(StatusBleeding) {
		t.Error("Without did not clear bleeding")
	}
	if err := json.Unmarshal([]byte(`["Cursed"]`), &back); err == nil {
		t.Error("expected error for unknown effect")
	}

	empty, _ := json.Marshal(StatusSet(0))
	if string(empty) != `[]` {
		t.Errorf("empty set encoded %s", empty)
	}
}

func TestVitalsClamp(t *testing.T) {
	tr := &Tribute{Health: 10, Hunger: 95, Thirst: 5, Stamina: 50}
	tr.Hurt(50)
	tr.Starve(-20)
	tr.Parch(10)
	tr.Tire(-80)
	if tr.Health != 0 || tr.Hunger != 100 || tr.Thirst != 0 || tr.Stamina != 100 {
		t.Errorf("vitals not clamped: %+v", tr)
	}
}

func TestCraftRespectsIngredientCounts(t *testing.T) {
	wood := material("wood", "Sturdy Branch", "")
	tr := &Tribute{Inventory: []Item{wood}}
	if _, ok := tr.Craft(); ok {
		t.Fatal("crafted fire kit from a single branch")
	}
	tr.Inventory = append(tr.Inventory, wood)
	got, ok := tr.Craft()
	if !ok || got.ID != ItemFireKit {
		t.Fatalf("Craft() = %v, %v; want fire kit", got, ok)
	}
	if len(tr.Inventory) != 1 || tr.Inventory[0].ID != ItemFireKit {
		t.Errorf("inventory after craft = %+v", tr.Inventory)
	}
	if !tr.HasTrait(TraitWarmth) {
		t.Error("fire kit should grant warmth")
	}
}

func TestCraftFirstRecipeWins(t *testing.T) {
	tr := &Tribute{Inventory: []Item{
		Weapons[0], // knife
		material("wood", "Sturdy Branch", ""),
		material("wood", "Sturdy Branch", ""),
	}}
	got, ok := tr.Craft()
	if !ok || got.ID != "spear_wood" {
		t.Fatalf("Craft() = %v, want sharpened spear", got.ID)
	}
	if tr.HasItem("knife") {
		t.Error("knife should be consumed")
	}
	if !tr.HasItem("wood") {
		t.Error("second branch should remain")
	}
}

func TestTakeBestConsumable(t *testing.T) {
	tr := &Tribute{Inventory: []Item{
		consumable("apple", "Dried Fruit", UseFood, 15, ""),
		consumable(ItemWater, "Water Jug", UseWater, 50, ""),
		consumable("bread", "Bread", UseFood, 25, ""),
	}}
	got, ok := tr.TakeBestConsumable(UseFood)
	if !ok || got.ID != "bread" {
		t.Fatalf("took %v, want bread", got.ID)
	}
	if len(tr.Inventory) != 2 {
		t.Errorf("inventory len = %d, want 2", len(tr.Inventory))
	}
	if _, ok := tr.TakeBestConsumable(UseHeal); ok {
		t.Error("took a heal item that was never held")
	}
}

func TestBestWeaponSkipsMines(t *testing.T) {
	mine := Item{ID: ItemExplosive, Kind: KindWeapon, Damage: 60, Trait: TraitExplosive}
	tr := &Tribute{Inventory: []Item{mine}}
	if tr.WeaponBonus() != 0 {
		t.Error("a mine should not be wielded")
	}
	if tr.WantsWeapon() {
		t.Error("holding a mine still counts as armed")
	}
	tr.Inventory = append(tr.Inventory, Weapons[0], Weapons[3])
	if got := tr.WeaponBonus(); got != 30 {
		t.Errorf("WeaponBonus = %d, want axe damage 30", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := &Tribute{ID: 1, Inventory: []Item{Weapons[0]}, Relationships: map[AgentID]Relationship{2: {Trust: 10}}}
	c := a.Clone()
	c.Inventory[0].Damage = 99
	ModifyTrust(c, 2, 50)
	if a.Inventory[0].Damage == 99 {
		t.Error("clone shares inventory backing array")
	}
	if a.Relationship(2).Trust != 10 {
		t.Error("clone shares relationship map")
	}
}

func TestSpawnDistribution(t *testing.T) {
	s := NewSpawner(rand.New(rand.NewSource(7)))
	tributes := s.Spawn(26, false)
	if len(tributes) != 26 {
		t.Fatalf("spawned %d", len(tributes))
	}
	seen := map[AgentID]bool{}
	for i, tr := range tributes {
		wantDistrict := District((i/2)%NumDistricts + 1)
		if tr.District != wantDistrict {
			t.Errorf("tribute %d district = %s, want %s", i, tr.District, wantDistrict)
		}
		wantGender := GenderMale
		if i%2 == 1 {
			wantGender = GenderFemale
		}
		if tr.Gender != wantGender {
			t.Errorf("tribute %d gender = %s", i, tr.Gender)
		}
		if tr.Age != FixedAge {
			t.Errorf("tribute %d age = %d, want %d", i, tr.Age, FixedAge)
		}
		if tr.Health != 100 || tr.Hunger != 100 || tr.Thirst != 100 || tr.Stamina != 100 {
			t.Errorf("tribute %d vitals not full", i)
		}
		if !tr.Alive || len(tr.Inventory) != 0 || tr.Location != world.Unplaced {
			t.Errorf("tribute %d bad initial state: %+v", i, tr)
		}
		if tr.ID == 0 || seen[tr.ID] {
			t.Errorf("tribute %d has duplicate or zero id %d", i, tr.ID)
		}
		seen[tr.ID] = true
	}
}

func TestSpawnAgesAndCareerBonus(t *testing.T) {
	s := NewSpawner(rand.New(rand.NewSource(11)))
	for _, tr := range s.Spawn(200, true) {
		if tr.Age < MinAge || tr.Age > MaxAge {
			t.Fatalf("age %d out of range", tr.Age)
		}
		if tr.District.IsCareer() && tr.Stats.Aggression < 4 {
			t.Errorf("career %s aggression %d below bonus floor", tr.District, tr.Stats.Aggression)
		}
		if (tr.District == 3 || tr.District == 5) && tr.Stats.Intellect < 5 {
			t.Errorf("%s intellect %d below bonus floor", tr.District, tr.Stats.Intellect)
		}
	}
}

func TestSpawnNamesAreUnique(t *testing.T) {
	for seed := int64(1); seed <= 100; seed++ {
		names := map[string]bool{}
		for _, tr := range NewSpawner(rand.New(rand.NewSource(seed))).Spawn(24, true) {
			if names[tr.Name] {
				t.Fatalf("seed %d: duplicate name %q", seed, tr.Name)
			}
			names[tr.Name] = true
		}
	}
}

func TestSpawnNamesFallBackToDistrict(t *testing.T) {
	tributes := NewSpawner(rand.New(rand.NewSource(3))).Spawn(200, false)
	names := map[string]bool{}
	suffixed := 0
	for _, tr := range tributes {
		if names[tr.Name] {
			t.Fatalf("duplicate name %q", tr.Name)
		}
		names[tr.Name] = true
		if strings.Contains(tr.Name, " of District ") {
			suffixed++
		}
	}
	// 20 names per gender, 100 tributes per gender.
	if suffixed != 160 {
		t.Errorf("suffixed names = %d, want 160", suffixed)
	}
}
