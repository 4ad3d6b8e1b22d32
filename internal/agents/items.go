package agents

import (
	"fmt"
	"slices"
)

// ItemID names an item type in the catalog ("knife", "water").
type ItemID string

// ItemKind is the item category. Each kind reads its own payload fields.
type ItemKind uint8

const (
	KindWeapon ItemKind = iota
	KindConsumable
	KindGear
	KindMaterial
)

var kindNames = [...]string{"weapon", "consumable", "gear", "material"}

func (k ItemKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k ItemKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *ItemKind) UnmarshalText(text []byte) error {
	i := slices.Index(kindNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown item kind %q", text)
	}
	*k = ItemKind(i)
	return nil
}

// ItemUse says what a consumable does when used.
type ItemUse uint8

const (
	UseNone ItemUse = iota
	UseFood
	UseWater
	UseHeal
	UseAntidote
	UsePoison // Coats a weapon; poisons whoever it strikes
)

// ItemTrait marks behavior that is not captured by kind alone.
type ItemTrait uint8

const (
	TraitNone ItemTrait = iota
	TraitArmor
	TraitWarmth
	TraitExplosive
	TraitNightVision
	TraitCamouflage
)

// Item is a value object. Inventories hold copies, never shared references.
//
// Payload by kind:
//   - weapon: Damage is the combat bonus.
//   - consumable: Use selects the effect, Potency its strength.
//   - gear and material: no numeric payload; Trait carries gear effects.
type Item struct {
	ID          ItemID    `json:"id"`
	Name        string    `json:"name"`
	Kind        ItemKind  `json:"kind"`
	Description string    `json:"description"`
	Damage      int       `json:"damage,omitempty"`
	Use         ItemUse   `json:"use,omitempty"`
	Potency     int       `json:"potency,omitempty"`
	Trait       ItemTrait `json:"trait,omitempty"`
}

// Catalog item IDs referenced by game rules.
const (
	ItemWater      ItemID = "water"
	ItemBandage    ItemID = "bandage"
	ItemAntidote   ItemID = "antidote"
	ItemExplosive  ItemID = "explosive"
	ItemArmor      ItemID = "armor"
	ItemFireKit    ItemID = "fire_kit"
	ItemPoisonVial ItemID = "poison_vial"
)

func weapon(id ItemID, name string, damage int, desc string) Item {
	return Item{ID: id, Name: name, Kind: KindWeapon, Damage: damage, Description: desc}
}

func consumable(id ItemID, name string, use ItemUse, potency int, desc string) Item {
	return Item{ID: id, Name: name, Kind: KindConsumable, Use: use, Potency: potency, Description: desc}
}

func gear(id ItemID, name string, trait ItemTrait, desc string) Item {
	return Item{ID: id, Name: name, Kind: KindGear, Trait: trait, Description: desc}
}

func material(id ItemID, name, desc string) Item {
	return Item{ID: id, Name: name, Kind: KindMaterial, Description: desc}
}

// Weapons stock the Cornucopia.
var Weapons = []Item{
	weapon("knife", "Combat Knife", 15, "Sharp and deadly."),
	weapon("bow", "Recurve Bow", 20, "Good for range."),
	weapon("spear", "Steel Spear", 25, "Long reach."),
	weapon("axe", "Woodsman Axe", 30, "Heavy hitter."),
	weapon("sword", "Short Sword", 25, "Balanced combat."),
	weapon("trident", "Trident", 35, "Rare and powerful."),
	weapon("rock", "Heavy Rock", 5, "Better than nothing."),
	weapon("sickle", "Sickle", 22, "Curved blade."),
	weapon("mace", "Spiked Mace", 28, "Crushing power."),
	weapon("katana", "Katana", 27, "Swift slicing."),
	{ID: "flamethrower", Name: "Improvised Flamethrower", Kind: KindWeapon, Damage: 40, Trait: TraitWarmth, Description: "Dangerous but effective."},
	weapon("club", "Heavy Club", 12, "Brutal blunt force."),
}

// Consumables are foraged in forests and ruins.
var Consumables = []Item{
	consumable("apple", "Dried Fruit", UseFood, 15, "Restores hunger."),
	consumable("bread", "District 9 Bread", UseFood, 25, "Hearty meal."),
	consumable(ItemWater, "Water Jug", UseWater, 50, "Restores thirst."),
	consumable(ItemBandage, "Bandages", UseHeal, 20, "Heals Bleeding."),
	consumable(ItemAntidote, "Antidote", UseAntidote, 0, "Cures Poison."),
	consumable("medkit", "Medkit", UseHeal, 50, "Major healing."),
	consumable("berries", "Unknown Berries", UseFood, 5, "Risky snack."),
	consumable("squirrel", "Cooked Squirrel", UseFood, 20, "Good protein."),
	material("herbs", "Medicinal Herbs", "Used for crafting."),
	material("wood", "Sturdy Branch", "Used for crafting."),
	consumable("fish", "Raw Fish", UseFood, 10, "Better if cooked."),
}

// SponsorItems are the rarer gifts; ruins salvage draws from them too.
var SponsorItems = []Item{
	consumable("soup", "Hot Broth", UseFood, 40, "Sponsor gift."),
	consumable("morphling", "Morphling", UseHeal, 50, "Powerful painkiller."),
	weapon("dagger", "Throwing Dagger", 10, "Small but useful."),
	weapon("trident_gift", "Gold Trident", 45, "Expensive gift."),
	gear(ItemArmor, "Light Armor", TraitArmor, "Reduces damage taken."),
	gear("night_vision", "Night Vision Goggles", TraitNightVision, "Safe movement at night."),
	gear("camouflage", "Camo Kit", TraitCamouflage, "Reduces encounter rate."),
	consumable(ItemPoisonVial, "Vial of Poison", UsePoison, 0, "Applies poison to weapon."),
	{ID: ItemExplosive, Name: "Small Mine", Kind: KindWeapon, Damage: 60, Trait: TraitExplosive, Description: "Trap item."},
	consumable("feast", "Lamb Stew", UseFood, 100, "Full hunger restore."),
	gear(ItemFireKit, "Flint & Steel", TraitWarmth, "Creates warmth."),
}

// Salvage is what ruins yield: everyday supplies plus sponsor-grade gear.
var Salvage = slices.Concat(Consumables, SponsorItems)

// Recipe turns ingredients into one new item. Ingredients may repeat.
type Recipe struct {
	Ingredients []ItemID
	Result      Item
}

// Recipes are tried in order; the first satisfiable one wins.
var Recipes = []Recipe{
	{
		Ingredients: []ItemID{ItemBandage, "herbs"},
		Result:      consumable("salve", "Healing Salve", UseHeal, 45, "Potent healing mixture."),
	},
	{
		Ingredients: []ItemID{"wood", "knife"},
		Result:      weapon("spear_wood", "Sharpened Spear", 18, "Primitive but effective."),
	},
	{
		Ingredients: []ItemID{"wood", "rock"},
		Result:      weapon("hammer", "Stone Hammer", 12, "Blunt force."),
	},
	{
		Ingredients: []ItemID{"wood", "wood"},
		Result:      gear(ItemFireKit, "Friction Fire", TraitWarmth, "Primitive fire starter."),
	},
}

// TrapDamage is what a mine deals when triggered.
const TrapDamage = 60

// HasItem reports whether the inventory holds an item with the ID.
func (t *Tribute) HasItem(id ItemID) bool {
	return slices.ContainsFunc(t.Inventory, func(it Item) bool { return it.ID == id })
}

// HasKind reports whether the inventory holds an item of the kind.
func (t *Tribute) HasKind(k ItemKind) bool {
	return slices.ContainsFunc(t.Inventory, func(it Item) bool { return it.Kind == k })
}

// HasTrait reports whether the inventory holds an item with the trait.
func (t *Tribute) HasTrait(tr ItemTrait) bool {
	return slices.ContainsFunc(t.Inventory, func(it Item) bool { return it.Trait == tr })
}

// RemoveItem deletes the first item with the ID. Returns the removed copy.
func (t *Tribute) RemoveItem(id ItemID) (Item, bool) {
	i := slices.IndexFunc(t.Inventory, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return Item{}, false
	}
	return t.removeAt(i), true
}

func (t *Tribute) removeAt(i int) Item {
	it := t.Inventory[i]
	t.Inventory = slices.Delete(t.Inventory, i, i+1)
	return it
}

// BestWeapon returns the highest-damage hand weapon. Mines are not wielded.
func (t *Tribute) BestWeapon() (Item, bool) {
	best, found := Item{}, false
	for _, it := range t.Inventory {
		if it.Kind != KindWeapon || it.Trait == TraitExplosive {
			continue
		}
		if !found || it.Damage > best.Damage {
			best, found = it, true
		}
	}
	return best, found
}

// WeaponBonus is the damage of the wielded weapon, zero when unarmed.
func (t *Tribute) WeaponBonus() int {
	w, _ := t.BestWeapon()
	return w.Damage
}

// TakeBestConsumable removes and returns the most potent consumable with the use.
func (t *Tribute) TakeBestConsumable(use ItemUse) (Item, bool) {
	best := -1
	for i, it := range t.Inventory {
		if it.Kind != KindConsumable || it.Use != use {
			continue
		}
		if best < 0 || it.Potency > t.Inventory[best].Potency {
			best = i
		}
	}
	if best < 0 {
		return Item{}, false
	}
	return t.removeAt(best), true
}

// Craftable reports whether the inventory covers every ingredient, counting repeats.
func (t *Tribute) Craftable(r Recipe) bool {
	need := make(map[ItemID]int, len(r.Ingredients))
	for _, id := range r.Ingredients {
		need[id]++
	}
	for _, it := range t.Inventory {
		if need[it.ID] > 0 {
			need[it.ID]--
		}
	}
	for _, n := range need {
		if n > 0 {
			return false
		}
	}
	return true
}

// Craft consumes the first satisfiable recipe's ingredients and adds a fresh
// copy of its result. Returns the crafted item.
func (t *Tribute) Craft() (Item, bool) {
	for _, r := range Recipes {
		if !t.Craftable(r) {
			continue
		}
		for _, id := range r.Ingredients {
			t.RemoveItem(id)
		}
		t.Inventory = append(t.Inventory, r.Result)
		return r.Result, true
	}
	return Item{}, false
}
