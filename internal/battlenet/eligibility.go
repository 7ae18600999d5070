package battlenet

import (
	"slices"
	"strings"
)

// Player classes, in display order.
var allClasses = []string{
	"Warrior", "Paladin", "Hunter", "Rogue", "Priest",
	"Death Knight", "Shaman", "Mage", "Warlock", "Monk",
	"Druid", "Demon Hunter", "Evoker",
}

// AllClasses returns a fresh copy of the full class set.
func AllClasses() []string {
	return slices.Clone(allClasses)
}

type eligibilityRule struct {
	label   string
	classes []string
}

// Armor proficiencies by armor subclass.
var armorRules = []eligibilityRule{
	{"Cloth", []string{"Mage", "Priest", "Warlock"}},
	{"Leather", []string{"Rogue", "Monk", "Druid", "Demon Hunter"}},
	{"Mail", []string{"Hunter", "Shaman", "Evoker"}},
	{"Plate", []string{"Warrior", "Paladin", "Death Knight"}},
}

// Weapon proficiencies by weapon subclass. A nil class set means every
// class may use the weapon.
var weaponRules = []eligibilityRule{
	{"One-Handed Swords", []string{"Warrior", "Paladin", "Rogue", "Monk", "Death Knight", "Warlock", "Mage"}},
	{"Two-Handed Swords", []string{"Warrior", "Paladin", "Death Knight"}},
	{"One-Handed Axes", []string{"Warrior", "Paladin", "Hunter", "Rogue", "Shaman", "Monk", "Death Knight"}},
	{"Two-Handed Axes", []string{"Warrior", "Paladin", "Hunter", "Shaman", "Death Knight"}},
	{"One-Handed Maces", []string{"Warrior", "Paladin", "Priest", "Rogue", "Shaman", "Monk", "Druid", "Death Knight"}},
	{"Two-Handed Maces", []string{"Warrior", "Paladin", "Shaman", "Druid", "Death Knight"}},
	{"Polearms", []string{"Warrior", "Paladin", "Hunter", "Shaman", "Monk", "Druid", "Death Knight"}},
	{"Staves", []string{"Mage", "Priest", "Warlock", "Shaman", "Monk", "Druid", "Evoker"}},
	{"Daggers", nil},
	{"Fist Weapons", []string{"Rogue", "Monk", "Hunter", "Shaman", "Demon Hunter"}},
	{"Bows", []string{"Warrior", "Rogue", "Hunter"}},
	{"Guns", []string{"Warrior", "Rogue", "Hunter"}},
	{"Crossbows", []string{"Warrior", "Rogue", "Hunter"}},
	{"Wands", []string{"Mage", "Priest", "Warlock"}},
	{"Shields", []string{"Warrior", "Paladin", "Shaman"}},
}

// Subclass labels that are usable by every class regardless of other
// metadata.
var universalSubclasses = []string{"Neck", "Finger", "Trinket", "Cloak"}

// EquippableClasses derives the set of player classes that can use an
// item from its class/subclass labels. The derivation fails open: absent
// or unrecognized metadata yields the full class set, so an item is never
// silently hidden from everyone. Over-inclusion is corrected by the
// officer reviewing an assignment; under-inclusion has no correction path.
func EquippableClasses(item *ItemDetail) []string {
	if item == nil || item.ItemClass == nil || item.ItemSubclass == nil {
		return AllClasses()
	}

	itemClass := item.ItemClass.Name
	itemSubclass := item.ItemSubclass.Name

	// armor before weapons; contains-matching tolerates upstream label
	// variants ("Plate" vs "Plate Armor")
	for _, rule := range armorRules {
		if strings.Contains(itemSubclass, rule.label) {
			return slices.Clone(rule.classes)
		}
	}

	for _, rule := range weaponRules {
		if strings.Contains(itemSubclass, rule.label) || strings.Contains(itemClass, rule.label) {
			if rule.classes == nil {
				return AllClasses()
			}
			return slices.Clone(rule.classes)
		}
	}

	if strings.Contains(itemClass, "Miscellaneous") {
		return AllClasses()
	}
	for _, label := range universalSubclasses {
		if strings.Contains(itemSubclass, label) {
			return AllClasses()
		}
	}

	return AllClasses()
}
