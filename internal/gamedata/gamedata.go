// Package gamedata holds the fixed lookup tables for the raid the team is
// currently progressing: the boss roster and the per-boss loot tables.
// The dataset is owned by the officers and baked in; it is served without
// upstream calls and never mutated at runtime.
package gamedata

import "slices"

// Boss is one raid encounter in kill order.
type Boss struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LootEntry is one drop from a boss's static loot table.
type LootEntry struct {
	BossID    int    `json:"bossId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Slot      string `json:"slot"`
	ItemLevel int    `json:"ilvlBase"`
	Rarity    string `json:"rarity"`
	Link      string `json:"wowheadLink,omitempty"`
}

var bosses = []Boss{
	{1, "Plexus Sentinel", "Optional boss, patrols the machinery."},
	{2, "Loom'ithar", "Weaver of arcane silk."},
	{3, "Soulbinder Naazindhri", "Binder of souls."},
	{4, "Forgeweaver Araz", "Controls the forge operations."},
	{5, "The Soul Hunters", "Council of void soul hunters."},
	{6, "Fractillus", "Elemental of sand and glass."},
	{7, "Nexus-King Salhadaar", "Ethereal king astride his void mount."},
	{8, "Dimensius, the All-Devouring", "Final boss, destroyer of K'aresh."},
}

var lootByBoss = map[int][]LootEntry{
	1: {
		{1, "Mounted Manacannons", "Cloth Armor", "Shoulder", 684, "Epic", "https://www.wowhead.com/item=237547/mounted-manacannons"},
		{1, "Singed Sievecuffs", "Cloth Armor", "Wrist", 684, "Epic", "https://www.wowhead.com/item=237534/singed-sievecuffs"},
		{1, "Atomic Phasebelt", "Leather Armor", "Waist", 684, "Epic", "https://www.wowhead.com/item=237533/atomic-phasebelt"},
		{1, "Chambersieve Waistcoat", "Mail Armor", "Legs", 684, "Epic", "https://www.wowhead.com/item=237543/chambersieve-waistcoat"},
		{1, "Manaforged Displacement Chassis", "Plate Armor", "Chest", 684, "Epic", "https://www.wowhead.com/item=237528/manaforged-displacement-chassis"},
		{1, "Obliteration Beamglaive", "Weapon", "Polearm", 684, "Epic", "https://www.wowhead.com/item=237739/obliteration-beamglaive"},
		{1, "Overclocked Plexhammer", "Weapon", "One-Hand", 684, "Epic", "https://www.wowhead.com/item=237736/overclocked-plexhammer"},
		{1, "Eradicating Arcanocore", "Trinket", "N/A", 684, "Epic", "https://www.wowhead.com/item=242394/eradicating-arcanocore"},
		{1, "Logic Gate: Alpha", "Accessories", "Finger", 684, "Epic", "https://www.wowhead.com/item=237567/logic-gate-alpha"},
	},
	2: {
		{2, "Laced Lair-Steppers", "Cloth Armor", "Feet", 684, "Epic", "https://www.wowhead.com/item=237524/laced-lair-steppers"},
		{2, "Deathbound Shoulderpads", "Leather Armor", "Shoulder", 684, "Epic", "https://www.wowhead.com/item=237552/deathbound-shoulderpads"},
		{2, "Colossal Lifetether", "Mail Armor", "Waist", 684, "Epic", "https://www.wowhead.com/item=237522/colossal-lifetether"},
		{2, "Discarded Nutrient Shackles", "Plate Armor", "Wrist", 684, "Epic", "https://www.wowhead.com/item=237545/discarded-nutrient-shackles"},
		{2, "Piercing Strandbow", "Weapon", "Bow", 684, "Epic", "https://www.wowhead.com/item=237740/piercing-strandbow"},
		{2, "Ward of the Weaving-Beast", "Weapon", "Off-Hand", 684, "Epic", "https://www.wowhead.com/item=237812/ward-of-the-weaving-beast"},
		{2, "Astral Antenna", "Trinket", "N/A", 684, "Epic", "https://www.wowhead.com/item=242395/astral-antenna"},
		{2, "Mystic Silken Offering", "Tier Set", "Legs", 684, "Epic", "https://www.wowhead.com/item=237594/mystic-silken-offering"},
	},
	3: {
		{3, "Frock of Spirit's Reunion", "Cloth Armor", "Chest", 684, "Epic", "https://www.wowhead.com/item=237529/frock-of-spirits-reunion"},
		{3, "Bindings of Lost Essence", "Leather Armor", "Wrist", 684, "Epic", "https://www.wowhead.com/item=237544/bindings-of-lost-essence"},
		{3, "Deathspindle Talons", "Mail Armor", "Feet", 684, "Epic", "https://www.wowhead.com/item=237526/deathspindle-talons"},
		{3, "Fresh Ethereal Fetters", "Plate Armor", "Waist", 684, "Epic", "https://www.wowhead.com/item=237564/fresh-ethereal-fetters"},
		{3, "Voidglass Spire", "Weapon", "Two-Hand", 684, "Epic", "https://www.wowhead.com/item=237726/voidglass-spire"},
		{3, "Chrysalis of Sundered Souls", "Accessories", "Neck", 684, "Epic", "https://www.wowhead.com/item=237565/chrysalis-of-sundered-souls"},
		{3, "Soulbinder's Embrace", "Trinket", "N/A", 684, "Epic", "https://www.wowhead.com/item=242397/soulbinders-embrace"},
	},
	4: {
		{4, "Mystic Foreboding Beaker", "Tier Set", "Helm", 688, "Epic", "https://www.wowhead.com/item=237590/mystic-foreboding-beaker"},
		{4, "Conduit of Stormfire", "Weapon", "Staff", 688, "Epic", "https://www.wowhead.com/item=237727/conduit-of-stormfire"},
		{4, "Forgeweaver's Journal", "Trinket", "N/A", 688, "Epic", "https://www.wowhead.com/item=242402/forgeweavers-journal"},
		{4, "Iris of the Dark Beyond", "Accessories", "Neck", 688, "Epic", "https://www.wowhead.com/item=237568/iris-of-the-dark-beyond"},
	},
	5: {
		{5, "Hunter's Sighted Gauntlets", "Plate Armor", "Hands", 688, "Epic", "https://www.wowhead.com/item=237559/hunters-sighted-gauntlets"},
		{5, "Eye of Kezan", "Trinket", "N/A", 688, "Epic", "https://www.wowhead.com/item=242406/eye-of-kezan"},
		{5, "Demolisher's Soulgorger", "Weapon", "Two-Hand", 688, "Epic", "https://www.wowhead.com/item=237734/demolishers-soulgorger"},
		{5, "Collapsing Nightstone", "Accessories", "Finger", 688, "Epic", "https://www.wowhead.com/item=237570/collapsing-nightstone"},
	},
	6: {
		{6, "Shattershell Greatcloak", "Cosmetic", "Back", 691, "Epic", "https://www.wowhead.com/item=250103/shattershell-greatcloak"},
		{6, "Fractillus's Last Breath", "Trinket", "N/A", 691, "Epic", "https://www.wowhead.com/item=242400/fractilluss-last-breath"},
		{6, "Glasshide Crushers", "Weapon", "Fist Weapon", 691, "Epic", "https://www.wowhead.com/item=237737/glasshide-crushers"},
		{6, "Crystalline Carapace Plating", "Plate Armor", "Shoulder", 691, "Epic", "https://www.wowhead.com/item=237556/crystalline-carapace-plating"},
	},
	7: {
		{7, "Vengeful Netherspike", "Weapon", "Dagger", 691, "Epic", "https://www.wowhead.com/item=237735/vengeful-netherspike"},
		{7, "Nexus-King's Command", "Accessories", "Finger", 691, "Epic", "https://www.wowhead.com/item=237569/nexus-kings-command"},
		{7, "Perfidious Projector", "Trinket", "N/A", 691, "Epic", "https://www.wowhead.com/item=242401/perfidious-projector"},
		{7, "Oathbound Legplates", "Plate Armor", "Legs", 691, "Epic", "https://www.wowhead.com/item=237560/oathbound-legplates"},
	},
	8: {
		{8, "Voidlance of the Devourer", "Weapon", "Polearm", 694, "Epic", "https://www.wowhead.com/item=237731/voidlance-of-the-devourer"},
		{8, "All-Devouring Nova", "Trinket", "N/A", 694, "Epic", "https://www.wowhead.com/item=242403/all-devouring-nova"},
		{8, "Mantle of Consumed Stars", "Cloth Armor", "Shoulder", 694, "Epic", "https://www.wowhead.com/item=237537/mantle-of-consumed-stars"},
		{8, "Event Horizon Treads", "Leather Armor", "Feet", 694, "Epic", "https://www.wowhead.com/item=237539/event-horizon-treads"},
	},
}

// Bosses returns the boss roster in kill order.
func Bosses() []Boss {
	return slices.Clone(bosses)
}

// LootForBoss returns the static loot table for one boss. The second
// return is false for an unknown boss id.
func LootForBoss(id int) ([]LootEntry, bool) {
	loot, ok := lootByBoss[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(loot), true
}
