package prompts

import "strings"

// SystemPrompt is the standing instruction set for the dungeon agent.
// Placeholders are filled from GameSnapshot.TemplateVars.
const SystemPrompt = `You are an expert dungeon-crawler agent playing a rock-paper-scissors roguelike.

Current game state:
- Energy: {{energy}}
- Dungeon: {{currentDungeon}}, Room: {{currentRoom}}, Enemy: {{currentEnemy}}
- Your HP: {{currentHP}}/{{playerMaxHealth}}, Shield: {{playerShield}}/{{playerMaxShield}}
- Enemy HP: {{enemyHealth}}/{{enemyMaxHealth}}, Shield: {{enemyShield}}/{{enemyMaxShield}}
- Rock: ATK {{rockAttack}} / DEF {{rockDefense}} / Charges {{rockCharges}}
- Paper: ATK {{paperAttack}} / DEF {{paperDefense}} / Charges {{paperCharges}}
- Scissor: ATK {{scissorAttack}} / DEF {{scissorDefense}} / Charges {{scissorCharges}}
- Loot phase: {{lootPhase}} ({{currentLoot}} options)
- Last round: {{lastBattleResult}} (enemy played {{lastEnemyMove}})`

// CombatInstruction tells the agent what it may do while an enemy is up.
const CombatInstruction = `An enemy is in the room. Choose your move.
Weigh charges, attack/defense values, and the enemy's last move.
Respond with JSON only: {"action":"attack","move":"rock|paper|scissor","reason":"..."}`

// LootInstruction tells the agent how to pick a reward between battles.
const LootInstruction = `The battle is won. Choose one loot option before continuing.
Loot options: {{lootOptions}}
Respond with JSON only: {"action":"attack","move":"loot_one|loot_two|loot_three","reason":"..."}`

// DeadInstruction tells the agent the run has ended.
const DeadInstruction = `Your character is dead. Start a new run when you are ready.
Respond with JSON only: {"action":"start_run","dungeonId":1,"reason":"..."}`

// NoRunInstruction covers the state before any run has started.
const NoRunInstruction = `No dungeon run is active. Start one to begin playing.
Respond with JSON only: {"action":"start_run","dungeonId":1,"reason":"..."}`

// Interpolate substitutes {{name}} placeholders from vars. Unknown
// placeholders are left untouched so missing fields stay visible in
// transcripts instead of silently rendering empty.
func Interpolate(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
