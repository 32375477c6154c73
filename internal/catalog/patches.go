// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import "fmt"

var patches = []Patch{
	{
		Name:         "Level 120 Skills",
		Description:  "Enable all level 120 skills by setting Service = 1",
		BackupTables: []string{"_RefSkill"},
		Statements:   skillStatements(),
	},
	{
		Name:         "Add Silk to All Players",
		Description:  "Add 10,000 Silk to all active player accounts",
		BackupTables: []string{"_Char"},
		Statements: []string{
			`INSERT INTO SRO_VT_ACCOUNT.dbo.SK_Silk (JID, silk_own, silk_gift, silk_point)
SELECT JID, 10000, 0, 0
FROM SRO_VT_ACCOUNT.dbo.TB_User
WHERE JID NOT IN (SELECT JID FROM SRO_VT_ACCOUNT.dbo.SK_Silk)`,
			`UPDATE SRO_VT_ACCOUNT.dbo.SK_Silk
SET silk_own = silk_own + 10000
WHERE JID IN (SELECT JID FROM SRO_VT_ACCOUNT.dbo.TB_User)`,
		},
	},
	{
		Name:         "Add gold to all characters",
		Description:  "Add 99.000.000 gold to all characters",
		BackupTables: []string{"_Char"},
		Statements: []string{
			"UPDATE dbo._Char SET RemainGold = RemainGold + 99000000 WHERE CharID > 0",
		},
	},
	{
		Name:         "Reset Character Stats",
		Description:  "Reset all character stats to base values and refund stat points",
		BackupTables: []string{"_Char"},
		Statements: []string{
			`UPDATE dbo._Char
SET Strength = 20 + (MaxLevel - 1),
    Intellect = 20 + (MaxLevel - 1),
    RemainStatPoint = (MaxLevel - 1) * 3
WHERE CharID > 0`,
		},
	},
}

func skillStatements() []string {
	out := make([]string, 0, len(skillRanges)+len(disabledSkillRanges))
	for _, r := range skillRanges {
		out = append(out, fmt.Sprintf("UPDATE dbo._RefSkill SET Service = 1 WHERE ID BETWEEN %d AND %d", r[0], r[1]))
	}
	for _, r := range disabledSkillRanges {
		out = append(out, fmt.Sprintf("UPDATE dbo._RefSkill SET Service = 0 WHERE ID BETWEEN %d AND %d", r[0], r[1]))
	}
	return out
}
