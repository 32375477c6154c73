// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	p, err := Lookup("Add gold to all characters")
	require.NoError(t, err)
	assert.Equal(t, []string{"_Char"}, p.BackupTables)
	require.Len(t, p.Statements, 1)
	assert.Equal(t, "UPDATE dbo._Char SET RemainGold = RemainGold + 99000000 WHERE CharID > 0", p.Statements[0])

	_, err = Lookup("Delete everything")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupReturnsCopy(t *testing.T) {
	p, err := Lookup("Reset Character Stats")
	require.NoError(t, err)
	p.Statements[0] = "DROP TABLE _Char"
	p.BackupTables = append(p.BackupTables, "_Inventory")

	again, err := Lookup("Reset Character Stats")
	require.NoError(t, err)
	assert.NotEqual(t, "DROP TABLE _Char", again.Statements[0])
	assert.Equal(t, []string{"_Char"}, again.BackupTables)
}

func TestNamesOrder(t *testing.T) {
	assert.Equal(t, []string{
		"Level 120 Skills",
		"Add Silk to All Players",
		"Add gold to all characters",
		"Reset Character Stats",
	}, Names())
}

func TestSkillPatchStatements(t *testing.T) {
	p, err := Lookup("Level 120 Skills")
	require.NoError(t, err)
	require.Len(t, p.Statements, 42)
	assert.Equal(t, "UPDATE dbo._RefSkill SET Service = 1 WHERE ID BETWEEN 1 AND 273", p.Statements[0])
	assert.Equal(t, "UPDATE dbo._RefSkill SET Service = 1 WHERE ID BETWEEN 33740 AND 33785", p.Statements[38])
	assert.Equal(t, "UPDATE dbo._RefSkill SET Service = 0 WHERE ID BETWEEN 5409 AND 5409", p.Statements[41])
}

func TestTables(t *testing.T) {
	assert.Equal(t, []string{"_RefSkill", "_Char"}, Tables())
}

func TestAllPatchesWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range All() {
		assert.False(t, seen[p.Name], "duplicate patch %q", p.Name)
		seen[p.Name] = true
		assert.NotEmpty(t, p.Description, p.Name)
		assert.NotEmpty(t, p.BackupTables, p.Name)
		assert.NotEmpty(t, p.Statements, p.Name)
	}
}
