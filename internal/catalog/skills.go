// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

// skillRanges lists the inclusive _RefSkill ID ranges enabled by the level 120 patch.
var skillRanges = [][2]int{
	{1, 273},
	{276, 3481},
	{3486, 3491},
	{3493, 8321},
	{8328, 8328},
	{8331, 12176},
	{12178, 12186},
	{12188, 12196},
	{12198, 12199},
	{12201, 12206},
	{12210, 12216},
	{12218, 12222},
	{12225, 12306},
	{12323, 20309},
	{20311, 20501},
	{20503, 21266},
	{21268, 29693},
	{29696, 30897},
	{31038, 31086},
	{31088, 31103},
	{31105, 31181},
	{31190, 31196},
	{31198, 31924},
	{32088, 32874},
	{32891, 32894},
	{32897, 32904},
	{33042, 33045},
	{33072, 33073},
	{33072, 33073},
	{33077, 33287},
	{33289, 33294},
	{33296, 33300},
	{33302, 33307},
	{33309, 33312},
	{33314, 33338},
	{33340, 33347},
	{33349, 33372},
	{33374, 33382},
	{33740, 33785},
}

// disabledSkillRanges are switched back off after the enable pass.
var disabledSkillRanges = [][2]int{
	{7182, 7184},
	{3436, 3440},
	{5409, 5409},
}
