// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetPersonality_AndGet(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonality(Personality{Level: PersonalityMinimal, ShowHints: true})

	got := GetPersonality()
	assert.Equal(t, PersonalityMinimal, got.Level)
	assert.True(t, got.ShowHints)
}

func TestSetPersonalityLevel_Hints(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityFull)
	assert.True(t, GetPersonality().ShowHints)

	SetPersonalityLevel(PersonalityStandard)
	assert.False(t, GetPersonality().ShowHints)
}

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		in   string
		want PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"F", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{" q ", PersonalityMachine},
		{"", PersonalityStandard},
		{"grumpy", PersonalityStandard},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePersonalityLevel(tt.in))
		})
	}
}

func TestInitPersonality_EnvWins(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv(EnvPersonality, "minimal")
	InitPersonality("full")
	assert.Equal(t, PersonalityMinimal, GetPersonality().Level)
}

func TestInitPersonality_NotATerminal(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	// go test runs with stdout redirected.
	t.Setenv(EnvPersonality, "")
	InitPersonality("full")
	assert.Equal(t, PersonalityMachine, GetPersonality().Level)
}

func TestMachineMode_DisablesColorsAndPrompts(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)
	assert.False(t, ShouldShowColors())
	assert.False(t, IsInteractive())

	SetPersonalityLevel(PersonalityStandard)
	assert.True(t, ShouldShowColors())
}

func TestDefaultPersonality(t *testing.T) {
	assert.Equal(t, Personality{Level: PersonalityStandard}, DefaultPersonality())
}
