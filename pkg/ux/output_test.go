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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withLevel(t *testing.T, level PersonalityLevel) {
	t.Helper()
	orig := GetPersonality()
	t.Cleanup(func() { SetPersonality(orig) })
	SetPersonalityLevel(level)
}

func newBuffers() (*Output, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewOutput(&out, &errOut), &out, &errOut
}

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconArrow, IconBullet} {
		assert.Contains(t, icon.Render(), string(icon))
	}
}

func TestOutput_MachineMode(t *testing.T) {
	withLevel(t, PersonalityMachine)
	o, out, errOut := newBuffers()

	o.Title("ignored")
	o.Muted("ignored")
	o.Success("exported")
	o.Info("plain")
	o.Warning("careful")
	o.Error("broken")
	o.Box("Normal", "bell curve")

	assert.Equal(t, "OK: exported\nplain\nNormal: bell curve\n", out.String())
	assert.Equal(t, "WARN: careful\nERROR: broken\n", errOut.String())
}

func TestOutput_StandardMode(t *testing.T) {
	withLevel(t, PersonalityStandard)
	o, out, errOut := newBuffers()

	o.Title("Distributions")
	o.Success("exported")
	o.Error("broken")

	assert.Contains(t, out.String(), "Distributions")
	assert.Contains(t, out.String(), string(IconSuccess))
	assert.Contains(t, errOut.String(), "broken")
	assert.Contains(t, errOut.String(), string(IconError))
}

func TestOutput_MinimalWarning(t *testing.T) {
	withLevel(t, PersonalityMinimal)
	o, out, _ := newBuffers()

	o.Warning("careful")
	assert.Equal(t, string(IconWarning)+" careful\n", stripANSI(out.String()))
}

func TestOutput_KeyValue(t *testing.T) {
	withLevel(t, PersonalityMachine)
	o, out, _ := newBuffers()
	o.KeyValue([][2]string{{"id", "normal"}, {"type", "continuous"}})
	assert.Equal(t, "id\tnormal\ntype\tcontinuous\n", out.String())

	withLevel(t, PersonalityStandard)
	o, out, _ = newBuffers()
	o.KeyValue([][2]string{{"id", "normal"}, {"domain", "[-5, 5]"}})
	lines := strings.Split(strings.TrimSpace(stripANSI(out.String())), "\n")
	assert.Equal(t, "id:     normal", lines[0])
	assert.Equal(t, "domain: [-5, 5]", lines[1])
}

func TestRenderTable_Machine(t *testing.T) {
	withLevel(t, PersonalityMachine)
	got := RenderTable([]string{"x", "y"}, [][]string{{"0", "0.3989"}, {"1", "0.2420"}})
	assert.Equal(t, "x\ty\n0\t0.3989\n1\t0.2420", got)
}

func TestRenderTable_Styled(t *testing.T) {
	withLevel(t, PersonalityStandard)
	got := stripANSI(RenderTable([]string{"ID", "Name"}, [][]string{{"normal", "Normal"}}))
	assert.Contains(t, got, "ID")
	assert.Contains(t, got, "normal")
	assert.Contains(t, got, "╭")
}

func TestNewOutput_Defaults(t *testing.T) {
	o := NewOutput(nil, nil)
	assert.NotNil(t, o.Out)
	assert.NotNil(t, o.Err)
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
