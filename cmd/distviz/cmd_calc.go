// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/distviz/internal/calculator"
	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/AleutianAI/distviz/internal/session"
	"github.com/AleutianAI/distviz/pkg/ux"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// errValueRequired is returned when --value is missing and no prompt
// can be shown.
var errValueRequired = errors.New("--value is required when not running in a terminal")

// promptQuery asks for the mode and input with a huh form. The input is
// validated against the selected mode before the form can be submitted.
func promptQuery(spec *dist.DistributionSpec, mode *calculator.Mode, value *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[calculator.Mode]().
				Title(spec.DisplayName+" Calculator").
				Options(
					huh.NewOption(calculator.Forward.Title(), calculator.Forward),
					huh.NewOption(calculator.Inverse.Title(), calculator.Inverse),
				).
				Value(mode),
			huh.NewInput().
				Title("Value").
				Description("x for P(X ≤ x), or a probability between 0 and 1").
				Value(value).
				Validate(func(s string) error {
					_, err := calculator.ParseQuery(*mode, s)
					return err
				}),
		),
	)
	return form.Run()
}

func runCalc(cmd *cobra.Command, args []string) error {
	spec, err := lookup(current, args[0])
	if err != nil {
		return err
	}
	mode, err := calculator.ParseMode(calcMode)
	if err != nil {
		return err
	}
	texts, err := paramTexts(spec, paramFlags)
	if err != nil {
		return err
	}

	value := calcValue
	if !cmd.Flags().Changed("value") {
		if !ux.IsInteractive() {
			return errValueRequired
		}
		if err := promptQuery(spec, &mode, &value); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("prompt failed: %w", err)
		}
	}

	ctrl, err := session.New(cmd.Context(), current.registry, session.Options{
		Logger:     current.logger.Slog(),
		Resolution: current.cfg.Resolution,
		DefaultID:  spec.ID,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Calculate(cmd.Context(), texts, mode, value); err != nil {
		return err
	}

	frame := ctrl.Frame()
	out := output(cmd)
	if ux.GetPersonality().Level == ux.PersonalityMachine {
		fmt.Fprintln(out.Out, formatFloat(frame.Result.Value))
		return nil
	}
	out.Title(spec.DisplayName)
	out.KeyValue(paramPairs(frame.Spec, frame.Params))
	out.Success(frame.Result.Label())
	return nil
}

// paramPairs labels each parameter value with its symbol.
func paramPairs(spec *dist.DistributionSpec, params []float64) [][2]string {
	pairs := make([][2]string, len(params))
	for i, v := range params {
		pairs[i] = [2]string{spec.Params[i].Symbol, formatFloat(v)}
	}
	return pairs
}
