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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/PatternDojo/pkg/ux"
	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
	"github.com/AleutianAI/PatternDojo/services/dojo/server"
)

func (a *app) rulesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available pattern detectors and violation codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prepare("."); err != nil {
				return err
			}
			return a.runRules(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the list as JSON")
	return cmd
}

func (a *app) runRules(asJSON bool) error {
	providers := analyzer.DefaultRegistry(a.logger).AllProviders()
	infos := make([]rules.Info, 0, len(providers))
	for _, p := range providers {
		infos = append(infos, rules.Describe(p))
	}

	if asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(server.RulesResponse{Rules: infos, Codes: rules.AllCodes()})
	}

	if ux.GetPersonality().Level == ux.PersonalityMachine {
		for _, info := range infos {
			fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", info.Pattern, info.Name, info.Description)
		}
		return nil
	}

	ux.Title("Pattern detectors")
	for _, info := range infos {
		fmt.Fprintf(a.stdout, "  %-22s %s\n", info.Pattern, info.Name)
		ux.Muted("  " + info.Description)
	}
	fmt.Fprintln(a.stdout)
	ux.Title("Violation codes")
	for _, code := range rules.AllCodes() {
		fmt.Fprintf(a.stdout, "  %s %s\n", ux.IconBullet, code)
	}
	return nil
}
