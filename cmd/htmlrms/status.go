package main

import (
	"encoding/json"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
)

type componentStatus struct {
	Type  string `json:"type"`
	State any    `json:"state,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the store, the snapshot adapter and the slot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, root, err := openWorkspace(cmd, platform.WithReadOnly(true))
		if err != nil {
			return err
		}
		defer ws.Close()

		var warnings []string
		for _, w := range ws.Warnings {
			warnings = append(warnings, w.Error())
		}
		report := struct {
			Root       string            `json:"root"`
			Components []componentStatus `json:"components"`
			Warnings   []string          `json:"warnings,omitempty"`
		}{
			Root:       root,
			Components: []componentStatus{describe(ws.Store), describe(ws.Snapshot), describe(ws.Slot)},
			Warnings:   warnings,
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func describe(v any) componentStatus {
	var s componentStatus
	if c, ok := v.(introspection.Component); ok {
		s.Type = c.ComponentType()
	}
	if i, ok := v.(introspection.Introspectable); ok {
		s.State = i.State()
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
