package cli

import (
	"fmt"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/ozacod/zapi/internal/app/cli/tui"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/spf13/cobra"
)

// TargetsCmd creates the targets command
func TargetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List supported targets",
		Long:  "List every supported target with its npm os/cpu/libc fields and Zig triple. The host and the targets configured in package.json are marked.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return listTargets(app)
		},
	}

	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Choose the targets in package.json interactively",
		Long:  "Open a checklist of supported targets, pre-selecting the configured ones, and write the chosen targets to zapi.targets.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return selectTargets(app)
		},
	}
	cmd.AddCommand(selectCmd)

	return cmd
}

// describeTarget returns a short platform description such as
// "linux x64 (musl)".
func describeTarget(t target.Target) string {
	p, err := t.Parts()
	if err != nil {
		return ""
	}
	desc := p.Platform + " " + p.Arch
	if libc := p.Libc(); libc != "" {
		desc += " (" + libc + ")"
	}
	return desc
}

// configuredTargets returns the targets of dir's zapi declaration, or nil
// when there is none.
func configuredTargets(dir string) []target.Target {
	if DetectProjectType(dir) != ProjectTypeZapi {
		return nil
	}
	_, b, err := config.Load(dir)
	if err != nil {
		return nil
	}
	return b.Targets
}

func listTargets(app *App) error {
	hostTarget, _ := app.Host.Detect()
	configured := configuredTargets(app.Dir)

	tbl := tablewriter.NewTable(
		app.Stdout,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.On}},
		})),
	)
	tbl.Header([]string{"Target", "OS", "CPU", "Libc", "Zig Triple", "Notes"})

	data := make([][]any, 0, len(target.All()))
	for _, t := range target.All() {
		p, err := t.Parts()
		if err != nil {
			return err
		}
		triple, err := t.ZigTriple()
		if err != nil {
			return err
		}

		var notes []string
		if t == hostTarget {
			notes = append(notes, "host")
		}
		if slices.Contains(configured, t) {
			notes = append(notes, "configured")
		}

		libc := p.Libc()
		if libc == "" {
			libc = "-"
		}
		data = append(data, []any{string(t), p.Platform, p.Arch, libc, triple, joinNotes(notes)})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	return tbl.Render()
}

func joinNotes(notes []string) string {
	switch len(notes) {
	case 0:
		return ""
	case 1:
		return notes[0]
	}
	return fmt.Sprintf("%s, %s", notes[0], notes[1])
}

func selectTargets(app *App) error {
	if _, err := RequireProject(app.Dir, "zapi targets select"); err != nil {
		return err
	}

	m, b, err := config.Load(app.Dir)
	if err != nil {
		return err
	}

	current := make([]string, len(b.Targets))
	for i, t := range b.Targets {
		current[i] = string(t)
	}

	pick := app.SelectTargets
	if pick == nil {
		pick = func(current []string) ([]string, error) {
			return tui.RunTargetSelection(targetRows(app), current, "Select Build Targets")
		}
	}
	chosen, err := pick(current)
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	log := app.Logger()
	if len(chosen) == 0 {
		log.Warn("No targets selected; package.json left unchanged")
		return nil
	}

	targets, err := parseTargets(chosen)
	if err != nil {
		return err
	}
	b.Targets = targets
	if err := m.SetBuild(*b); err != nil {
		return err
	}
	if err := m.Save(); err != nil {
		return err
	}

	log.Success("Saved %d target(s) to package.json", len(targets))
	for _, t := range targets {
		log.Detail("%s", t)
	}
	return nil
}

// targetRows lists every supported target for the selection UI.
func targetRows(app *App) []tui.Target {
	hostTarget, _ := app.Host.Detect()
	rows := make([]tui.Target, 0, len(target.All()))
	for _, t := range target.All() {
		rows = append(rows, tui.Target{Name: string(t), Description: describeTarget(t), Host: t == hostTarget})
	}
	return rows
}

// parseTargets validates names and returns them in registry order.
func parseTargets(names []string) ([]target.Target, error) {
	out := make([]target.Target, 0, len(names))
	for _, n := range names {
		t, err := target.Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return target.Sort(out), nil
}
