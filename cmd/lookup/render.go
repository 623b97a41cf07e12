package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ivugurura/iplens/internal/classify"
	"github.com/ivugurura/iplens/internal/lookup"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Bold(true)
)

type row struct {
	label, value string
}

func render(r report) string {
	var boxes []string
	if r.Address != nil {
		boxes = append(boxes, box("Public address", addressRows(*r.Address)))
	}
	if ds := r.DualStack; ds != nil {
		if ds.IPv6 != nil {
			boxes = append(boxes, box("IPv6", addressRows(*ds.IPv6)))
		}
		if ds.IPv4 != nil {
			boxes = append(boxes, box("IPv4", addressRows(*ds.IPv4)))
		}
	}
	boxes = append(boxes, box("Client", browserRows(r.Browser)))

	title := titleStyle.Render("iplens - " + r.Timestamp)
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
}

func addressRows(info lookup.Info) []row {
	rows := []row{
		{"IP", info.IP},
		{"Type", string(info.IPType)},
		{"Source", info.Source},
	}
	optional := []row{
		{"City", info.City},
		{"Region", info.Region},
		{"Country", info.Country},
		{"ISP", info.ISP},
		{"Timezone", info.Timezone},
	}
	for _, o := range optional {
		if o.value != "" {
			rows = append(rows, o)
		}
	}
	if info.Latitude != nil && info.Longitude != nil {
		rows = append(rows, row{"Coords", fmt.Sprintf("%.4f, %.4f", *info.Latitude, *info.Longitude)})
	}
	return rows
}

func browserRows(p classify.BrowserProfile) []row {
	return []row{
		{"Browser", p.Name + " " + p.Version},
		{"Platform", p.Platform},
		{"OS", p.OS},
		{"Device", deviceClass(p)},
	}
}

func deviceClass(p classify.BrowserProfile) string {
	var kinds []string
	if p.IsMobile {
		kinds = append(kinds, "mobile")
	}
	if p.IsBot {
		kinds = append(kinds, "bot")
	}
	if p.IsDesktop {
		kinds = append(kinds, "desktop")
	}
	return strings.Join(kinds, ", ")
}

func box(title string, rows []row) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.label))
	}
	lines := []string{labelStyle.Render(title)}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, r.label, r.value))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
