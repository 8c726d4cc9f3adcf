package main

import (
	"fmt"
	"math"
	"time"

	"github.com/born-ml/backprop/internal/fnn"
	"github.com/born-ml/backprop/internal/model"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
)

func newPlainTable(alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == lgtable.HeaderRow:
				s = headerRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			return s.Align(alignment)
		})
}

func layersTable(m *model.Model) *lgtable.Table {
	table := newPlainTable(lipgloss.Right, lipgloss.Left, lipgloss.Left, lipgloss.Right)
	table.Headers("#", "Name", "Kind", "In", "Out", "Params")
	for _, info := range m.Summary() {
		table.Row(
			fmt.Sprint(info.Handle),
			info.Name,
			info.Kind,
			humanize.Comma(int64(info.InputSize)),
			humanize.Comma(int64(info.OutputSize)),
			humanize.Comma(int64(info.Params)),
		)
	}
	return table
}

func configTable(net *fnn.Network) *lgtable.Table {
	cfg := net.Config()
	m := net.Model()
	table := newPlainTable(lipgloss.Left, lipgloss.Right)
	table.Row("network", cfg.Name)
	table.Row("# parameters", humanize.Comma(int64(m.ParamCount())))
	table.Row("parameter file", humanize.Bytes(uint64(8*m.ParamCount())))
	table.Row("loss", cfg.Loss.String())
	table.Row("optimizer", cfg.Optimizer.String())
	table.Row("init", fmt.Sprintf("%s / %s", cfg.Init, cfg.Distribution))
	table.Row("kernels", cfg.Kernels.String())
	table.Row("parallelization", fmt.Sprintf("%s (%d workers)", cfg.Parallelization, cfg.Workers))
	if seed := m.Seed(); seed != 0 {
		table.Row("seed", fmt.Sprint(seed))
	}
	return table
}

func historyTable(h fnn.History, maxRows int) *lgtable.Table {
	table := newPlainTable(lipgloss.Right)
	table.Headers("Epoch", "Avg loss", "Accuracy", "Time")
	epochs := h.Epochs
	if maxRows > 0 && len(epochs) > maxRows {
		epochs = epochs[len(epochs)-maxRows:]
	}
	for _, e := range epochs {
		table.Row(fmt.Sprint(e.Epoch), formatFloat(e.AvgLoss()), formatPercent(e.Accuracy()), e.Duration.Round(time.Millisecond).String())
	}
	return table
}

func scoreTable(s nn.Score) *lgtable.Table {
	table := newPlainTable(lipgloss.Left, lipgloss.Right)
	table.Row("samples", humanize.Comma(int64(s.Samples())))
	table.Row("correct", humanize.Comma(int64(s.Correct)))
	table.Row("avg loss", formatFloat(s.AvgLoss()))
	table.Row("accuracy", formatPercent(s.Accuracy()))
	return table
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6g", v)
}

func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", 100*v)
}
