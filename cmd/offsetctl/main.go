package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/offsetctl/internal/config"
	"github.com/san-kum/offsetctl/internal/harness"
	"github.com/san-kum/offsetctl/internal/host"
	"github.com/san-kum/offsetctl/internal/metrics"
	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/storage"
	"github.com/san-kum/offsetctl/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	label      string
	dt         float64
	duration   float64
	startTime  float64
	camTarget  float64
	supTarget  float64
	moveAt     float64
	iters      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "offsetctl",
		Short: "operator-in-the-loop offset control for simulation hosts",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".offsetctl", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted harness session",
		RunE:  runScripted,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&label, "label", "manual", "run label")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().Float64Var(&startTime, "start", config.DefaultStartTime, "activation time")
	runCmd.Flags().Float64Var(&camTarget, "cam", 0, "cam slider target (mm)")
	runCmd.Flags().Float64Var(&supTarget, "support", 0, "support slider target (m)")
	runCmd.Flags().Float64Var(&moveAt, "at", 1.0, "time the flag targets are applied")
	runCmd.Flags().IntVar(&iters, "iters", 0, "solver re-invocations per step")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the sliders interactively",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().StringVar(&label, "label", "live", "run label")
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	liveCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	liveCmd.Flags().Float64Var(&startTime, "start", config.DefaultStartTime, "activation time")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [config]",
		Short: "validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file, and flag overrides, in that
// order of increasing precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("start") {
		cfg.StartTime = startTime
	}

	return cfg, nil
}

func defaultMetrics(cfg *config.Config, h *harness.Harness) {
	for _, role := range h.Roles() {
		rc := cfg.Roles[role.String()]
		h.AddMetric(metrics.NewMaxStepDelta(role))
		h.AddMetric(metrics.NewSettleTime(role, rc.MaxRate*cfg.Dt))
		h.AddMetric(metrics.NewTravel(role))
	}
}

func runScripted(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	schedule := cfg.Schedule
	if cmd.Flags().Changed("cam") {
		schedule = append(schedule, panel.Move{At: moveAt, Role: "cam", Value: camTarget})
	}
	if cmd.Flags().Changed("support") {
		schedule = append(schedule, panel.Move{At: moveAt, Role: "support", Value: supTarget})
	}

	surface, err := panel.NewScripted(schedule)
	if err != nil {
		return err
	}

	h, err := harness.New(cfg, surface)
	if err != nil {
		return err
	}
	h.InnerIterations = iters
	defaultMetrics(cfg, h)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println("running harness session...")
	start := time.Now()

	result, err := h.Run(context.Background())
	if err != nil && !errors.Is(err, host.ErrUserAbort) {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(label, cfg.Dt, cfg.Duration, cfg.StartTime, h.Roles(), result)
	if err != nil {
		return err
	}

	if result.Aborted {
		fmt.Println("aborted by operator")
	}
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	surface := tui.NewPanel()
	h, err := harness.New(cfg, surface)
	if err != nil {
		return err
	}
	defaultMetrics(cfg, h)

	roleCfgs, err := cfg.RoleConfigs()
	if err != nil {
		return err
	}

	m := tui.NewModel(h, surface, roleCfgs, cfg.Dt, cfg.Duration)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return err
	}

	result, err := h.Finish()
	if err != nil {
		return err
	}
	if fm, ok := final.(tui.Model); ok && fm.Aborted() {
		result.Aborted = true
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runID, err := st.Save(label, cfg.Dt, cfg.Duration, cfg.StartTime, h.Roles(), result)
	if err != nil {
		return err
	}

	if result.Aborted {
		fmt.Println("aborted by operator")
	}
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tDURATION\tDT\tROLES\tABORTED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%v\t%v\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Roles,
			run.Aborted,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, columns, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("label: %s\n", meta.Label)
	fmt.Printf("samples: %d\n\n", len(times))

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		graph := asciigraph.Plot(columns[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	times, columns, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(times) == 0 {
		return fmt.Errorf("no data to export")
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append([]string{"time"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range times {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(columns[name][i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, columns, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, times, columns)
}
