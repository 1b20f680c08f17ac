// Command swarmeng runs and inspects multi-agent swarm simulations:
// Reynolds flocking, Olfati-Saber α-lattice flocking, fixed-time
// formation control under exponential control barrier functions, and
// that same α-lattice behavior filtered through a CBF-QP safety layer.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swarmeng/internal/config"
	"github.com/san-kum/swarmeng/internal/engine"
	"github.com/san-kum/swarmeng/internal/store"
)

var (
	dataDir    string
	algorithm  string
	dt         float64
	duration   float64
	plane2D    bool
	configFile string
	presetName string
	stride     int
	jsonOut    bool
	frameRate  int
)

// main registers the command tree and executes it, exiting with status
// 1 if the selected command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "swarmeng",
		Short: "multi-agent flocking and formation-control simulation lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swarmeng", "run storage directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a swarm simulation and save the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSwarm,
	}
	runCmd.Flags().StringVar(&algorithm, "algorithm", "", "steering algorithm id (defaults to the model's default)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep, seconds")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "run duration, seconds")
	runCmd.Flags().BoolVar(&plane2D, "plane2d", false, "project all motion onto the z=0 plane")
	runCmd.Flags().StringVar(&configFile, "config", "", "run description file (yaml)")
	runCmd.Flags().StringVar(&presetName, "preset", "", "named preset for the model")
	runCmd.Flags().IntVar(&stride, "stride", 1, "record every Nth frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [run_id]",
		Short: "plot a saved run's trajectory to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRun,
	}
	inspectCmd.Flags().BoolVar(&jsonOut, "json", false, "print the recording as JSON instead of plotting")

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "run a swarm simulation with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchSwarm,
	}
	watchCmd.Flags().StringVar(&algorithm, "algorithm", "", "steering algorithm id")
	watchCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep, seconds")
	watchCmd.Flags().IntVar(&frameRate, "fps", 30, "target refresh rate")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets available for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, inspectCmd, watchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRunConfig(args []string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if presetName != "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("a model argument is required with --preset")
		}
		cfg := config.GetPreset(args[0], presetName)
		if cfg == nil {
			return nil, fmt.Errorf("no preset %q for model %q", presetName, args[0])
		}
		return cfg, nil
	}

	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if algorithm != "" {
		cfg.Algorithm = algorithm
	}
	cfg.Dt = dt
	cfg.Duration = duration
	cfg.Plane2D = plane2D
	return cfg, nil
}

func runSwarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(args)
	if err != nil {
		return err
	}

	rec, err := store.Run(cfg, stride)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, rec)
	if err != nil {
		return err
	}

	fmt.Printf("saved run %s (%d frames, %d agents)\n", runID, rec.FrameCount, rec.Meta.AgentCount)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tALGORITHM\tFRAMES\tDT\tCREATED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%s\n",
			run.ID,
			run.Model,
			run.Algorithm,
			run.FrameCount,
			run.Dt,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func inspectRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)
	rec, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if jsonOut {
		return store.ExportJSONStdout(rec)
	}

	if rec.FrameCount == 0 {
		return fmt.Errorf("run %s has no frames", runID)
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("model: %s  algorithm: %s\n", rec.Meta.ModelID, rec.Meta.AlgorithmID)
	fmt.Printf("frames: %d  agents: %d\n\n", rec.FrameCount, rec.Meta.AgentCount)

	fields := rec.Meta.Fields
	fieldCount := len(fields)
	agentCount := rec.Meta.AgentCount
	if fieldCount == 0 || agentCount == 0 {
		return fmt.Errorf("run %s has no recorded fields", runID)
	}

	meanDistance := make([]float64, rec.FrameCount)
	for frame := 0; frame < rec.FrameCount; frame++ {
		base := frame * agentCount * fieldCount
		cx, cy, cz := 0.0, 0.0, 0.0
		for a := 0; a < agentCount; a++ {
			off := base + a*fieldCount
			cx += float64(rec.States[off])
			cy += float64(rec.States[off+1])
			cz += float64(rec.States[off+2])
		}
		cx /= float64(agentCount)
		cy /= float64(agentCount)
		cz /= float64(agentCount)

		sum := 0.0
		for a := 0; a < agentCount; a++ {
			off := base + a*fieldCount
			dx := float64(rec.States[off]) - cx
			dy := float64(rec.States[off+1]) - cy
			dz := float64(rec.States[off+2]) - cz
			sum += dx*dx + dy*dy + dz*dz
		}
		meanDistance[frame] = sum / float64(agentCount)
	}

	graph := asciigraph.Plot(meanDistance,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("mean squared distance from centroid"),
	)
	fmt.Println(graph)
	return nil
}

func watchSwarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(args)
	if err != nil {
		return err
	}
	eng, err := engine.NewWithIDs(cfg.Model, cfg.Algorithm)
	if err != nil {
		return err
	}
	if frameRate <= 0 {
		frameRate = 30
	}

	p := tea.NewProgram(newWatchModel(eng, time.Second/time.Duration(frameRate)))
	_, err = p.Run()
	return err
}
