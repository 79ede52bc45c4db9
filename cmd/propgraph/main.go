package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/matsolve/propgraph/internal/builtin"
	"github.com/matsolve/propgraph/internal/config"
	"github.com/matsolve/propgraph/internal/explore"
	"github.com/matsolve/propgraph/internal/graph"
	"github.com/matsolve/propgraph/internal/material"
	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/storage"
)

var (
	dataDir    string
	configFile string
	// derive options
	preset string
	save   bool
	note   string
	// sweep options
	sweepInput  string
	sweepOutput string
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "propgraph",
		Short: "materials property derivation graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(cmd)
			if err != nil {
				return err
			}
			return explore.Run(reg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "session data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	symbolsCmd := &cobra.Command{
		Use:   "symbols",
		Short: "list registered symbols",
		RunE:  listSymbols,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list registered models",
		RunE:  listModels,
	}

	deriveCmd := &cobra.Command{
		Use:   "derive [material.yaml]",
		Short: "derive every reachable property of a material",
		Args:  cobra.MaximumNArgs(1),
		RunE:  deriveMaterial,
	}
	deriveCmd.Flags().StringVar(&preset, "preset", "", "use a starter material instead of a file")
	deriveCmd.Flags().BoolVar(&save, "save", false, "save the session to the data directory")
	deriveCmd.Flags().StringVar(&note, "note", "", "session note")

	distanceCmd := &cobra.Command{
		Use:   "distance [from] [to]",
		Short: "degree of separation between two symbols",
		Args:  cobra.ExactArgs(2),
		RunE:  showDistance,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one input property and plot a derived output",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&preset, "preset", "", "starter material supplying the fixed properties")
	sweepCmd.Flags().StringVar(&sweepInput, "input", "", "symbol to sweep")
	sweepCmd.Flags().StringVar(&sweepOutput, "output", "", "derived symbol to plot")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "sweep start value (canonical units)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "sweep end value (canonical units)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 0, "number of sweep points")
	sweepCmd.MarkFlagRequired("input")
	sweepCmd.MarkFlagRequired("output")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "list saved derivation sessions",
		RunE:  listSessions,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [session_id]",
		Short: "export a saved session to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSession,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list starter materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				props := make([]string, 0)
				for p := range config.GetPreset(name) {
					props = append(props, p)
				}
				sort.Strings(props)
				fmt.Printf("  %-16s %s\n", name, strings.Join(props, ", "))
			}
			return nil
		},
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "browse the symbol and model libraries interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(cmd)
			if err != nil {
				return err
			}
			return explore.Run(reg)
		},
	}

	rootCmd.AddCommand(symbolsCmd, modelsCmd, deriveCmd, distanceCmd, sweepCmd, sessionsCmd, exportJSONCmd, presetsCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cmd.Flags().Changed("data") && cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}
	return cfg, nil
}

func buildRegistry(cmd *cobra.Command) (*registry.Registry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if err := builtin.Load(reg); err != nil {
		return nil, err
	}
	for _, path := range cfg.SymbolFiles {
		if err := builtin.LoadSymbolFile(reg, path); err != nil {
			return nil, err
		}
	}
	for _, path := range cfg.ModelFiles {
		if err := builtin.LoadModelFile(reg, path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func listSymbols(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUNITS\tCATEGORY\tDISPLAY")
	for _, name := range reg.Symbols.Names() {
		s, _ := reg.Symbols.Get(name)
		display := ""
		if len(s.DisplayNames) > 0 {
			display = s.DisplayNames[0]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.Units, s.Category, display)
	}
	return w.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINPUTS\tOUTPUTS")
	for _, name := range reg.Models.Names() {
		m, _ := reg.Models.Get(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", name,
			strings.Join(m.InputSymbols(), ","),
			strings.Join(m.OutputSymbols(), ","))
	}
	return w.Flush()
}

func materialFromPreset(reg *registry.Registry, name string) (*material.Material, error) {
	values := config.GetPreset(name)
	if values == nil {
		avail := config.ListPresets()
		sort.Strings(avail)
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, avail)
	}
	mat := material.New(name)
	symbols := make([]string, 0, len(values))
	for symName := range values {
		symbols = append(symbols, symName)
	}
	sort.Strings(symbols)
	for _, symName := range symbols {
		sym, ok := reg.Symbols.Get(symName)
		if !ok {
			return nil, fmt.Errorf("preset %s references unknown symbol %q", name, symName)
		}
		q, err := quantity.Create(sym, complex(values[symName], 0))
		if err != nil {
			return nil, err
		}
		mat.Add(q)
	}
	return mat, nil
}

func deriveMaterial(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(cmd)
	if err != nil {
		return err
	}

	var mat *material.Material
	switch {
	case preset != "":
		mat, err = materialFromPreset(reg, preset)
	case len(args) == 1:
		mat, err = material.Load(args[0], reg)
	default:
		return fmt.Errorf("either a material file or --preset is required")
	}
	if err != nil {
		return err
	}

	initial := mat.Len()
	g := graph.New(reg)
	g.AddMaterial(mat)

	fmt.Printf("material: %s\n", mat.Name)
	fmt.Printf("derived %d new quantities from %d inputs\n\n", mat.Len()-initial, initial)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tVALUE\tUNITS\tSOURCE")
	for _, q := range mat.Quantities() {
		source := "input"
		if q.Provenance != nil {
			source = q.Provenance.Model
		}
		fmt.Fprintf(w, "%s\t%.6g\t%s\t%s\n", q.Symbol.Name, q.Real(), q.Units, source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(mat, note)
		if err != nil {
			return err
		}
		fmt.Printf("\nsession id: %s\n", id)
	}
	return nil
}

func showDistance(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(cmd)
	if err != nil {
		return err
	}

	g := graph.New(reg)
	dist, found, err := g.DegreeOfSeparation(args[0], args[1])
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("no derivation path from %s to %s\n", args[0], args[1])
		return nil
	}
	fmt.Printf("degree of separation %s -> %s: %d\n", args[0], args[1], dist)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cmd)
	if err != nil {
		return err
	}

	inputSym, ok := reg.Symbols.Get(sweepInput)
	if !ok {
		return fmt.Errorf("unknown symbol: %s", sweepInput)
	}
	if !reg.Symbols.Contains(sweepOutput) {
		return fmt.Errorf("unknown symbol: %s", sweepOutput)
	}
	if sweepTo <= sweepFrom {
		return fmt.Errorf("--to must exceed --from")
	}
	steps := sweepSteps
	if steps <= 0 {
		steps = cfg.Sweep.Steps
	}
	if steps < 2 {
		steps = 2
	}

	fixed := map[string]float64{}
	if preset != "" {
		values := config.GetPreset(preset)
		if values == nil {
			return fmt.Errorf("unknown preset: %s", preset)
		}
		for symName, val := range values {
			if symName != sweepInput {
				fixed[symName] = val
			}
		}
	}

	g := graph.New(reg)
	data := make([]float64, 0, steps)
	missing := 0
	for i := 0; i < steps; i++ {
		val := sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(steps-1)

		initial := make([]*quantity.Quantity, 0, len(fixed)+1)
		q, err := quantity.Create(inputSym, complex(val, 0))
		if err != nil {
			return err
		}
		initial = append(initial, q)
		for symName, fv := range fixed {
			sym, ok := reg.Symbols.Get(symName)
			if !ok {
				continue
			}
			fq, err := quantity.Create(sym, complex(fv, 0))
			if err != nil {
				return err
			}
			initial = append(initial, fq)
		}

		point, found := firstValue(g.Evaluate(initial), sweepOutput)
		if !found {
			missing++
			continue
		}
		data = append(data, point)
	}

	if len(data) == 0 {
		return fmt.Errorf("no sweep point derived %s from %s", sweepOutput, sweepInput)
	}
	if missing > 0 {
		fmt.Printf("warning: %d of %d points failed to derive %s\n\n", missing, steps, sweepOutput)
	}

	caption := fmt.Sprintf("%s vs %s (%g to %g)", sweepOutput, sweepInput, sweepFrom, sweepTo)
	plot := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(plot)
	return nil
}

func firstValue(quantities []*quantity.Quantity, symName string) (float64, bool) {
	for _, q := range quantities {
		if q.Symbol.Name == symName {
			return q.Real(), true
		}
	}
	return 0, false
}

func listSessions(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	st := storage.New(dataDir)
	sessions, err := st.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tTIME\tQUANTITIES\tDERIVED\tNOTE")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID,
			s.Material,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Quantities,
			s.Derived,
			s.Note,
		)
	}
	return w.Flush()
}

func exportSession(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	mat, err := st.LoadMaterial(args[0], reg)
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(mat, meta)
}
