package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/inference-sim/queueing-sim/sim/scenario"
	"github.com/inference-sim/queueing-sim/sim/trace"
)

var (
	// Scenario parameters
	seed         int64     // Seed for arrival and service sampling
	arrivalRate  float64   // Arrivals per time unit (lambda)
	serviceRates []float64 // Service rate per server (mu), one value per station
	servers      []int     // Servers per station
	horizon      float64   // Simulated time after which arrivals stop
	drain        bool      // Keep serving after the horizon until every station is idle
	maxEntities  int       // Stop generating after this many entities (0 = no cap)
	replications int       // Number of independent runs for `replicate`

	// Scenario sources
	configPath  string // Scenario YAML file
	presetName  string // Preset name in the presets file
	presetsPath string // Presets file

	// Outputs
	csvPath     string // CSV event log
	jsonlPath   string // JSON-lines event log
	sqlitePath  string // SQLite event database
	traceEvents bool   // Print the event table and a trace summary
	jsonOutput  bool   // Print the report as JSON
	logLevel    string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queueing-sim",
	Short: "Discrete-event simulator for queues and queueing networks",
}

// runCmd simulates one scenario and prints its report
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		sinks, collected, err := openSinks(cmd.OutOrStdout())
		if err != nil {
			logrus.Fatalf("Unable to open event outputs: %v", err)
		}
		report, err := scenario.Run(cfg, scenario.WithSink(sinks))
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := sinks.Close(); err != nil {
			logrus.Fatalf("Unable to finish event outputs: %v", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := report.WriteJSON(out); err != nil {
				logrus.Fatalf("Unable to write report: %v", err)
			}
		} else {
			report.Print(out)
			if collected != nil {
				printTraceSummary(out, trace.Summarize(collected))
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// replicateCmd repeats a scenario over consecutive seeds
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replications and report confidence intervals",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		if replications < 1 {
			logrus.Fatalf("--replications must be >= 1, got %d", replications)
		}

		sinks, _, err := openSinks(cmd.OutOrStdout())
		if err != nil {
			logrus.Fatalf("Unable to open event outputs: %v", err)
		}
		summary, err := scenario.Replicate(cfg, replications, scenario.WithSink(sinks))
		if err != nil {
			logrus.Fatalf("Replication failed: %v", err)
		}
		if err := sinks.Close(); err != nil {
			logrus.Fatalf("Unable to finish event outputs: %v", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := writeJSON(out, summary); err != nil {
				logrus.Fatalf("Unable to write summary: %v", err)
			}
			return
		}
		summary.Print(out)
	},
}

// presetsCmd lists the scenarios of the presets file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the preset scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		presets, err := loadPresets(presetsPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printPresets(cmd.OutOrStdout(), presets)
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveConfig builds the scenario from, in order of precedence, explicitly
// set flags, then --config or --preset, then flag defaults. Flags only
// override file values when the user set them.
func resolveConfig(cmd *cobra.Command) (scenario.Config, error) {
	flags := cmd.Flags()
	if configPath != "" && presetName != "" {
		return scenario.Config{}, fmt.Errorf("--config and --preset are mutually exclusive")
	}

	var cfg scenario.Config
	fromFile := true
	switch {
	case configPath != "":
		loaded, err := scenario.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	case presetName != "":
		presets, err := loadPresets(presetsPath)
		if err != nil {
			return cfg, err
		}
		if cfg, err = presets.Lookup(presetName); err != nil {
			return cfg, err
		}
	default:
		fromFile = false
	}

	if !fromFile || flags.Changed("arrival-rate") {
		cfg.ArrivalRate = arrivalRate
	}
	setRates := !fromFile || flags.Changed("service-rate")
	setServers := !fromFile || flags.Changed("servers")
	if setRates || setServers {
		stations, err := stationsFromFlags(cfg.Stations, setRates, setServers)
		if err != nil {
			return cfg, err
		}
		cfg.Stations = stations
	}
	if !fromFile || flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if !fromFile || flags.Changed("drain") {
		cfg.Drain = drain
	}
	if !fromFile || flags.Changed("max-entities") {
		cfg.MaxEntities = maxEntities
	}
	if !fromFile || flags.Changed("seed") {
		cfg.Seed = seed
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logrus.Debugf("Resolved scenario %s: %+v", cfg.Name, cfg)
	return cfg, nil
}

// stationsFromFlags applies --service-rate and --servers to the stations.
// Each flag takes one value per station, or a single value for all of them;
// more values than existing stations add stations to the network.
func stationsFromFlags(existing []scenario.StationConfig, setRates, setServers bool) ([]scenario.StationConfig, error) {
	var lengths []int
	if setRates {
		lengths = append(lengths, len(serviceRates))
	}
	if setServers {
		lengths = append(lengths, len(servers))
	}
	n := max(len(existing), 1)
	for _, l := range lengths {
		n = max(n, l)
	}
	for _, l := range lengths {
		if l != 1 && l != n {
			return nil, fmt.Errorf("per-station flags give %d values for %d stations", l, n)
		}
	}

	stations := make([]scenario.StationConfig, n)
	copy(stations, existing)
	for i := range stations {
		if setRates {
			stations[i].ServiceRate = serviceRates[min(i, len(serviceRates)-1)]
		}
		if setServers {
			stations[i].Servers = servers[min(i, len(servers)-1)]
		}
	}
	return stations, nil
}

// outputs fans records out to the requested event logs. Close may be
// called both on the normal path and at exit.
type outputs struct {
	*trace.MultiSink
	once     sync.Once
	closeErr error
}

func (o *outputs) Close() error {
	o.once.Do(func() { o.closeErr = o.MultiSink.Close() })
	return o.closeErr
}

// openSinks opens every requested event output. The outputs are closed at
// exit even when the run aborts. collected is non-nil with --trace.
func openSinks(out io.Writer) (*outputs, *trace.SimulationTrace, error) {
	sinks := &outputs{MultiSink: trace.NewMultiSink()}
	atexit.Register(func() { _ = sinks.Close() })

	var collected *trace.SimulationTrace
	if traceEvents {
		sinks.Add(trace.NewConsoleSink(out))
		collected = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
		sinks.Add(collected)
	}
	if csvPath != "" {
		s, err := trace.CreateCSVSink(csvPath)
		if err != nil {
			return nil, nil, err
		}
		sinks.Add(s)
		logrus.Infof("Writing CSV event log to %s", csvPath)
	}
	if jsonlPath != "" {
		s, err := trace.NewJSONLWriter(jsonlPath)
		if err != nil {
			return nil, nil, err
		}
		sinks.Add(s)
		logrus.Infof("Writing JSONL event log to %s", jsonlPath)
	}
	if sqlitePath != "" {
		s, err := trace.NewSQLiteSink(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		sinks.Add(s)
		logrus.Infof("Writing SQLite event database to %s", s.Filename())
	}
	return sinks, collected, nil
}

// Execute runs the CLI root command
func Execute() {
	logrus.RegisterExitHandler(func() { atexit.Exit(1) })
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// registerScenarioFlags binds the scenario, source and output flags of c.
func registerScenarioFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for arrival and service sampling")
	c.Flags().Float64Var(&arrivalRate, "arrival-rate", 0.5, "Arrivals per time unit (lambda)")
	c.Flags().Float64SliceVar(&serviceRates, "service-rate", []float64{1.0}, "Service rate per server (mu); one value per station")
	c.Flags().IntSliceVar(&servers, "servers", []int{1}, "Servers per station; one value applies to every station")
	c.Flags().Float64Var(&horizon, "horizon", 480, "Simulated time after which arrivals stop (0 = until max-entities)")
	c.Flags().BoolVar(&drain, "drain", true, "Keep serving after the horizon until every station is idle")
	c.Flags().IntVar(&maxEntities, "max-entities", 0, "Stop after this many arrivals (0 = no cap)")

	c.Flags().StringVar(&configPath, "config", "", "Scenario YAML file")
	c.Flags().StringVar(&presetName, "preset", "", "Preset scenario name (see `queueing-sim presets`)")
	c.Flags().StringVar(&presetsPath, "presets", "presets.yaml", "Presets file")

	c.Flags().StringVar(&csvPath, "csv", "", "Write the event log as CSV to this file")
	c.Flags().StringVar(&jsonlPath, "jsonl", "", "Write the event log as JSON lines to this file")
	c.Flags().StringVar(&sqlitePath, "sqlite", "", "Write the event log to this SQLite database (.sqlite3 is appended)")
	c.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	registerScenarioFlags(runCmd)
	registerScenarioFlags(replicateCmd)
	runCmd.Flags().BoolVar(&traceEvents, "trace", false, "Print the event table and a trace summary")
	replicateCmd.Flags().IntVar(&replications, "replications", 30, "Number of independent replications")

	presetsCmd.Flags().StringVar(&presetsPath, "presets", "presets.yaml", "Presets file")
	presetsCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(presetsCmd)
}
