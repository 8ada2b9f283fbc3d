// Command array3710 drives an Array 3710A electronic load from the
// command line: one-shot setpoint and state changes, program upload
// from YAML files, and a polling watch mode.
//
// Examples:
//
//	array3710 -device /dev/ttyUSB0 -status
//	array3710 -device /dev/ttyUSB0 -remote on -current 2.5 -load on
//	array3710 -device /dev/ttyUSB0 -program ramp.yaml -start
//	array3710 -device /dev/ttyUSB0 -watch 1s
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sacherjj/array-devices/load"
	"github.com/sacherjj/array-devices/program"
	"github.com/sacherjj/array-devices/serialport"
)

// zapAdapter exposes a zap sugared logger through the load.Logger seam.
type zapAdapter struct {
	s *zap.SugaredLogger
}

func (z zapAdapter) Debug(msg string, kv ...interface{}) { z.s.Debugw(msg, kv...) }
func (z zapAdapter) Info(msg string, kv ...interface{})  { z.s.Infow(msg, kv...) }
func (z zapAdapter) Error(msg string, kv ...interface{}) { z.s.Errorw(msg, kv...) }

func main() {
	var (
		device      = flag.String("device", "", "serial device, e.g. /dev/ttyUSB0 or COM4 (required)")
		baud        = flag.Int("baud", 9600, "baud rate, must match the load's menu setting")
		address     = flag.Uint("address", 0, "load address (0-254), set on the load's menu")
		readTimeout = flag.Duration("read-timeout", 500*time.Millisecond, "serial read timeout")
		retries     = flag.Int("retries", 2, "extra status-read attempts")
		verbose     = flag.Bool("verbose", false, "debug logging")

		remote      = flag.String("remote", "", "switch remote control: on or off")
		loadState   = flag.String("load", "", "switch the load input: on or off")
		current     = flag.Float64("current", 0, "constant-current setpoint in amps (0-30)")
		power       = flag.Float64("power", 0, "constant-power setpoint in watts (0-200)")
		resistance  = flag.Float64("resistance", 0, "constant-resistance setpoint in ohms (0-500)")
		maxCurrent  = flag.Float64("max-current", 0, "current limit in amps (0-30)")
		maxPower    = flag.Float64("max-power", 0, "power limit in watts (0-200)")
		programPath = flag.String("program", "", "upload a YAML program file")
		start       = flag.Bool("start", false, "start the stored program (turns the load on)")
		stop        = flag.Bool("stop", false, "stop the running program (turns the load off)")
		status      = flag.Bool("status", false, "read and print the load status")
		watch       = flag.Duration("watch", 0, "poll and print measurements at this interval until interrupted")
	)
	flag.Parse()

	if *device == "" {
		fmt.Fprintln(os.Stderr, "array3710: -device is required")
		flag.Usage()
		os.Exit(2)
	}
	if *address > 0xFE {
		fmt.Fprintln(os.Stderr, "array3710: -address must be 0-254")
		os.Exit(2)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	modeFlags := 0
	for _, name := range []string{"current", "power", "resistance"} {
		if set[name] {
			modeFlags++
		}
	}
	if modeFlags > 1 {
		fmt.Fprintln(os.Stderr, "array3710: -current, -power and -resistance are mutually exclusive")
		os.Exit(2)
	}

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, sugar, runConfig{
		device:      *device,
		baud:        *baud,
		address:     byte(*address),
		readTimeout: *readTimeout,
		retries:     *retries,

		set:         set,
		remote:      *remote,
		loadState:   *loadState,
		current:     *current,
		power:       *power,
		resistance:  *resistance,
		maxCurrent:  *maxCurrent,
		maxPower:    *maxPower,
		programPath: *programPath,
		start:       *start,
		stop:        *stop,
		status:      *status,
		watch:       *watch,
	}); err != nil {
		sugar.Errorw("command failed", "error", err.Error())
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "array3710: logger setup: %v\n", err)
		os.Exit(1)
	}
	return logger
}

type runConfig struct {
	device      string
	baud        int
	address     byte
	readTimeout time.Duration
	retries     int

	set         map[string]bool
	remote      string
	loadState   string
	current     float64
	power       float64
	resistance  float64
	maxCurrent  float64
	maxPower    float64
	programPath string
	start       bool
	stop        bool
	status      bool
	watch       time.Duration
}

func run(ctx context.Context, sugar *zap.SugaredLogger, cfg runConfig) error {
	port, err := serialport.Open(cfg.device,
		serialport.WithBaudRate(cfg.baud),
		serialport.WithReadTimeout(cfg.readTimeout),
	)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()
	sugar.Debugw("port open", "device", cfg.device, "baud", cfg.baud)

	ld := load.New(port, cfg.address,
		load.WithRetries(cfg.retries),
		load.WithLogger(zapAdapter{s: sugar}),
	)

	if on, apply, err := parseSwitch("remote", cfg.remote); err != nil {
		return err
	} else if apply {
		if err := ld.SetRemoteControl(ctx, on); err != nil {
			return fmt.Errorf("set remote control: %w", err)
		}
		sugar.Infow("remote control", "address", cfg.address, "on", on)
	}

	if cfg.set["max-current"] {
		if err := ld.SetMaxCurrent(ctx, cfg.maxCurrent); err != nil {
			return fmt.Errorf("set max current: %w", err)
		}
	}
	if cfg.set["max-power"] {
		if err := ld.SetMaxPower(ctx, cfg.maxPower); err != nil {
			return fmt.Errorf("set max power: %w", err)
		}
	}

	switch {
	case cfg.set["current"]:
		if err := ld.SetLoadCurrent(ctx, cfg.current); err != nil {
			return fmt.Errorf("set load current: %w", err)
		}
		sugar.Infow("constant current", "amps", cfg.current)
	case cfg.set["power"]:
		if err := ld.SetLoadPower(ctx, cfg.power); err != nil {
			return fmt.Errorf("set load power: %w", err)
		}
		sugar.Infow("constant power", "watts", cfg.power)
	case cfg.set["resistance"]:
		if err := ld.SetLoadResistance(ctx, cfg.resistance); err != nil {
			return fmt.Errorf("set load resistance: %w", err)
		}
		sugar.Infow("constant resistance", "ohms", cfg.resistance)
	}

	if cfg.programPath != "" {
		prog, err := program.ParseFile(cfg.programPath)
		if err != nil {
			return err
		}
		if err := ld.SetProgramSequence(ctx, prog); err != nil {
			return fmt.Errorf("upload program: %w", err)
		}
		sugar.Infow("program uploaded",
			"file", cfg.programPath,
			"type", prog.Type().String(),
			"steps", prog.Len(),
			"run", prog.RunMode().String(),
		)
	}

	if cfg.start {
		if err := ld.StartProgram(ctx, true); err != nil {
			return fmt.Errorf("start program: %w", err)
		}
		sugar.Infow("program started")
	}
	if cfg.stop {
		if err := ld.StopProgram(ctx, true); err != nil {
			return fmt.Errorf("stop program: %w", err)
		}
		sugar.Infow("program stopped")
	}

	if on, apply, err := parseSwitch("load", cfg.loadState); err != nil {
		return err
	} else if apply {
		if err := ld.SetLoadOn(ctx, on); err != nil {
			return fmt.Errorf("set load state: %w", err)
		}
		sugar.Infow("load input", "on", on)
	}

	if cfg.status {
		if err := printStatus(ctx, ld); err != nil {
			return err
		}
	}

	if cfg.watch > 0 {
		return watchLoop(ctx, ld, cfg.watch)
	}
	return nil
}

func parseSwitch(name, value string) (on, apply bool, err error) {
	switch value {
	case "":
		return false, false, nil
	case "on":
		return true, true, nil
	case "off":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("-%s must be on or off, got %q", name, value)
	}
}

func printStatus(ctx context.Context, ld *load.Load) error {
	if err := ld.UpdateStatus(ctx); err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	fmt.Printf("address %d: %.3f V  %.3f A  %.1f W  %.2f ohm\n",
		ld.Address(), ld.Voltage(), ld.Current(), ld.Power(), ld.Resistance())
	fmt.Printf("  limits: %.3f A / %.1f W   remote=%v load=%v\n",
		ld.MaxCurrent(), ld.MaxPower(), ld.RemoteControl(), ld.LoadOn())
	if ld.WrongPolarity() || ld.ExcessiveTemp() || ld.ExcessiveVoltage() || ld.ExcessivePower() {
		fmt.Printf("  FAULT: polarity=%v temp=%v voltage=%v power=%v\n",
			ld.WrongPolarity(), ld.ExcessiveTemp(), ld.ExcessiveVoltage(), ld.ExcessivePower())
	}
	return nil
}

func watchLoop(ctx context.Context, ld *load.Load, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := printStatus(ctx, ld); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			fmt.Println("interrupted")
			return nil
		case <-ticker.C:
		}
	}
}
