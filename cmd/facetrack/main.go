// Command facetrack replays a recording of detection frames through the
// parameter engine and prints one injection payload per computed frame.
//
// Frames are read as JSON lines from a file argument or stdin. A consumer
// goroutine polls the engine's latest result, the way a display would, and
// records it to SQLite when -db is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lilacgalaxy/vts-face-tracker/internal/config"
	"github.com/lilacgalaxy/vts-face-tracker/internal/engine"
	"github.com/lilacgalaxy/vts-face-tracker/internal/monitoring"
	"github.com/lilacgalaxy/vts-face-tracker/internal/plotting"
	"github.com/lilacgalaxy/vts-face-tracker/internal/storage/sqlite"
	"github.com/lilacgalaxy/vts-face-tracker/internal/timeutil"
	"github.com/lilacgalaxy/vts-face-tracker/internal/version"
)

type options struct {
	settings    string
	params      string
	defaults    bool
	saveConfig  bool
	calibrateAt int
	plotDir     string
	db          string
	logLevel    string
	dev         bool
	noSnapshots bool
	poll        time.Duration
	showVersion bool
	input       string

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("facetrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.settings, "settings", "", "YAML settings file")
	fs.StringVar(&o.params, "params", "", "parameter configuration file (overrides settings)")
	fs.BoolVar(&o.defaults, "defaults", false, "start from the built-in parameter set, ignoring the file")
	fs.BoolVar(&o.saveConfig, "save-config", false, "write the configuration back to the parameter file on exit")
	fs.IntVar(&o.calibrateAt, "calibrate-at", -1, "calibrate the neutral head pose after this frame index")
	fs.StringVar(&o.plotDir, "plot-dir", "", "write a landmark PNG and an output chart to this directory")
	fs.StringVar(&o.db, "db", "", "record results to this SQLite database")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&o.dev, "dev", false, "human readable development logging")
	fs.BoolVar(&o.noSnapshots, "no-snapshots", false, "do not retain the latest result")
	fs.DurationVar(&o.poll, "poll", 0, "consumer poll interval")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	switch fs.NArg() {
	case 0:
		o.input = "-"
	case 1:
		o.input = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one recording, got %d", fs.NArg())
	}
	return o, nil
}

// resolve loads the settings file, if any, and applies explicitly set flags
// over it.
func (o *options) resolve() (config.Settings, error) {
	s := config.DefaultSettings()
	if o.settings != "" {
		var err error
		if s, err = config.LoadSettings(nil, o.settings); err != nil {
			return s, err
		}
	}
	if o.set["params"] {
		s.ParametersFile = o.params
	}
	if o.set["log-level"] {
		s.LogLevel = o.logLevel
	}
	if o.set["dev"] {
		s.Development = o.dev
	}
	if o.set["no-snapshots"] {
		s.Snapshots = !o.noSnapshots
	}
	if o.set["poll"] {
		s.PollInterval = o.poll.String()
	}
	if o.set["db"] {
		s.RecorderDB = o.db
	}
	if o.set["plot-dir"] {
		s.PlotDir = o.plotDir
	}
	return s, s.Validate()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "facetrack:", err)
		os.Exit(1)
	}
}

type stats struct {
	frames, computed, empty, failed int
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String("facetrack"))
		return nil
	}

	s, err := o.resolve()
	if err != nil {
		return err
	}
	if err := monitoring.Init(s.LogLevel, s.Development); err != nil {
		return err
	}
	defer monitoring.Sync()
	log := monitoring.L()

	var engOpts []engine.Option
	engOpts = append(engOpts, engine.WithSnapshots(s.Snapshots))
	if o.defaults {
		engOpts = append(engOpts, engine.WithConfiguration(config.Defaults()))
	}
	eng, err := engine.New(config.NewStore(nil, s.ParametersFile), engOpts...)
	if err != nil {
		return err
	}

	in := stdin
	source := "stdin"
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return err
		}
		defer f.Close()
		in, source = f, o.input
	}

	var (
		rec     *sqlite.Recorder
		session *sqlite.Session
	)
	if s.RecorderDB != "" {
		if !s.Snapshots {
			log.Warn("snapshots are disabled; nothing will be recorded", zap.String("db", s.RecorderDB))
		}
		if rec, err = sqlite.Open(s.RecorderDB); err != nil {
			return err
		}
		defer rec.Close()
		if session, err = rec.StartSession(source); err != nil {
			return err
		}
		log.Info("recording session", zap.String("session_id", session.SessionID), zap.String("db", s.RecorderDB))
	}

	// Consumer: poll the latest result until the producer is done.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		eng.Watch(watchCtx, timeutil.RealClock{}, s.GetPollInterval(), func(r *engine.Result) {
			if rec == nil {
				return
			}
			if err := rec.Record(session.SessionID, r.Timestamp, r.Outputs); err != nil {
				log.Error("record result", zap.Error(err), zap.Int64("timestamp_ms", r.Timestamp))
			}
		})
	}()

	st, perr := produce(ctx, eng, engine.NewFrameReader(in), stdout, o.calibrateAt)
	stopWatch()
	<-watched

	log.Info("replay finished",
		zap.String("source", source),
		zap.Int("frames", st.frames),
		zap.Int("computed", st.computed),
		zap.Int("empty", st.empty),
		zap.Int("failed", st.failed),
		zap.Int64("non_rigid", eng.NonRigidFrames()))
	if perr != nil {
		return perr
	}
	if r := eng.Latest(); r != nil {
		log.Info("last result", zap.Int64("timestamp_ms", r.Timestamp), zap.Any("outputs", r.OutputMap()))
	}

	if o.saveConfig {
		if err := eng.Save(); err != nil {
			return err
		}
	}
	if s.PlotDir != "" {
		if err := writePlots(s.PlotDir, eng, rec, session); err != nil {
			return err
		}
	}
	return nil
}

// produce drives the engine with every frame from r. Frames that fail to
// compute are logged and skipped; a malformed recording stops the replay.
func produce(ctx context.Context, eng *engine.Engine, r *engine.FrameReader, out io.Writer, calibrateAt int) (stats, error) {
	log := monitoring.L()
	var st stats
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		idx := st.frames
		st.frames++

		outs, err := eng.Compute(f)
		switch {
		case err != nil:
			st.failed++
			log.Warn("frame rejected", zap.Int64("timestamp_ms", f.Timestamp), zap.Error(err))
		case len(outs) == 0:
			st.empty++
		default:
			st.computed++
			if err := engine.WriteOutputs(out, f.Timestamp, outs); err != nil {
				return st, err
			}
		}

		if idx == calibrateAt {
			if err := eng.Calibrate(); err != nil {
				log.Warn("calibration skipped", zap.Int("frame", idx), zap.Error(err))
			}
		}
	}
}

func writePlots(dir string, eng *engine.Engine, rec *sqlite.Recorder, session *sqlite.Session) error {
	if r := eng.Latest(); r != nil {
		title := fmt.Sprintf("landmarks at %d ms", r.Timestamp)
		if err := plotting.SaveLandmarks(nil, filepath.Join(dir, "landmarks.png"), r.Landmarks, title); err != nil {
			return err
		}
	}
	if rec == nil {
		return nil
	}
	series, err := rec.Series(session.SessionID)
	if err != nil {
		return err
	}
	return plotting.SaveOutputChart(nil, filepath.Join(dir, "outputs.html"), series, "Output parameters", session.SessionID)
}
