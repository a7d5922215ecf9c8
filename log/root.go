package log

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	VMMonitoring       = "vm_mod"    // Intcode machine steps and state changes
	PipelineMonitoring = "pipe_mod"  // Amplifier pipelines and phase search
	RobotMonitoring    = "robot_mod" // Hull painting robot
	StorageMonitoring  = "store_mod" // Result cache
	TraceMonitoring    = "trace_mod" // Trace writers and websocket hub
	CLIMonitoring      = "cli_mod"   // Command line front end
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "MAX", "MAXVERBOSITY":
		return levelMaxVerbosity, nil
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRIT", "CRITICAL":
		return LevelCrit, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// InitLogger installs a terminal logger on stderr at the given level.
func InitLogger(logLevel string) error {
	logLvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(os.Stderr, logLvl, true)))
	return nil
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// --- Module management ---

var (
	moduleMu      sync.RWMutex
	moduleEnabled = map[string]bool{
		VMMonitoring:       false,
		PipelineMonitoring: false,
		RobotMonitoring:    false,
		StorageMonitoring:  false,
		TraceMonitoring:    false,
		CLIMonitoring:      false,
	}
)

// KnownModules returns the module names the packages of this repository log under.
func KnownModules() []string {
	return []string{VMMonitoring, PipelineMonitoring, RobotMonitoring, StorageMonitoring, TraceMonitoring, CLIMonitoring}
}

// EnableModule enables trace and debug logging for the specified module.
func EnableModule(module string) {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	moduleEnabled[module] = true
}

// DisableModule disables trace and debug logging for the specified module.
func DisableModule(module string) {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	moduleEnabled[module] = false
}

// EnableModules enables a comma separated list of modules. "all" enables every known module.
func EnableModules(list string) {
	for _, module := range strings.Split(list, ",") {
		module = strings.TrimSpace(module)
		switch module {
		case "":
		case "all":
			for _, m := range KnownModules() {
				EnableModule(m)
			}
		default:
			EnableModule(module)
		}
	}
}

// IsModuleEnabled checks if trace and debug logging is enabled for the given module.
func IsModuleEnabled(module string) bool {
	moduleMu.RLock()
	defer moduleMu.RUnlock()
	return moduleEnabled[module]
}

// Trace logs a message at the trace level for a specific module.
func Trace(module string, msg string, ctx ...interface{}) {
	if !IsModuleEnabled(module) {
		return
	}
	newCtx := append([]interface{}{"module", module}, ctx...)
	Root().Write(LevelTrace, module, msg, newCtx...)
}

// Debug logs a message at the debug level for a specific module.
func Debug(module string, msg string, ctx ...interface{}) {
	if !IsModuleEnabled(module) {
		return
	}
	newCtx := append([]interface{}{"module", module}, ctx...)
	Root().Write(slog.LevelDebug, module, msg, newCtx...)
}

// The rest of the logging functions (Info, Warn, Error, Crit) dont filter on module
func Info(module string, msg string, ctx ...interface{}) {
	Root().Write(slog.LevelInfo, module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...interface{}) {
	Root().Write(slog.LevelWarn, module, msg, ctx...)
}

func Error(module string, msg string, ctx ...interface{}) {
	Root().Write(slog.LevelError, module, msg, ctx...)
}

func Crit(module string, msg string, ctx ...interface{}) {
	Root().Write(LevelCrit, module, msg, ctx...)
	os.Exit(1)
}

func New(ctx ...interface{}) Logger {
	return Root().With(ctx...)
}
