package debug

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (verdict, mounting pose)
	LevelLive    = 2 // Live info (search progress, exports written)
	LevelVerbose = 3 // Verbose (calculation details, frustum planes)
	LevelTrace   = 4 // Trace (per-candidate spans)
)

var (
	level  int
	out    io.Writer = os.Stdout
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (verdict, mounting pose)
// 2 = live info (search progress, exports written)
// 3 = verbose (calculation details, near/far planes, angles)
// 4 = trace (every candidate distance)
func Init(debugLevel int) {
	level = debugLevel
	logger = nil
	if level > LevelOff {
		logger = log.New(out, "[DepthMount] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
	if logger != nil {
		logger.SetOutput(w)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// Verdict prints the outcome of a coverage run (level 1).
func Verdict(mode string, feasible bool, distance float64, iterations int) {
	if level >= LevelInfo && logger != nil {
		state := "covered"
		if !feasible {
			state = "NOT covered"
		}
		logger.Printf("[INFO] Coverage (%s): %s at %.2f m after %d candidate(s)", mode, state, distance, iterations)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// Search prints the range an auto search will scan (level 2).
func Search(start, ceiling, step float64) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Scanning %.2f m .. %.2f m every %.3f m", start, ceiling, step)
	}
}

// Export prints a written output file (level 2).
func Export(kind, path string) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Wrote %s: %s", kind, path)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message.
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// Candidate prints one evaluated distance (level 4).
func Candidate(distance, yawSpanDeg, pitchSpanDeg float64, covered bool) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] d=%.3f yaw span=%.3f° pitch span=%.3f° covered=%v", distance, yawSpanDeg, pitchSpanDeg, covered)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}

// Fmt is a helper function that returns a formatted string
// only if debug is enabled (to avoid unnecessary allocations).
func Fmt(format string, args ...interface{}) string {
	if level > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}
