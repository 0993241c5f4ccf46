package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunLogger manages the transcript for a single generation run. The
// transcript is the run's only user-visible progress signal: an append-only
// sequence of timestamped progress strings, updated at every sub-step
// boundary, authoritative for "what happened" whether or not the run
// ultimately succeeds.
type RunLogger struct {
	runID     string
	logFile   *os.File
	mutex     sync.Mutex
	startTime time.Time
	entries   []string
	console   bool
}

var (
	currentLogger *RunLogger
	loggerMutex   sync.Mutex
)

// StartRunLogging initializes the transcript for a new generation run.
// Any previous run's logger is closed; its transcript is discarded.
func StartRunLogging(runID string, logDir string) (*RunLogger, error) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if currentLogger != nil {
		currentLogger.Close()
	}

	logger := &RunLogger{
		runID:     runID,
		startTime: time.Now(),
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		timestamp := time.Now().Format("20060102_150405")
		logPath := filepath.Join(logDir, fmt.Sprintf("run_%s_%s.log", runID, timestamp))
		logFile, err := os.Create(logPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		logger.logFile = logFile
	}

	currentLogger = logger
	logger.writeHeader()
	return logger, nil
}

// NewMemoryLogger returns a logger that keeps the transcript only in memory.
// Used by tests and by callers that manage their own output.
func NewMemoryLogger(runID string) *RunLogger {
	return &RunLogger{runID: runID, startTime: time.Now()}
}

// SetCurrentLogger installs logger as the active run logger, closing any
// previously active one. Used when a run falls back to an in-memory
// transcript after StartRunLogging fails.
func SetCurrentLogger(logger *RunLogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if currentLogger != nil && currentLogger != logger {
		currentLogger.Close()
	}
	currentLogger = logger
}

// GetCurrentLogger returns the active run logger, or nil when no run is live.
func GetCurrentLogger() *RunLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	return currentLogger
}

// SetConsole enables mirroring transcript lines to stdout.
func (r *RunLogger) SetConsole(enabled bool) {
	if r == nil {
		return
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.console = enabled
}

// RunID returns the run identifier this transcript belongs to.
func (r *RunLogger) RunID() string {
	if r == nil {
		return ""
	}
	return r.runID
}

// Log appends one timestamped line to the transcript.
func (r *RunLogger) Log(format string, args ...interface{}) {
	if r == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	elapsed := time.Since(r.startTime).Round(time.Millisecond)
	line := fmt.Sprintf("[%s] [+%v] %s", timestamp, elapsed, fmt.Sprintf(format, args...))

	r.entries = append(r.entries, line)
	if r.logFile != nil {
		r.logFile.WriteString(line + "\n")
		r.logFile.Sync()
	}
	if r.console {
		fmt.Println(line)
	}
}

// LogSection writes a visually separated section header.
func (r *RunLogger) LogSection(title string) {
	if r == nil {
		return
	}
	r.Log("================================================================")
	r.Log("= %s", title)
	r.Log("================================================================")
}

// LogError records an error with its context.
func (r *RunLogger) LogError(where string, err error) {
	if r == nil {
		return
	}
	r.Log("ERROR in %s: %v", where, err)
}

// LogRequest records an outgoing AI request.
func (r *RunLogger) LogRequest(label, model, prompt string) {
	if r == nil {
		return
	}
	r.Log("AI REQUEST [%s] model=%s prompt=%d chars", label, model, len(prompt))
}

// LogResponse records an AI response.
func (r *RunLogger) LogResponse(label, response string) {
	if r == nil {
		return
	}
	r.Log("AI RESPONSE [%s] %d chars", label, len(response))
}

// Entries returns a copy of the transcript accumulated so far.
func (r *RunLogger) Entries() []string {
	if r == nil {
		return nil
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Close finalizes the transcript file.
func (r *RunLogger) Close() {
	if r == nil {
		return
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.logFile != nil {
		timestamp := time.Now().Format("15:04:05.000")
		final := fmt.Sprintf("[%s] Run logging completed. Total duration: %v\n",
			timestamp, time.Since(r.startTime).Round(time.Millisecond))
		r.logFile.WriteString(final)
		r.logFile.Sync()
		r.logFile.Close()
		r.logFile = nil
	}
}

func (r *RunLogger) writeHeader() {
	if r.logFile == nil {
		return
	}
	header := fmt.Sprintf(`REPODOC GENERATION RUN LOG
Run ID: %s
Start Time: %s
Log Format: [HH:MM:SS.mmm] [+duration] message

`, r.runID, r.startTime.Format("2006-01-02 15:04:05"))
	r.logFile.WriteString(header)
	r.logFile.Sync()
}
