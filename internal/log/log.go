package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type OperationType string

const (
	OpRename    OperationType = "rename"
	OpCreateDir OperationType = "create_dir"
	OpSkip      OperationType = "skip"
)

type OperationLog struct {
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path,omitempty"`
	DestPath   string        `json:"dest_path,omitempty"`
	DryRun     bool          `json:"dry_run,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

// Line markers printed in front of every diagnostic line.
const (
	markerInfo    = "???"
	markerChange  = "+++"
	markerNoop    = "---"
	markerWarn    = "!!!"
	markerSection = "==="
)

// Output serializes whole lines written by concurrently running journals.
type Output struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[string]lipgloss.Style
}

// NewOutput wraps w. Marker colors are only emitted when w is a terminal
// that supports them.
func NewOutput(w io.Writer) *Output {
	if w == nil {
		w = io.Discard
	}
	r := lipgloss.NewRenderer(w)
	return &Output{
		w: w,
		styles: map[string]lipgloss.Style{
			markerInfo:    r.NewStyle().Foreground(lipgloss.Color("#9ba8c0")),
			markerChange:  r.NewStyle().Foreground(lipgloss.Color("#5dc796")).Bold(true),
			markerNoop:    r.NewStyle().Foreground(lipgloss.Color("#5a8c6a")),
			markerWarn:    r.NewStyle().Foreground(lipgloss.Color("#f04c56")).Bold(true),
			markerSection: r.NewStyle().Foreground(lipgloss.Color("#8fc279")).Bold(true),
		},
	}
}

// Discard returns an Output that drops everything.
func Discard() *Output {
	return NewOutput(io.Discard)
}

func (o *Output) render(marker, text string) string {
	if style, ok := o.styles[marker]; ok {
		marker = style.Render(marker)
	}
	return marker + " " + text
}

func (o *Output) write(lines []string) {
	if len(lines) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, line := range lines {
		fmt.Fprintln(o.w, line)
	}
}

// Section prints a standalone "===" line, used for batch headers and footers.
func (o *Output) Section(format string, args ...any) {
	o.write([]string{o.render(markerSection, fmt.Sprintf(format, args...)+" "+markerSection)})
}

// Printf prints an unmarked line.
func (o *Output) Printf(format string, args ...any) {
	o.write([]string{strings.TrimRight(fmt.Sprintf(format, args...), "\n")})
}

// Journal collects the diagnostic lines and operations of a single library
// item. Lines are buffered until Flush so items processed in parallel never
// interleave.
type Journal struct {
	out  *Output
	item string

	mu    sync.Mutex
	lines []string
	ops   []OperationLog
}

// Journal starts a journal for the item at path.
func (o *Output) Journal(path string) *Journal {
	return &Journal{out: o, item: path}
}

// NewJournal is a shortcut for a journal that discards its lines.
func NewJournal() *Journal {
	return Discard().Journal("")
}

func (j *Journal) add(marker, format string, args ...any) {
	if j == nil {
		return
	}
	line := j.out.render(marker, fmt.Sprintf(format, args...))
	j.mu.Lock()
	j.lines = append(j.lines, line)
	j.mu.Unlock()
}

// Item returns the path the journal was opened for.
func (j *Journal) Item() string {
	if j == nil {
		return ""
	}
	return j.item
}

// Infof reports an observation that needs no action.
func (j *Journal) Infof(format string, args ...any) { j.add(markerInfo, format, args...) }

// Notef reports a no-op decision.
func (j *Journal) Notef(format string, args ...any) { j.add(markerNoop, format, args...) }

// Warnf reports a problem that needs manual attention.
func (j *Journal) Warnf(format string, args ...any) { j.add(markerWarn, format, args...) }

// Rename reports a planned or applied move.
func (j *Journal) Rename(from, to string) {
	j.add(markerChange, "<%s> ==> <%s>", from, to)
}

// MakeDir reports a planned or applied directory creation.
func (j *Journal) MakeDir(path string) {
	j.add(markerChange, "mkdir <%s>", path)
}

// LogRename records a rename operation.
func (j *Journal) LogRename(sourcePath, destPath string, dryRun bool, err error) {
	j.LogOperation(OpRename, sourcePath, destPath, dryRun, err)
}

// LogCreateDir records a directory creation.
func (j *Journal) LogCreateDir(dirPath string, dryRun bool, err error) {
	j.LogOperation(OpCreateDir, "", dirPath, dryRun, err)
}

// LogSkip records an item that was left untouched on purpose. A skip is not
// a failure; reason only explains it.
func (j *Journal) LogSkip(path string, reason error) {
	op := OperationLog{
		Timestamp:  time.Now(),
		Type:       OpSkip,
		SourcePath: path,
		Success:    true,
	}
	if reason != nil {
		op.Reason = reason.Error()
	}
	j.record(op)
}

// LogOperation appends an operation record.
func (j *Journal) LogOperation(opType OperationType, sourcePath, destPath string, dryRun bool, err error) {
	if j == nil {
		return
	}
	op := OperationLog{
		Timestamp:  time.Now(),
		Type:       opType,
		SourcePath: sourcePath,
		DestPath:   destPath,
		DryRun:     dryRun,
		Success:    err == nil,
	}
	if err != nil {
		op.Error = err.Error()
	}
	j.record(op)
}

func (j *Journal) record(op OperationLog) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.ops = append(j.ops, op)
	j.mu.Unlock()
}

// Operations returns a copy of the recorded operations.
func (j *Journal) Operations() []OperationLog {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]OperationLog(nil), j.ops...)
}

// Lines returns a copy of the buffered lines.
func (j *Journal) Lines() []string {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.lines...)
}

// Flush writes the buffered lines to the output and clears the buffer.
func (j *Journal) Flush() {
	if j == nil {
		return
	}
	j.mu.Lock()
	lines := j.lines
	j.lines = nil
	j.mu.Unlock()
	j.out.write(lines)
}
