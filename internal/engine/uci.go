package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lgbarn/pgn-extract-go/internal/config"
	"github.com/lgbarn/pgn-extract-go/internal/errors"
)

// Evaluation is the engine's judgement of a single position: a score (in
// centipawns, from the side-to-move's perspective) or a forced mate, plus
// the depth reached and the move it recommends.
type Evaluation struct {
	Score    int
	IsMate   bool
	MateIn   int
	Depth    int
	BestMove string
	PV       []string
}

// FormatEvaluation renders an evaluation the way it appears in an
// annotation comment: a signed pawn score to two decimals, or "+M<n>" /
// "-M<n>" for a forced mate.
func FormatEvaluation(eval *Evaluation) string {
	if eval.IsMate {
		sign := "+"
		n := eval.MateIn
		if n < 0 {
			sign = "-"
			n = -n
		}
		return fmt.Sprintf("%sM%d", sign, n)
	}

	sign := "+"
	score := eval.Score
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

// OptionType is a UCI option's declared kind.
type OptionType int

const (
	OptionUnknown OptionType = iota
	OptionCheck
	OptionSpin
	OptionCombo
	OptionButton
	OptionString
)

func parseOptionType(s string) OptionType {
	switch s {
	case "check":
		return OptionCheck
	case "spin":
		return OptionSpin
	case "combo":
		return OptionCombo
	case "button":
		return OptionButton
	case "string":
		return OptionString
	default:
		return OptionUnknown
	}
}

// OptionDescriptor is one entry from the engine's advertised option set,
// collected during the handshake.
type OptionDescriptor struct {
	Name    string
	Type    OptionType
	Default string
	Min     int
	Max     int
	Vars    []string
}

// parseOptionLine parses a UCI "option ..." line. Keywords (name, type,
// default, min, max, var) delimit values; a value runs up to the next
// recognized keyword, so multi-word names and defaults survive intact.
func parseOptionLine(line string) (OptionDescriptor, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "option" {
		return OptionDescriptor{}, false
	}
	fields = fields[1:]

	isKeyword := func(s string) bool {
		switch s {
		case "name", "type", "default", "min", "max", "var":
			return true
		default:
			return false
		}
	}

	var desc OptionDescriptor
	var vars []string
	for i := 0; i < len(fields); {
		key := fields[i]
		i++
		start := i
		for i < len(fields) && !isKeyword(fields[i]) {
			i++
		}
		value := strings.Join(fields[start:i], " ")

		switch key {
		case "name":
			desc.Name = value
		case "type":
			desc.Type = parseOptionType(value)
		case "default":
			desc.Default = value
		case "min":
			desc.Min, _ = strconv.Atoi(value)
		case "max":
			desc.Max, _ = strconv.Atoi(value)
		case "var":
			vars = append(vars, value)
		}
	}
	desc.Vars = vars
	return desc, desc.Name != ""
}

// clampSpin clamps v into [min, max]. If min == max == 0 (no bounds seen)
// the value passes through unchanged.
func clampSpin(v, min, max int) int {
	if min == 0 && max == 0 {
		return v
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// engineState is the driver's position in the lifecycle state machine
// described alongside this file: spawning, handshaking, configuring,
// ready, thinking, quitting, terminated.
type engineState int

const (
	stateSpawning engineState = iota
	stateHandshaking
	stateConfiguring
	stateReady
	stateThinking
	stateQuitting
	stateTerminated
)

func (s engineState) String() string {
	switch s {
	case stateSpawning:
		return "spawning"
	case stateHandshaking:
		return "handshaking"
	case stateConfiguring:
		return "configuring"
	case stateReady:
		return "ready"
	case stateThinking:
		return "thinking"
	case stateQuitting:
		return "quitting"
	default:
		return "terminated"
	}
}

// UCIEngine drives one external UCI-speaking engine subprocess. Analysis
// is strictly sequential: a single UCIEngine is never shared across
// concurrent goroutines.
type UCIEngine struct {
	path string
	args []string

	depth      int
	movetimeMs int

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	options map[string]OptionDescriptor
	name    string
	state   engineState

	log zerolog.Logger
}

// NewUCIEngine builds a driver from configuration but does not spawn the
// process; call Start to do that.
func NewUCIEngine(cfg *config.Config, log zerolog.Logger) *UCIEngine {
	e := &UCIEngine{
		path: cfg.Engine,
		args: cfg.EngineArgs,
		log:  log,
	}
	switch cfg.TimeControl {
	case config.ByDepth:
		e.depth = cfg.Depth
	default:
		e.movetimeMs = cfg.Seconds * 1000
	}
	return e
}

// Start spawns the engine subprocess and begins the background line
// reader. It does not perform the handshake; call Handshake next.
func (e *UCIEngine) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, e.path, e.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("engine stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("engine stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return &errors.EngineError{Err: errors.ErrEngineFatal, Engine: e.path, Phase: "spawning"}
	}

	e.cmd = cmd
	e.stdin = stdin
	e.lines = make(chan string, 64)
	e.state = stateSpawning

	go e.readLoop(stdout)

	return nil
}

func (e *UCIEngine) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		e.lines <- scanner.Text()
	}
	close(e.lines)
}

// isAlive polls the child's liveness with a non-blocking signal rather
// than installing a SIGCHLD handler.
func (e *UCIEngine) isAlive() bool {
	if e.cmd == nil || e.cmd.Process == nil {
		return false
	}
	return e.cmd.Process.Signal(syscall.Signal(0)) == nil
}

func (e *UCIEngine) reapError(phase string) *errors.EngineError {
	ee := &errors.EngineError{Err: errors.ErrEngineFatal, Engine: e.path, Phase: phase}
	if e.cmd != nil && e.cmd.ProcessState != nil {
		if ws, ok := e.cmd.ProcessState.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				ee.Signal = ws.Signal().String()
			} else {
				ee.ExitCode = ws.ExitStatus()
			}
		}
	}
	return ee
}

func (e *UCIEngine) send(cmd string) error {
	e.log.Info().Str("engine", e.path).Str("command", cmd).Msg("uci send")
	if !e.isAlive() {
		return e.reapError(e.state.String())
	}
	_, err := io.WriteString(e.stdin, cmd+"\n")
	return err
}

// readLine returns the next engine line, or a fatal EngineError if the
// deadline passes (deadline.IsZero() means wait forever, used only for the
// unbounded "go" search) or the child dies. Liveness is polled on a short
// tick alongside the blocking read.
func (e *UCIEngine) readLine(deadline time.Time) (string, error) {
	var timeoutC <-chan time.Time
	if !deadline.IsZero() {
		timeoutC = time.After(time.Until(deadline))
	}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-e.lines:
			if !ok {
				return "", e.reapError(e.state.String())
			}
			return line, nil
		case <-timeoutC:
			return "", &errors.EngineError{Err: errors.ErrEngineFatal, Engine: e.path, Phase: e.state.String()}
		case <-ticker.C:
			if !e.isAlive() {
				return "", e.reapError(e.state.String())
			}
		}
	}
}

// Handshake sends "uci" and collects the engine's identity and option
// descriptors until "uciok", failing fatally after 10 seconds.
func (e *UCIEngine) Handshake() error {
	e.state = stateHandshaking
	if err := e.send("uci"); err != nil {
		return err
	}

	e.options = make(map[string]OptionDescriptor)
	deadline := time.Now().Add(10 * time.Second)

	for {
		line, err := e.readLine(deadline)
		if err != nil {
			return err
		}
		switch {
		case line == "uciok":
			e.state = stateReady
			return nil
		case strings.HasPrefix(line, "id name "):
			e.name = strings.TrimPrefix(line, "id name ")
		case strings.HasPrefix(line, "option "):
			if desc, ok := parseOptionLine(line); ok {
				e.options[desc.Name] = desc
			}
		}
	}
}

// Configure sends the user-requested options plus a synthesized Hash
// option for cfg.MemoryMB (if the engine advertises a Hash spin), then
// waits for readyok.
func (e *UCIEngine) Configure(cfg *config.Config) error {
	e.state = stateConfiguring

	opts := make([]config.EngineOption, len(cfg.Options))
	copy(opts, cfg.Options)

	if cfg.MemoryMB > 0 {
		if desc, ok := e.options["Hash"]; ok && desc.Type == OptionSpin {
			opts = append(opts, config.EngineOption{Name: "Hash", Value: strconv.Itoa(cfg.MemoryMB)})
		} else {
			err := fmt.Errorf("engine does not advertise a Hash spin option, memory setting ignored: %w", errors.ErrEngineRecoverable)
			e.log.Error().Err(err).Str("engine", e.path).Msg("recoverable engine option error")
		}
	}

	for _, opt := range opts {
		if err := e.setOption(opt); err != nil {
			e.log.Error().Err(err).Str("option", opt.Name).Msg("recoverable engine option error")
		}
	}

	if err := e.send("isready"); err != nil {
		return err
	}
	deadline := time.Now().Add(10 * time.Second)
	for {
		line, err := e.readLine(deadline)
		if err != nil {
			return err
		}
		if line == "readyok" {
			e.state = stateReady
			return nil
		}
	}
}

// spinClampWarning returns a recoverable error describing n having been
// clamped into [min,max], or nil if n was already in range.
func spinClampWarning(name string, n, min, max, clamped int) error {
	if clamped == n {
		return nil
	}
	return fmt.Errorf("option %q value %d out of range [%d,%d], clamped to %d: %w", name, n, min, max, clamped, errors.ErrEngineRecoverable)
}

func (e *UCIEngine) setOption(opt config.EngineOption) error {
	desc, ok := e.options[opt.Name]
	if !ok {
		return fmt.Errorf("unknown option %q: %w", opt.Name, errors.ErrEngineRecoverable)
	}

	value := opt.Value
	var clampWarning error
	switch desc.Type {
	case OptionButton:
		return e.send(fmt.Sprintf("setoption name %s", desc.Name))
	case OptionCheck:
		if value != "true" && value != "false" {
			return fmt.Errorf("option %q expects true/false, got %q: %w", desc.Name, value, errors.ErrEngineRecoverable)
		}
	case OptionSpin:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %q expects an integer, got %q: %w", desc.Name, value, errors.ErrEngineRecoverable)
		}
		clamped := clampSpin(n, desc.Min, desc.Max)
		clampWarning = spinClampWarning(desc.Name, n, desc.Min, desc.Max, clamped)
		value = strconv.Itoa(clamped)
	case OptionCombo:
		if !containsString(desc.Vars, value) {
			return fmt.Errorf("option %q does not allow value %q: %w", desc.Name, value, errors.ErrEngineRecoverable)
		}
	case OptionString:
		// pass-through
	}

	if err := e.send(fmt.Sprintf("setoption name %s value %s", desc.Name, value)); err != nil {
		return err
	}
	return clampWarning
}

// Evaluate drives one analysis cycle for the position at fen and returns
// the resulting evaluation. It is fatal for the input stream to end
// before a bestmove line arrives.
func (e *UCIEngine) Evaluate(fen string) (*Evaluation, error) {
	e.state = stateThinking

	if err := e.send("position fen " + fen); err != nil {
		return nil, err
	}

	var goCmd string
	if e.movetimeMs > 0 {
		goCmd = fmt.Sprintf("go movetime %d", e.movetimeMs)
	} else {
		goCmd = fmt.Sprintf("go depth %d", e.depth)
	}
	if err := e.send(goCmd); err != nil {
		return nil, err
	}

	eval := &Evaluation{}
	for {
		line, err := e.readLine(time.Time{})
		if err != nil {
			return nil, err
		}

		switch {
		case strings.HasPrefix(line, "info"):
			if strings.Contains(line, " lowerbound") || strings.Contains(line, " upperbound") {
				continue
			}
			e.parseInfo(line, eval)
		case strings.HasPrefix(line, "bestmove"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if len(eval.PV) > 0 {
					eval.BestMove = eval.PV[0]
				} else {
					eval.BestMove = fields[1]
				}
			}
			e.state = stateReady
			return eval, nil
		}
	}
}

// parseInfo walks the keyword stream of a single "info" line, updating
// only the fields the line mentions. A mate score, once seen, permanently
// masks later centipawn scores on the same eval (a search that has found
// a forced mate never regresses to a plain cp figure).
func (e *UCIEngine) parseInfo(line string, eval *Evaluation) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return
	}

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					eval.Depth = v
				}
				i++
			}
		case "score":
			if i+2 < len(fields) {
				kind := fields[i+1]
				if v, err := strconv.Atoi(fields[i+2]); err == nil {
					switch kind {
					case "cp":
						if !eval.IsMate {
							eval.Score = v
						}
					case "mate":
						eval.IsMate = true
						eval.MateIn = v
					}
				}
				i += 2
			}
		case "pv":
			if i+1 < len(fields) {
				eval.PV = append([]string(nil), fields[i+1:]...)
			}
			i = len(fields)
		case "string":
			i = len(fields)
		}
	}
}

// Close sends quit and escalates through SIGTERM, SIGQUIT, and SIGKILL
// (two seconds apart) if the engine does not exit on its own.
func (e *UCIEngine) Close() error {
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	e.state = stateQuitting

	_ = e.send("quit")
	if e.waitExit(2 * time.Second) {
		e.state = stateTerminated
		return nil
	}

	for _, sig := range []syscall.Signal{syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGKILL} {
		_ = e.cmd.Process.Signal(sig)
		if e.waitExit(2 * time.Second) {
			e.state = stateTerminated
			return nil
		}
	}

	e.log.Error().Str("engine", e.path).Msg("engine did not exit after SIGKILL")
	return &errors.EngineError{Err: errors.ErrEngineFatal, Engine: e.path, Phase: "quitting"}
}

func (e *UCIEngine) waitExit(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if !e.isAlive() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return !e.isAlive()
}

// Name returns the engine's advertised "id name", if the handshake ran.
func (e *UCIEngine) Name() string {
	return e.name
}
