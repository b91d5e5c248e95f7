// Command aheui is the reference driver: run, debug, history, serve, and
// stats subcommands over one core (the decoder and execution engine; run
// goes through internal/embed's Decode/Execute entry points), matching the reference toolchain's own alias-table-plus-manual
// os.Args dispatch rather than a flag-parsing framework.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"aheui/internal/cursor"
	"aheui/internal/debugger"
	"aheui/internal/embed"
	"aheui/internal/engine"
	"aheui/internal/history"
	"aheui/internal/liveserver"
	"aheui/internal/trace"
)

var commandAliases = map[string]string{
	"r": "run",
	"d": "debug",
	"h": "history",
	"s": "serve",
}

func main() {
	os.Exit(dispatch(os.Args[1:]))
}

// dispatch resolves the command alias table and runs the named
// subcommand, returning the process exit code rather than calling
// os.Exit directly so it can also be driven from a test harness.
func dispatch(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	rest := args[1:]

	switch cmd {
	case "help", "--help", "-h":
		usage()
		return 0
	case "run":
		return runCommand(rest)
	}

	var err error
	switch cmd {
	case "debug":
		err = debugCommand(rest)
	case "history":
		err = historyCommand(rest)
	case "serve":
		err = serveCommand(rest)
	case "stats":
		err = statsCommand(rest)
	default:
		usage()
		return 1
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "aheui: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Println(`aheui — an Aheui interpreter and toolchain

Usage:
  aheui run [-no-trace] <file>
  aheui debug <file>
  aheui history <dsn> [-fingerprint=X] [-exit=N]
  aheui serve [-addr :8080]
  aheui stats <file>`)
}

func runCommand(args []string) int {
	noTrace := false
	var path string
	for _, a := range args {
		if a == "-no-trace" {
			noTrace = true
			continue
		}
		path = a
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "aheui: run: missing source file")
		return 1
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aheui: run: %v\n", err)
		return 1
	}
	g := embed.Decode(string(source))

	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "(reading input from this terminal — press ctrl-D when done)")
	}
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aheui: run: %v\n", err)
		return 1
	}

	mode := embed.UseTrace
	if noTrace {
		mode = embed.InterpretOnly
	}

	started := time.Now()
	result, err := embed.Execute(g, embed.StringInput(string(input)), embed.Output{Sink: os.Stdout, Capture: true}, mode)
	duration := time.Since(started)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aheui: run: %v\n", err)
		return 1
	}

	if dsn := os.Getenv("AHEUI_HISTORY_DSN"); dsn != "" {
		recordHistory(dsn, string(source), string(input), result, duration, mode)
	}

	return int(result.ExitCode)
}

func recordHistory(dsn, source, input string, result embed.Result, duration time.Duration, mode embed.Precompile) {
	store, err := history.Open(dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aheui: could not record history: %v\n", err)
		return
	}
	defer store.Close()

	engineName := "interpreter"
	if mode == embed.UseTrace {
		engineName = "precompiler"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.Record(ctx, source, input, result.Captured, result.ExitCode, duration, engineName); err != nil {
		fmt.Fprintf(os.Stderr, "aheui: could not record history: %v\n", err)
	}
}

func debugCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("debug: missing source file")
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	g := embed.Decode(string(source))
	env := engine.NewEnv(g, os.Stdin, os.Stdout)
	d := debugger.New(env, engine.Interpreter{})

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("aheui debugger — step, continue, break ROW COL, inspect, quit")
	for {
		fmt.Print("(aheui-dbg) ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "step":
			halted, err := d.Step()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if halted {
				fmt.Println("halted, exit code", d.ExitCode())
				return nil
			}
		case "continue":
			halted, err := d.Continue()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if halted {
				fmt.Println("halted, exit code", d.ExitCode())
				return nil
			}
			fmt.Println("paused at breakpoint")
		case "break":
			if len(fields) != 3 {
				fmt.Println("usage: break ROW COL")
				continue
			}
			row, _ := strconv.Atoi(fields[1])
			col, _ := strconv.Atoi(fields[2])
			id := d.AddBreakpoint(cursor.Address{Row: int32(row), Col: int32(col)})
			fmt.Println("breakpoint", id, "set")
		case "inspect":
			fmt.Println(d.Inspect())
		case "quit":
			return nil
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func historyCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("history: missing database DSN")
	}
	dsn := args[0]
	store, err := history.Open(dsn)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer store.Close()

	var filter history.Filter
	for i := 1; i < len(args); i++ {
		switch {
		case strings.HasPrefix(args[i], "-fingerprint="):
			filter.Fingerprint = strings.TrimPrefix(args[i], "-fingerprint=")
		case strings.HasPrefix(args[i], "-exit="):
			code, err := strconv.Atoi(strings.TrimPrefix(args[i], "-exit="))
			if err != nil {
				return fmt.Errorf("history: bad -exit value: %w", err)
			}
			c := int32(code)
			filter.ExitCode = &c
		}
	}

	runs, err := store.List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for _, r := range runs {
		fmt.Printf("#%d  %s  exit=%d  engine=%-11s  stdout=%s  %s\n",
			r.ID, r.Fingerprint[:12], r.ExitCode, r.Engine,
			humanize.Bytes(uint64(len(r.Stdout))), humanize.Time(r.CreatedAt))
	}
	return nil
}

func serveCommand(args []string) error {
	addr := ":8080"
	for i := 0; i < len(args); i++ {
		if args[i] == "-addr" && i+1 < len(args) {
			addr = args[i+1]
		}
	}
	srv := liveserver.NewServer(30 * time.Second)
	fmt.Println("aheui live server listening on", addr)
	return http.ListenAndServe(addr, srv)
}

func statsCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("stats: missing source file")
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	g := embed.Decode(string(source))

	pre := trace.New(g)
	traced := trace.NewTraced(pre)
	env := engine.NewEnv(g, strings.NewReader(""), discard{})
	if _, err := engine.Run(env, traced); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	total := traced.FusedSteps + traced.FallbackSteps
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(traced.FusedSteps) / float64(total)
	}
	fmt.Printf("steps: %s total, %s fused (%.1f%%), %s interpreted\n",
		humanize.Comma(total), humanize.Comma(traced.FusedSteps), pct,
		humanize.Comma(traced.FallbackSteps))
	return nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
