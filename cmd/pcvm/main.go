// cmd/pcvm/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"pcvm/internal/catalog"
	"pcvm/internal/evaluator"
	"pcvm/internal/pcode"
	"pcvm/internal/replconsole"
	"pcvm/internal/tracesink"
	"pcvm/internal/typedesc"
)

const version = "1.0.0"

// commandAliases mirrors the short-form aliasing convention of the
// teacher CLI: a single letter resolves to the long command name
// before dispatch, so both spellings hit the same switch case.
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
	"d": "decompile",
	"s": "serve",
	"c": "check",
}

func main() {
	if err := pcode.CheckComplete(); err != nil {
		log.Fatalf("pcvm: function registry is incomplete: %v", err)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("pcvm", version)
	case "repl":
		if err := replconsole.New(os.Stdin, os.Stdout).Run(); err != nil {
			log.Fatalf("pcvm: repl: %v", err)
		}
	case "run":
		if err := runCommand(args[1:]); err != nil {
			log.Fatalf("pcvm: run: %v", err)
		}
	case "decompile":
		if err := decompileCommand(args[1:]); err != nil {
			log.Fatalf("pcvm: decompile: %v", err)
		}
	case "check":
		if err := checkCommand(args[1:]); err != nil {
			log.Fatalf("pcvm: check: %v", err)
		}
	case "serve":
		if err := serveCommand(args[1:]); err != nil {
			log.Fatalf("pcvm: serve: %v", err)
		}
	case "catalog":
		if err := catalogCommand(args[1:]); err != nil {
			log.Fatalf("pcvm: catalog: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "pcvm: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`pcvm - RPN expression runtime and progressive type creator

Usage:
  pcvm run <file> [types...]     compile and execute an RPN program
  pcvm decompile <file> [types...]
                                  print the decompiled form of a program
  pcvm check <file> [types...]   compile only, report errors, exit nonzero on failure
  pcvm repl                      start an interactive console
  pcvm serve <addr> [file] [types...]
                                  serve a Debug-mode trace sink over websocket at
                                  /trace; with a program file, GET /run executes
                                  it in Debug mode against every connected viewer
  pcvm catalog <driver> <dsn> <subcommand> [args...]
                                  save/load/list RPN programs in a SQL catalog

Aliases: r=run i=repl d=decompile c=check s=serve

types... for run/decompile/check/serve are NAME=TYPE pairs, e.g. A=int32 B=int32 C=int32,
binding each variable ExtractVariables discovers before Compile runs.`)
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseBindings turns a list of NAME=TYPE arguments into a map, the
// form run/check use to bind every discovered variable before Compile.
func parseBindings(args []string) (map[string]typedesc.TypeDescriptor, error) {
	bindings := make(map[string]typedesc.TypeDescriptor, len(args))
	for _, a := range args {
		name, kind, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("bad binding %q, want NAME=TYPE", a)
		}
		td, ok := typedesc.ParseTypeName(kind)
		if !ok {
			return nil, fmt.Errorf("unknown type %q in binding %q", kind, a)
		}
		bindings[name] = td
	}
	return bindings, nil
}

func compileFile(path string, bindingArgs []string) (*evaluator.RuntimeEvaluator, error) {
	source, err := readFile(path)
	if err != nil {
		return nil, err
	}
	bindings, err := parseBindings(bindingArgs)
	if err != nil {
		return nil, err
	}

	e := evaluator.New()
	if err := e.ExtractVariables(source); err != nil {
		return nil, err
	}
	for name, td := range bindings {
		if e.SetInputType(name, td) != nil {
			if err := e.SetOutputType(name, td); err != nil {
				return nil, fmt.Errorf("binding %s: %w", name, err)
			}
		}
	}
	if err := e.Compile(source); err != nil {
		return e, err
	}
	return e, nil
}

func runCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pcvm run <file> [NAME=TYPE...]")
	}
	e, err := compileFile(args[0], args[1:])
	if err != nil {
		return err
	}
	if err := e.Execute(evaluator.Fast, os.Stdout); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func decompileCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pcvm decompile <file> [NAME=TYPE...]")
	}
	e, err := compileFile(args[0], args[1:])
	if err != nil {
		return err
	}
	text, err := e.Decompile()
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func checkCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pcvm check <file> [NAME=TYPE...]")
	}
	_, err := compileFile(args[0], args[1:])
	if err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

// serveCommand mounts the trace sink for websocket viewers at /trace.
// Given a program file it also mounts /run, which (re-)compiles the
// program once and executes it in Debug mode against the sink on every
// request - the demo path that actually drives a client-visible trace,
// rather than leaving connected viewers with nothing to watch.
func serveCommand(args []string) error {
	addr := ":8089"
	if len(args) > 0 {
		addr = args[0]
	}
	sink := tracesink.NewSink()

	mux := http.NewServeMux()
	mux.Handle("/trace", sink)

	if len(args) > 1 {
		e, err := compileFile(args[1], args[2:])
		if err != nil {
			return err
		}
		mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
			if err := e.Execute(evaluator.Debug, sink); err != nil {
				fmt.Fprintln(w, "runtime error:", err)
				return
			}
			fmt.Fprintln(w, "ok")
		})
		fmt.Println("pcvm: serving debug trace sink on", addr,
			"(/trace for websocket viewers, GET /run to execute", args[1], "in Debug mode)")
	} else {
		fmt.Println("pcvm: serving debug trace sink on", addr,
			"(/trace for websocket viewers; pass a program file to also enable /run)")
	}

	return http.ListenAndServe(addr, mux)
}

func catalogCommand(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: pcvm catalog <driver> <dsn> save|load|list [args...]")
	}
	driver, dsn, sub := args[0], args[1], args[2]
	c, err := catalog.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.EnsureSchema(ctx); err != nil {
		return err
	}

	switch sub {
	case "save":
		if len(args) < 5 {
			return fmt.Errorf("usage: pcvm catalog ... save <name> <file>")
		}
		source, err := readFile(args[4])
		if err != nil {
			return err
		}
		return c.Save(ctx, args[3], source)
	case "load":
		if len(args) < 4 {
			return fmt.Errorf("usage: pcvm catalog ... load <name>")
		}
		source, err := c.Load(ctx, args[3])
		if err != nil {
			return err
		}
		fmt.Print(source)
		return nil
	case "list":
		names, err := c.List(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	default:
		return fmt.Errorf("unknown catalog subcommand %q", sub)
	}
}
