package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapwindow/internal/config"
)

const pathFlagHelp = "Config file path (default: <user config dir>/snapwindow/config.yaml)"

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  snapwindow config init [--path PATH] [--force]")
	fmt.Fprintln(os.Stderr, "  snapwindow config validate [--path PATH]")
	fmt.Fprintln(os.Stderr, "  snapwindow config print [--path PATH] [--defaults]")
	fmt.Fprintln(os.Stderr, "  snapwindow config path")
	fmt.Fprintln(os.Stderr, "  snapwindow config explain [--path PATH] <yaml.path>")
}

func loadConfigAt(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return exitUsage
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", pathFlagHelp)
		force := fs.Bool("force", false, "Overwrite an existing file")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		target := *path
		if target == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return exitFailure
			}
			target = p
		}
		if _, err := os.Stat(target); err == nil && !*force {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", target)
			return exitFailure
		}
		if err := config.DefaultConfig().SaveTo(target); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
		fmt.Printf("config: wrote %s\n", target)
		return exitOK

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", pathFlagHelp)
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		if _, err := loadConfigAt(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
		fmt.Println("config: ok")
		return exitOK

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", pathFlagHelp)
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigAt(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return exitFailure
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
		fmt.Print(string(data))
		return exitOK

	case "path":
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
		fmt.Println(p)
		return exitOK

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", pathFlagHelp)
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return exitUsage
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigAt(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		printConfigUsage()
		return exitUsage
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
