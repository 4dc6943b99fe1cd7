package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pyrite-lang/pyrite"
)

const historyFile = ".pyrite_history"

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[34m" + s + "\x1b[0m" }

func main() {
	root := &cobra.Command{
		Use:   "pyrite",
		Short: "Explore the pyrite object runtime",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(replCmd(), inspectCmd(), dumpCmd(), versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the runtime version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pyrite", pyrite.Version)
		},
	}
}

func findType(name string) *pyrite.Type {
	for _, t := range pyrite.Builtins() {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <type>",
		Short: "Show a built-in type: bases, resolution order, attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := findType(args[0])
			if t == nil {
				return fmt.Errorf("unknown type '%s'", args[0])
			}
			fmt.Printf("name: %s\n", t.Name())
			if base := t.Base(); base != nil {
				fmt.Printf("base: %s\n", base.Name())
			}
			var mro []string
			for _, a := range t.MRO() {
				mro = append(mro, a.Name())
			}
			fmt.Printf("mro:  %s\n", strings.Join(mro, " -> "))
			fmt.Printf("flags: %s\n", flagNames(t))
			if doc := t.Doc(); doc != "" {
				fmt.Printf("doc:  %s\n", doc)
			}
			t.DictSnapshot().Range(func(name string, value any) bool {
				r, err := pyrite.Repr(value)
				if err != nil {
					r = "<unrepresentable>"
				}
				fmt.Printf("  %-20s %s\n", name, r)
				return true
			})
			return nil
		},
	}
}

func flagNames(t *pyrite.Type) string {
	var names []string
	if t.HasFlag(pyrite.Mutable) {
		names = append(names, "mutable")
	}
	if t.HasFlag(pyrite.BaseType) {
		names = append(names, "basetype")
	}
	if t.HasFlag(pyrite.IsDescr) {
		names = append(names, "descriptor")
	}
	if t.HasFlag(pyrite.IsDataDescr) {
		names = append(names, "data-descriptor")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

type typeDoc struct {
	Name       string   `yaml:"name"`
	Base       string   `yaml:"base,omitempty"`
	MRO        []string `yaml:"mro"`
	Flags      string   `yaml:"flags"`
	Doc        string   `yaml:"doc,omitempty"`
	Attributes []string `yaml:"attributes"`
}

func dumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump all built-in types",
		RunE: func(cmd *cobra.Command, args []string) error {
			var docs []typeDoc
			for _, t := range pyrite.Builtins() {
				d := typeDoc{
					Name:  t.Name(),
					Flags: flagNames(t),
					Doc:   t.Doc(),
				}
				if base := t.Base(); base != nil {
					d.Base = base.Name()
				}
				for _, a := range t.MRO() {
					d.MRO = append(d.MRO, a.Name())
				}
				d.Attributes = t.DictSnapshot().Keys()
				sort.Strings(d.Attributes)
				docs = append(docs, d)
			}
			switch format {
			case "yaml":
				out, err := yaml.Marshal(docs)
				if err != nil {
					return err
				}
				os.Stdout.Write(out)
			case "names":
				for _, d := range docs {
					fmt.Println(d.Name)
				}
			default:
				return fmt.Errorf("unknown format '%s'", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or names")
	return cmd
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive prompt over the object runtime",
		Run: func(cmd *cobra.Command, args []string) {
			runRepl()
		},
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func runRepl() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath()); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println(blue("pyrite " + pyrite.Version))
	fmt.Println("Type an expression, or :quit to leave.")

	e := newEnv()
	for {
		src, err := line.Prompt(green(">>> "))
		if err != nil {
			fmt.Println()
			return
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		line.AppendHistory(src)
		if src == ":quit" || src == ":q" {
			return
		}
		v, show, err := evalLine(e, src)
		if err != nil {
			fmt.Println(red(err.Error()))
			continue
		}
		if !show || v == pyrite.None {
			continue
		}
		r, err := pyrite.Repr(v)
		if err != nil {
			fmt.Println(red(err.Error()))
			continue
		}
		fmt.Println(r)
	}
}
