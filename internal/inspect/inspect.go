// Package inspect provides an interactive read-back of emitted
// records: list catalog and body records under a log directory, show
// one by key, grep global ids.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/rbrinfo/rbrinfo/internal/record"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Session is one inspector run over a log directory
type Session struct {
	dir    string
	out    io.Writer
	keys   []string
	byKey  map[string]string // key -> file path
}

// NewSession indexes the record files under dir
func NewSession(dir string, out io.Writer) (*Session, error) {
	s := &Session{dir: dir, out: out, byKey: make(map[string]string)}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), ".json")
		s.keys = append(s.keys, key)
		s.byKey[key] = path
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(s.keys)
	return s, nil
}

// Run drives the interactive loop until quit or EOF
func (s *Session) Run() error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	line.SetCtrlCAborts(true)

	fmt.Fprintf(s.out, "%s %d records under %s\n", bold("rbrinfo inspect:"), len(s.keys), s.dir)
	fmt.Fprintln(s.out, "commands: list, show <key>, grep <substring>, help, quit")

	for {
		input, err := line.Prompt("inspect> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		cmd, arg, _ := strings.Cut(input, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "quit", "exit", ":q":
			return nil
		case "help":
			fmt.Fprintln(s.out, "  list              list every record key")
			fmt.Fprintln(s.out, "  show <key>        pretty-print one record")
			fmt.Fprintln(s.out, "  grep <substring>  match keys by substring")
			fmt.Fprintln(s.out, "  quit              leave")
		case "list":
			s.list(s.keys)
		case "grep":
			if arg == "" {
				fmt.Fprintf(s.out, "%s: grep needs a substring\n", red("error"))
				continue
			}
			var matched []string
			for _, k := range s.keys {
				if strings.Contains(k, arg) {
					matched = append(matched, k)
				}
			}
			s.list(matched)
		case "show":
			if err := s.show(arg); err != nil {
				fmt.Fprintf(s.out, "%s: %v\n", red("error"), err)
			}
		default:
			fmt.Fprintf(s.out, "%s: unknown command %q\n", red("error"), cmd)
		}
	}
}

func (s *Session) list(keys []string) {
	for _, k := range keys {
		tag := yellow("body")
		if strings.HasPrefix(k, "catalog/") {
			tag = cyan("catalog")
		}
		fmt.Fprintf(s.out, "  [%s] %s\n", tag, k)
	}
	if len(keys) == 0 {
		fmt.Fprintln(s.out, "  (none)")
	}
}

func (s *Session) show(key string) error {
	path, ok := s.byKey[key]
	if !ok {
		return fmt.Errorf("no record %q", key)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.HasPrefix(key, "catalog/") {
		var cat record.CatalogRecord
		if err := json.Unmarshal(data, &cat); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s %s (%d callables)\n", bold("crate"), cat.Name, len(cat.Callables))
		for _, c := range cat.Callables {
			fmt.Fprintf(s.out, "  %s %s\n", cyan(c.Kind()), c.String())
		}
		return nil
	}
	var pretty json.RawMessage = data
	indented, err := indent(pretty)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(indented))
	return nil
}

func indent(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
