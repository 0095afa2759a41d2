// Package snake walks a cobra command tree interactively: pick a command,
// answer its arguments and flags, and get back the argv to run.
package snake

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ArgsAnnotation on a command lists its positional arguments, comma
// separated, so they can be asked for by name.
const ArgsAnnotation = "snake.args"

// PromptNext asks for one of cmd's subcommands, descending until a runnable
// command is chosen, then asks for its arguments and flags. The result is
// the argv below the root, e.g. ["reject", "42", "--reason=dup"].
func PromptNext(cmd *cobra.Command) ([]string, error) {
	subcommands := Candidates(cmd)
	if len(subcommands) == 0 {
		return nil, fmt.Errorf("%s has no commands to choose from", cmd.Name())
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Name | bold }} {{ .Short | green }}",
		Inactive: "   {{ .Name }} {{ .Short | cyan }}",
		Selected: "{{ .Name | bold }}",
		Details: `
--------- Details ----------
{{ .Long }}
`,
	}

	searcher := func(input string, index int) bool {
		c := subcommands[index]
		name := normalize(c.Name() + c.Short)
		return strings.Contains(name, normalize(input))
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Commands",
		Items:     subcommands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	i, _, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	next := subcommands[i]
	argv := []string{next.Name()}

	if next.HasAvailableSubCommands() && !next.Runnable() {
		rest, err := PromptNext(next)
		if err != nil {
			return nil, err
		}
		return append(argv, rest...), nil
	}

	for _, label := range ArgLabels(next) {
		v, err := promptArg(next, label)
		if err != nil {
			return nil, err
		}
		argv = append(argv, v)
	}

	flags, err := PromptFlags(next)
	if err != nil {
		return nil, err
	}
	return append(argv, flags...), nil
}

// Candidates are the subcommands worth offering.
func Candidates(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ArgLabels reads ArgsAnnotation.
func ArgLabels(cmd *cobra.Command) []string {
	raw := strings.TrimSpace(cmd.Annotations[ArgsAnnotation])
	if raw == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(raw, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func promptArg(cmd *cobra.Command, label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s required", label)
			}
			return nil
		},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: NopCloser(cmd.OutOrStdout()),
	}
	v, err := prompt.Run()
	return strings.TrimSpace(v), err
}

// PromptFlags offers cmd's local flags until Continue is chosen and returns
// the answered ones as --name=value arguments.
func PromptFlags(cmd *cobra.Command) ([]string, error) {
	var fs []*pflag.Flag
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" || f.Name == "interactive" {
			return
		}
		fs = append(fs, f)
	})
	if len(fs) == 0 {
		return nil, nil
	}

	fs = append(fs, &pflag.Flag{
		Name:   "Continue...",
		Hidden: true,
		Value:  &continueType{},
	})

	templates := &promptui.SelectTemplates{
		Label:    "{{ . | magenta }} flags?",
		Active:   "➜ {{ if eq .Value.Type \"continue\" }}{{ .Name | bold | green }}{{ else }}{{ .Name | bold }} {{ .Usage | green | cyan }}{{ end }}",
		Inactive: "  {{ if eq .Value.Type \"continue\" }}{{ .Name | faint | green }}{{ else }}{{ .Name }} {{ .Usage | cyan }}{{ end }}",
		Selected: "{{ if eq .Value.Type \"continue\" }}{{ .Name | bold | green }}{{ else }}{{ .Name | bold }}{{ end }}",
		Details: `
--------- Details ----------
default: {{ .DefValue }}
type: {{ .Value.Type }}
`,
	}

	searcher := func(input string, index int) bool {
		return strings.Contains(normalize(fs[index].Name), normalize(input))
	}

	var (
		args  []string
		index int
	)
	answered := map[string]int{}
	for {
		prompt := promptui.Select{
			HideHelp:  true,
			Label:     cmd.Name(),
			Items:     fs,
			Templates: templates,
			Size:      10,
			CursorPos: index,
			Searcher:  searcher,
			Stdin:     io.NopCloser(cmd.InOrStdin()),
			Stdout:    NopCloser(cmd.OutOrStdout()),
		}
		i, _, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		index = i
		f := fs[i]

		var (
			ok   bool
			more string
		)
		switch t := f.Value.Type(); t {
		case "continue":
			return args, nil
		case "bool":
			ok, more = PromptFlagBool(cmd, f)
		case "int":
			ok, more = PromptFlagInt(cmd, f)
		case "string", "duration":
			ok, more = PromptFlagString(cmd, f)
		default:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%q flag type not yet supported\n", t)
		}
		if !ok || more == "" {
			continue
		}
		// Answering a flag twice replaces the first answer.
		if at, seen := answered[f.Name]; seen {
			args[at] = more
			continue
		}
		answered[f.Name] = len(args)
		args = append(args, more)
	}
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

type continueType struct{}

func (*continueType) String() string {
	return "continue"
}

func (*continueType) Set(string) error {
	return nil
}

func (*continueType) Type() string {
	return "continue"
}

// NopCloser adapts a writer for promptui.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
