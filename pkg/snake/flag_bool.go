package snake

import (
	"fmt"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func asFlags(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("--%s, -%s", f.Name, f.Shorthand)
	}
	return fmt.Sprintf("--%s", f.Name)
}

var answerTemplates = &promptui.PromptTemplates{
	Prompt:  "Answer {{ . }} : ",
	Valid:   "Answer {{ . | green }} : ",
	Invalid: "Answer {{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

func PromptFlagBool(cmd *cobra.Command, f *pflag.Flag) (bool, string) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s [%s] Default: %s\n", asFlags(f), f.Usage, f.Value.Type(), f.DefValue)

	validInput := "true/false"
	if defTrue, err := ParseBool(f.DefValue); err == nil {
		if defTrue {
			validInput = "[true]/false"
		} else {
			validInput = "true/[false]"
		}
	}

	validate := func(input string) error {
		if input == "" {
			return nil
		}
		_, err := ParseBool(input)
		return err
	}

	prompt := promptui.Prompt{
		Label:     validInput,
		Templates: answerTemplates,
		Validate:  validate,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	result, err := prompt.Run()
	if err != nil {
		return false, ""
	}
	return BoolArg(f, result)
}

// BoolArg renders an answer for a bool flag. Blank keeps the default.
func BoolArg(f *pflag.Flag, answer string) (bool, string) {
	if answer == "" {
		answer = f.DefValue
	}
	r, err := ParseBool(answer)
	if err != nil {
		return false, ""
	}
	return true, fmt.Sprintf(`--%s=%t`, f.Name, r)
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "no", "NO", "No":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}
