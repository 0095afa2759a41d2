package snake

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func PromptFlagString(cmd *cobra.Command, f *pflag.Flag) (bool, string) {
	return promptValue(cmd, f, func(input string) error {
		if len(input) == 0 && len(f.DefValue) == 0 {
			return errors.New("empty")
		}
		return nil
	})
}

func PromptFlagInt(cmd *cobra.Command, f *pflag.Flag) (bool, string) {
	return promptValue(cmd, f, func(input string) error {
		if input == "" {
			return nil
		}
		_, err := strconv.Atoi(input)
		return err
	})
}

func promptValue(cmd *cobra.Command, f *pflag.Flag, validate promptui.ValidateFunc) (bool, string) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s [%s] Default: %s\n", asFlags(f), f.Usage, f.Value.Type(), f.DefValue)

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf(`["%s"]`, f.DefValue),
		Templates: answerTemplates,
		Validate:  validate,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	result, err := prompt.Run()
	if err != nil {
		return false, ""
	}
	return ValueArg(f, result)
}

// ValueArg renders an answer for a valued flag. Blank keeps the default;
// a blank default with a blank answer gives nothing.
func ValueArg(f *pflag.Flag, answer string) (bool, string) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = f.DefValue
	}
	if answer == "" {
		return false, ""
	}
	return true, fmt.Sprintf(`--%s=%s`, f.Name, answer)
}
