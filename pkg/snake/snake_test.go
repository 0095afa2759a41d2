package snake

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

func TestParseBool(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    bool
		wantErr bool
	}{
		"yes":   {in: "yes", want: true},
		"Y":     {in: "Y", want: true},
		"true":  {in: "true", want: true},
		"no":    {in: "no"},
		"false": {in: "False"},
		"junk":  {in: "maybe", wantErr: true},
		"blank": {in: "", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseBool(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func testCommand() *cobra.Command {
	root := &cobra.Command{Use: "zdash"}
	reject := &cobra.Command{
		Use:         "reject",
		Short:       "reject a registration",
		Annotations: map[string]string{ArgsAnnotation: "Registration ID, "},
		Run:         func(*cobra.Command, []string) {},
	}
	reject.Flags().String("reason", "", "rejection reason")
	reject.Flags().Bool("json", false, "output as json")
	reject.Flags().Int("limit", 10, "how many")
	hidden := &cobra.Command{Use: "secret", Hidden: true, Run: func(*cobra.Command, []string) {}}
	help := &cobra.Command{Use: "help", Run: func(*cobra.Command, []string) {}}
	completion := &cobra.Command{Use: "completion", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(reject, hidden, help, completion)
	return root
}

func TestCandidatesSkipHiddenHelpAndCompletion(t *testing.T) {
	root := testCommand()
	var names []string
	for _, c := range Candidates(root) {
		names = append(names, c.Name())
	}
	if want := []string{"reject"}; !reflect.DeepEqual(names, want) {
		t.Errorf("candidates = %v, want %v", names, want)
	}
}

func TestArgLabels(t *testing.T) {
	root := testCommand()
	reject, _, err := root.Find([]string{"reject"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ArgLabels(reject), []string{"Registration ID"}; !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if got := ArgLabels(root); got != nil {
		t.Errorf("root labels = %v", got)
	}
}

func TestFlagArgs(t *testing.T) {
	reject, _, _ := testCommand().Find([]string{"reject"})
	flags := reject.Flags()

	tests := map[string]struct {
		got  func() (bool, string)
		ok   bool
		want string
	}{
		"string answer":  {got: func() (bool, string) { return ValueArg(flags.Lookup("reason"), " dup ") }, ok: true, want: "--reason=dup"},
		"string blank":   {got: func() (bool, string) { return ValueArg(flags.Lookup("reason"), "") }},
		"int default":    {got: func() (bool, string) { return ValueArg(flags.Lookup("limit"), "") }, ok: true, want: "--limit=10"},
		"bool yes":       {got: func() (bool, string) { return BoolArg(flags.Lookup("json"), "y") }, ok: true, want: "--json=true"},
		"bool default":   {got: func() (bool, string) { return BoolArg(flags.Lookup("json"), "") }, ok: true, want: "--json=false"},
		"bool malformed": {got: func() (bool, string) { return BoolArg(flags.Lookup("json"), "perhaps") }},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ok, arg := tc.got()
			if ok != tc.ok || arg != tc.want {
				t.Errorf("got (%v, %q), want (%v, %q)", ok, arg, tc.ok, tc.want)
			}
		})
	}
}
