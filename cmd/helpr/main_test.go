package main

import (
	"reflect"
	"testing"

	"helpr/internal/cli"
)

func TestRewriteHelpAsClaim(t *testing.T) {
	t.Parallel()

	isCommand := commandLookup(cli.NewRootCmd())

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"helpr"},
			want: []string{"helpr"},
		},
		{
			name: "bare help",
			in:   []string{"helpr", "help"},
			want: []string{"helpr", "help"},
		},
		{
			name: "help with zid",
			in:   []string{"helpr", "help", "z1111111"},
			want: []string{"helpr", "claim", "z1111111"},
		},
		{
			name: "help with zid after value flags",
			in:   []string{"helpr", "--as", "tutor", "--zid", "t1", "help", "z1111111"},
			want: []string{"helpr", "--as", "tutor", "--zid", "t1", "claim", "z1111111"},
		},
		{
			name: "help with zid after equals flag",
			in:   []string{"helpr", "--server=http://127.0.0.1:9", "help", "z1"},
			want: []string{"helpr", "--server=http://127.0.0.1:9", "claim", "z1"},
		},
		{
			name: "help with zid after bool flag",
			in:   []string{"helpr", "--pretty", "help", "z1"},
			want: []string{"helpr", "--pretty", "claim", "z1"},
		},
		{
			name: "help for a command not rewritten",
			in:   []string{"helpr", "help", "queue"},
			want: []string{"helpr", "help", "queue"},
		},
		{
			name: "help for an alias not rewritten",
			in:   []string{"helpr", "help", "take"},
			want: []string{"helpr", "help", "take"},
		},
		{
			name: "other subcommand not rewritten",
			in:   []string{"helpr", "resolve", "help"},
			want: []string{"helpr", "resolve", "help"},
		},
		{
			name: "double dash stops rewriting",
			in:   []string{"helpr", "--", "help", "z1"},
			want: []string{"helpr", "--", "help", "z1"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteHelpAsClaim(tt.in, isCommand)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteHelpAsClaim(%v)=%v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
