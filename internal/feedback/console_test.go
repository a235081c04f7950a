package feedback

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestConsoleConfirmAnswers(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Yes\n", true},
		{"YES", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		c := NewConsole(strings.NewReader(tc.in), &out)
		if got := c.Confirm(ctx, "", "Do you really want to delete?", "Yes", "No"); got != tc.want {
			t.Fatalf("input %q: got %v want %v", tc.in, got, tc.want)
		}
		if !strings.Contains(out.String(), "Do you really want to delete? [Yes/No]: ") {
			t.Fatalf("prompt missing: %q", out.String())
		}
	}
}

func TestConsoleAssumeYesSkipsInput(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(nil, &out)
	c.AssumeYes = true
	if !c.Confirm(context.Background(), "", "Delete?", "Yes", "No") {
		t.Fatalf("AssumeYes must confirm")
	}
}

func TestConsoleProgressAndMessages(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	c := NewConsole(nil, &out)
	c.ShowProgress(ctx, "Saving...")
	if !c.busy() {
		t.Fatalf("expected busy after ShowProgress")
	}
	c.HideProgress(ctx)
	if c.busy() {
		t.Fatalf("expected idle after HideProgress")
	}
	c.Toast(ctx, "Folder updated")
	c.Alert(ctx, "An error has occurred.", "In use", "Ok")
	got := out.String()
	for _, want := range []string{"Saving...\n", "Folder updated\n", "An error has occurred.\nIn use\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q: %q", want, got)
		}
	}
}

func TestConsoleReadsSuccessivePrompts(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("n\ny\n"), &out)
	ctx := context.Background()
	if c.Confirm(ctx, "", "first", "Yes", "No") {
		t.Fatalf("first answer was no")
	}
	if !c.Confirm(ctx, "", "second", "Yes", "No") {
		t.Fatalf("second answer was yes")
	}
}
