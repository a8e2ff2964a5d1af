package subcommands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/testutil"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	showOutput = ""
	createTitle, createDescription, createReference, createTags = "", "", "", nil
	updateTitle, updateDescription, updateReference, updateTags = "", "", "", nil
	cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
}

func TestCreateShowUpdate(t *testing.T) {
	_, remote := testutil.NewRemoteEnv(t, 5)

	resetFlags(CreateCmd)
	out, err := run(t, CreateCmd, "alice/mnist", "--title", "MNIST", "--tag", "images", "--tag", "digits")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out, "Created dataset alice/mnist") {
		t.Errorf("create output = %q", out)
	}

	resetFlags(ShowCmd)
	out, err = run(t, ShowCmd, "alice/mnist", "-o", "json")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var rec api.DatasetRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("show output is not JSON: %v\n%s", err, out)
	}
	if rec.Title != "MNIST" || len(rec.Tags) != 2 {
		t.Errorf("unexpected record %+v", rec)
	}

	resetFlags(UpdateCmd)
	if _, err := run(t, UpdateCmd, "alice/mnist", "--description", "handwritten digits"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := remote.Store.GetDataset(context.Background(), "alice/mnist")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "handwritten digits" || got.Title != "MNIST" {
		t.Errorf("update should change only the description, got %+v", got)
	}
}

func TestShow_Summary(t *testing.T) {
	_, remote := testutil.NewRemoteEnv(t, 5)
	remote.CreateDataset(t, "alice/cifar", "CIFAR-10")

	resetFlags(ShowCmd)
	out, err := run(t, ShowCmd, "alice/cifar")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"alice/cifar", "CIFAR-10", "Elements"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestShow_Missing(t *testing.T) {
	testutil.NewRemoteEnv(t, 5)

	resetFlags(ShowCmd)
	_, err := run(t, ShowCmd, "nobody/nothing")
	if !api.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestUpdate_NothingToDo(t *testing.T) {
	testutil.NewRemoteEnv(t, 5)

	resetFlags(UpdateCmd)
	if _, err := run(t, UpdateCmd, "alice/mnist"); err == nil {
		t.Error("update without fields should fail")
	}
}
