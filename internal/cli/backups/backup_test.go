package backups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/cli/clitest"
)

func TestCreateAndList(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{Label: "manual"}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created: hotset-") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 total") || !strings.Contains(out.String(), "manual") {
		t.Errorf("output = %q", out.String())
	}
}

func TestNoBackupsWithoutManager(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	ctx.Backups = nil
	if err := (&BackupCreateCmd{}).Run(ctx); err != errNoBackups {
		t.Errorf("error = %v, want %v", err, errNoBackups)
	}
}

func TestRestoreDeclined(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	if err := (&BackupCreateCmd{Label: "manual"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	list, _ := ctx.Backups.List()

	restore := cli.SetConfirm(func(string, string) (bool, error) { return false, nil })
	defer restore()
	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(list[0].Path)}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restore cancelled") {
		t.Errorf("output = %q", out.String())
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	name := "hotset-20260309-060000.db"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"absolute", filepath.Join(dir, name), filepath.Join(dir, name), false},
		{"in backup dir", name, filepath.Join(dir, name), false},
		{"missing absolute", filepath.Join(dir, "nope.db"), "", true},
		{"missing name", "nope.db", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve(tt.in, dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
