package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), mode); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func rawNames(raw []domain.RawCandidate) []string {
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

func TestParseStartApps(t *testing.T) {
	output := "\"Name\",\"AppID\"\r\n" +
		"\"计算器\",\"Microsoft.WindowsCalculator_8wekyb3d8bbwe!App\"\r\n" +
		"\"Broken\",\"\"\r\n" +
		"\"Notepad\",\"{1AC14E77}\\notepad.exe\"\r\n"

	got := parseStartApps(output)

	if len(got) != 2 {
		t.Fatalf("parseStartApps() returned %d entries, want 2", len(got))
	}
	if got[0].Name != "计算器" || got[0].Path != `shell:AppsFolder\Microsoft.WindowsCalculator_8wekyb3d8bbwe!App` {
		t.Errorf("parseStartApps()[0] = %+v", got[0])
	}
	if got[0].Metadata["appid"] != "Microsoft.WindowsCalculator_8wekyb3d8bbwe!App" {
		t.Errorf("appid metadata = %q", got[0].Metadata["appid"])
	}
}

func TestParseStartAppsGarbage(t *testing.T) {
	if got := parseStartApps(""); len(got) != 0 {
		t.Errorf("parseStartApps(\"\") = %v, want empty", got)
	}
	if got := parseStartApps("Get-StartApps : not recognized"); len(got) != 0 {
		t.Errorf("parseStartApps(error text) = %v, want empty", got)
	}
}

func TestParseShortcuts(t *testing.T) {
	output := "\"Name\",\"Target\"\n" +
		"\"Chrome\",\"C:\\Chrome\\chrome.exe\"\n" +
		"\"Gone\",\"C:\\Gone\\gone.exe\"\n" +
		"\"Readme\",\"C:\\Docs\\readme.txt\"\n"

	exists := func(p string) bool { return !strings.Contains(p, "Gone") }

	got := parseShortcuts(output, exists)

	if len(got) != 1 || got[0].Name != "Chrome" {
		t.Errorf("parseShortcuts() = %+v, want only Chrome", got)
	}
}

func TestShortcutScriptQuotesDirs(t *testing.T) {
	script := shortcutScript([]string{`C:\Users\o'neil\Desktop`, `C:\ProgramData`})

	if !strings.Contains(script, `-Path 'C:\Users\o''neil\Desktop','C:\ProgramData'`) {
		t.Errorf("shortcutScript() did not quote dirs: %s", script)
	}
}

func TestPathEnvWindowsExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"code.exe", "build.BAT", "env.cmd", "readme.txt", "tool.ps1"} {
		writeFile(t, filepath.Join(dir, name), 0o644)
	}

	p := &PathEnv{Dirs: []string{dir}, goos: "windows"}
	got, err := p.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []string{"build", "code", "env"}
	if names := rawNames(got); strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Collect() names = %v, want %v", names, want)
	}
}

func TestPathEnvExecBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bits are not meaningful on windows")
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vim"), 0o755)
	writeFile(t, filepath.Join(dir, "notes.md"), 0o644)
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "vim"), filepath.Join(dir, "vi")); err != nil {
		t.Fatal(err)
	}

	p := &PathEnv{Dirs: []string{dir, dir, "", filepath.Join(dir, "missing")}, goos: "linux"}
	got, err := p.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []string{"vi", "vim"}
	if names := rawNames(got); strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Collect() names = %v, want %v", names, want)
	}
}

func TestCommonPathsDepth(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses exec bits")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top"), 0o755)
	writeFile(t, filepath.Join(root, "app", "inner"), 0o755)
	writeFile(t, filepath.Join(root, "app", "lib", "too-deep"), 0o755)
	writeFile(t, filepath.Join(root, ".cache", "hidden"), 0o755)
	writeFile(t, filepath.Join(root, "app", "data.json"), 0o644)

	c := &CommonPaths{Roots: []string{root, root, filepath.Join(root, "nope")}}
	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []string{"inner", "top"}
	if names := rawNames(got); strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Collect() names = %v, want %v", names, want)
	}
}

func TestCommonPathsCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "inner.exe"), 0o755)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &CommonPaths{Roots: []string{root}}
	if _, err := c.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}

func TestUninstallEntryExePath(t *testing.T) {
	install := filepath.Join(t.TempDir(), "MyApp")
	writeFile(t, filepath.Join(install, "helper.exe"), 0o644)
	writeFile(t, filepath.Join(install, "MyApp.exe"), 0o644)

	other := filepath.Join(t.TempDir(), "Suite")
	writeFile(t, filepath.Join(other, "alpha.exe"), 0o644)
	writeFile(t, filepath.Join(other, "beta.exe"), 0o644)

	tests := []struct {
		name  string
		entry uninstallEntry
		want  string
	}{
		{
			name:  "display icon with index",
			entry: uninstallEntry{DisplayIcon: `"` + filepath.Join(install, "helper.exe") + `",0`},
			want:  filepath.Join(install, "helper.exe"),
		},
		{
			name:  "missing icon falls back to directory name match",
			entry: uninstallEntry{DisplayIcon: filepath.Join(install, "gone.exe"), InstallLocation: install},
			want:  filepath.Join(install, "MyApp.exe"),
		},
		{
			name:  "no name match takes the first exe",
			entry: uninstallEntry{InstallLocation: other},
			want:  filepath.Join(other, "alpha.exe"),
		},
		{
			name:  "icon that is not an exe",
			entry: uninstallEntry{DisplayIcon: filepath.Join(install, "app.ico")},
			want:  "",
		},
		{
			name:  "nothing usable",
			entry: uninstallEntry{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.exePath(); got != tt.want {
				t.Errorf("exePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnsupportedOutsideWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows collectors are supported here")
	}

	for _, c := range []Collector{&StartMenu{}, &Registry{}, &Shortcuts{}} {
		if _, err := c.Collect(context.Background()); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%T.Collect() error = %v, want ErrUnsupported", c, err)
		}
	}
}

func TestCollectorSets(t *testing.T) {
	quick := QuickSet(Options{})
	full := FullSet(Options{ExtraDirs: []string{"/srv/tools"}})

	if len(quick) != 2 || quick[0].Name != "startmenu" || quick[1].Name != "path" {
		t.Errorf("QuickSet() = %+v", quick)
	}
	if len(full) != 3 {
		t.Fatalf("FullSet() returned %d collectors, want 3", len(full))
	}

	scan, ok := full[0].Collector.(*CommonPaths)
	if !ok {
		t.Fatalf("FullSet()[0] is %T, want *CommonPaths", full[0].Collector)
	}
	if scan.Roots[len(scan.Roots)-1] != "/srv/tools" {
		t.Errorf("extra dirs not appended: %v", scan.Roots)
	}
	if full[0].Source != domain.SourceScan {
		t.Errorf("common paths source = %s, want scan", full[0].Source)
	}
}

func TestCollectorFunc(t *testing.T) {
	f := CollectorFunc(func(ctx context.Context) ([]domain.RawCandidate, error) {
		return []domain.RawCandidate{{Name: "stub", Path: "/stub"}}, nil
	})

	got, err := f.Collect(context.Background())
	if err != nil || len(got) != 1 {
		t.Errorf("CollectorFunc.Collect() = %v, %v", got, err)
	}
}
