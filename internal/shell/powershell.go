// Package shell runs PowerShell scripts and decodes their console output.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// DefaultShellTimeout bounds a single PowerShell invocation.
const DefaultShellTimeout = 25 * time.Second

// forceUTF8 makes PowerShell write its console output as UTF-8.
const forceUTF8 = "[Console]::OutputEncoding = [System.Text.Encoding]::UTF8; "

// Runner executes a PowerShell script and returns its standard output.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

// PowerShell runs scripts through powershell.exe.
type PowerShell struct {
	Binary  string        // executable, "powershell" when empty
	Dir     string        // working directory, the user's home when empty
	Timeout time.Duration // per call, DefaultShellTimeout when zero
}

// DefaultPowerShell returns a runner working in the user's home directory.
func DefaultPowerShell() *PowerShell {
	home, _ := os.UserHomeDir()
	return &PowerShell{Binary: "powershell", Dir: home, Timeout: DefaultShellTimeout}
}

// Run executes script and returns its decoded standard output.
// A non-zero exit status is an error carrying the decoded stderr.
func (p *PowerShell) Run(ctx context.Context, script string) (string, error) {
	binary := p.Binary
	if binary == "" {
		binary = "powershell"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultShellTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-NoProfile", "-NonInteractive", "-Command", forceUTF8+script)
	if p.Dir != "" {
		cmd.Dir = p.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("powershell: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("powershell exited with %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(Decode(stderr.Bytes())))
		}
		return "", fmt.Errorf("failed to run powershell: %w", err)
	}

	return Decode(stdout.Bytes()), nil
}

// Decode turns console output into a string. UTF-8 is tried first; bytes
// that are not valid UTF-8 are read as GBK (code page 936), the default
// console encoding on Chinese Windows.
func Decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(data), "")
}

// Quote returns s as a single-quoted PowerShell literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
