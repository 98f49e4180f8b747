// Package editor lets a student write or paste an encounter transcript in
// their own $EDITOR.
package editor

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const ScenarioPrefix = "Scenario: "

// ComposeTranscript creates the text presented to the editor.
func ComposeTranscript(scenario, transcript string) string {
	var b bytes.Buffer
	b.WriteString("# Patient encounter transcript\n")
	b.WriteString("# Lines starting with '#' before '---' are ignored.\n")
	b.WriteString("# Optionally label the scenario. After '---', write or paste the transcript.\n")
	b.WriteString(ScenarioPrefix)
	b.WriteString(scenario)
	b.WriteString("\n---\n")
	if transcript != "" {
		if !strings.HasSuffix(transcript, "\n") {
			transcript += "\n"
		}
		b.WriteString(transcript)
	}
	return b.String()
}

// ParseTranscript extracts the scenario label and transcript from editor output.
// Text without a '---' separator is taken as the transcript as a whole.
func ParseTranscript(s string) (scenario, transcript string) {
	lines := strings.Split(s, "\n")
	sep := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			sep = i
			break
		}
	}
	if sep < 0 {
		return "", strings.TrimSpace(s)
	}
	for _, line := range lines[:sep] {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if strings.HasPrefix(line, strings.TrimSpace(ScenarioPrefix)) {
			scenario = strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(ScenarioPrefix)))
		}
	}
	return scenario, strings.TrimSpace(strings.Join(lines[sep+1:], "\n"))
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathForID returns a private scratch file path for a transcript draft.
func PathForID(id string) (string, error) {
	name := sanitize(id) + ".transcript.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "medic", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "medic", "edit", name), nil
}

func sanitize(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// Honor VISUAL/EDITOR including flags by running via a shell wrapper.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	_ = os.Remove(path)
	return out, !bytes.Equal(out, initial), nil
}
