package handlers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"sigs.k8s.io/yaml"

	"github.com/johnbendi/kubeplane/internal/status"
	"github.com/johnbendi/kubeplane/internal/ui"
)

const lastStatusFile = "last-status.yaml"

// lastStatus is the recorded outcome of the most recent convergence pass.
type lastStatus struct {
	Status string    `json:"status"`
	Level  string    `json:"level"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

func writeLastStatus(dataDir string, st status.Status, passErr error) error {
	record := lastStatus{
		Status: st.String(),
		Level:  levelName(st.Level),
		Time:   time.Now().UTC(),
	}
	if passErr != nil {
		record.Error = passErr.Error()
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status record: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dataDir, err)
	}
	path := filepath.Join(dataDir, lastStatusFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Status prints the outcome of the last convergence pass. Styled output is
// used on interactive terminals unless plain is requested.
func Status(w io.Writer, dataDir string, plain bool) error {
	path := filepath.Join(dataDir, lastStatusFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintln(w, "no convergence pass recorded yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var record lastStatus
	if err := yaml.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if plain || !isInteractiveTTY() {
		fmt.Fprintf(w, "status: %s\n", record.Status)
		fmt.Fprintf(w, "last pass: %s\n", record.Time.Format(time.RFC3339))
		if record.Error != "" {
			fmt.Fprintf(w, "error: %s\n", record.Error)
		}
		return nil
	}

	style := ui.StatusStyle(parseLevel(record.Level))
	fmt.Fprintln(w, ui.TitleStyle.Render("kubeplane node status"))
	fmt.Fprintf(w, "status: %s\n", style.Render(record.Status))
	fmt.Fprintf(w, "%s\n", ui.DimStyle.Render(fmt.Sprintf("last pass: %s (%s ago)",
		record.Time.Format(time.RFC3339), time.Since(record.Time).Round(time.Second))))
	if record.Error != "" {
		fmt.Fprintf(w, "error: %s\n", ui.BlockedStyle.Render(record.Error))
	}
	return nil
}

func levelName(level status.Level) string {
	switch level {
	case status.LevelBlocked:
		return "blocked"
	case status.LevelWaiting:
		return "waiting"
	default:
		return "ready"
	}
}

func parseLevel(name string) status.Level {
	switch name {
	case "blocked":
		return status.LevelBlocked
	case "waiting":
		return status.LevelWaiting
	default:
		return status.LevelReady
	}
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
