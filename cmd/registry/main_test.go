package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-registry/internal/store"
)

func writeFixture(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"sources/2024-1.csv":            "Nombre,Correo,Telegram,¿Por qué?\nAna Pérez,ana@uc.cl,ana,Porque sí\nLuis,,luis,\n",
		"sources/attendance/IIC1001.md": "| | Ana Pérez |\n|-|-|\n| S1 | A |\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	configPath = filepath.Join(dir, "registry.yaml")
	yaml := "sources:\n  - " + filepath.Join(dir, "sources", "2024-1.csv") + "\n" +
		"attendance_dir: " + filepath.Join(dir, "sources", "attendance") + "\n" +
		"metrics_textfile: " + filepath.Join(dir, "registry.prom") + "\n" +
		"storage:\n  driver: file\n  path: " + filepath.Join(dir, "out", "crmdata.json") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))
	return dir, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir, configPath := writeFixture(t)

	out, err := execute(t, "build", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 people from 2 records")

	snap, err := store.NewFileStore(filepath.Join(dir, "out", "crmdata.json")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.People, 2)
	assert.Equal(t, 1, snap.Report.AttendanceMatched)

	metricsText, err := os.ReadFile(filepath.Join(dir, "registry.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), "registry_people 2")
}

func TestRootDefaultsToBuild(t *testing.T) {
	dir, configPath := writeFixture(t)

	_, err := execute(t, "--config", configPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out", "crmdata.json"))
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  driver: floppy\n"), 0o644))

	_, err := execute(t, "build", "--config", configPath)
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	_, configPath := writeFixture(t)

	out, err := execute(t, "inspect", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-1.csv (2 rows)")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "por_qué")
}
