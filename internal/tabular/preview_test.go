package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b,c\n1,2,3\n4,5,6\n")

	p, err := Read(path, ',', 50)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(p.Headers, []string{"a", "b", "c"}) {
		t.Errorf("Headers = %v", p.Headers)
	}
	want := [][]string{{"1", "2", "3"}, {"4", "5", "6"}}
	if !reflect.DeepEqual(p.Rows, want) {
		t.Errorf("Rows = %v, want %v", p.Rows, want)
	}
	if p.Truncated {
		t.Error("Truncated = true for a fully read file")
	}
}

func TestReadTSV(t *testing.T) {
	path := writeFile(t, "data.tsv", "x\ty\n1\t2\n")

	p, err := Read(path, '\t', 50)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(p.Headers, []string{"x", "y"}) {
		t.Errorf("Headers = %v", p.Headers)
	}
}

func TestReadTruncates(t *testing.T) {
	path := writeFile(t, "data.csv", "h\n1\n2\n3\n4\n")

	p, err := Read(path, ',', 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(p.Rows) != 2 || !p.Truncated {
		t.Errorf("Rows = %d, Truncated = %v, want 2 rows truncated", len(p.Rows), p.Truncated)
	}
}

func TestReadRaggedRows(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1\n2,3,4\n")

	p, err := Read(path, ',', 50)
	if err != nil {
		t.Fatalf("Read with ragged rows: %v", err)
	}
	if len(p.Rows) != 2 {
		t.Errorf("Rows = %v, want both ragged rows kept", p.Rows)
	}
}

func TestReadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	if _, err := Read(path, ',', 50); !errors.Is(err, ErrEmpty) {
		t.Errorf("Read of empty file: error = %v, want ErrEmpty", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.csv"), ',', 50); err == nil {
		t.Error("Read of missing file succeeded")
	}
}
