package log

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDailyFile_Roll(t *testing.T) {
	dir := t.TempDir()
	l, err := NewDailyFile(dir, "evtimer")
	if err != nil {
		t.Fatalf("NewDailyFile: %v", err)
	}
	defer l.Close()

	day := time.Date(2023, 7, 5, 23, 59, 0, 0, time.Local)
	l.now = func() time.Time { return day }
	for i := 0; i < 3; i++ {
		if _, err := l.Write([]byte("first day\n")); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	day = day.Add(2 * time.Minute)
	if _, err := l.Write([]byte("second day\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(l.FileName(2023, 7, 5))
	if err != nil {
		t.Fatalf("read first file: %v", err)
	}
	if got := strings.Count(string(b), "first day"); got != 3 {
		t.Errorf("first file has %d lines, want 3", got)
	}
	b, err = os.ReadFile(l.FileName(2023, 7, 6))
	if err != nil {
		t.Fatalf("read second file: %v", err)
	}
	if string(b) != "second day\n" {
		t.Errorf("second file = %q", b)
	}
}

func TestDailyFile_Text(t *testing.T) {
	dir := t.TempDir()
	l, err := NewDailyFile(dir, "debug")
	if err != nil {
		t.Fatalf("NewDailyFile: %v", err)
	}
	defer l.Close()

	logger := NewText(l, nil)
	logger.Info("hello", "n", 1)

	y, m, d := time.Now().Date()
	b, err := os.ReadFile(l.FileName(y, m, d))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "msg=hello") || !strings.Contains(string(b), "n=1") {
		t.Errorf("unexpected record %q", b)
	}
}

func TestNewDailyFile_Invalid(t *testing.T) {
	if _, err := NewDailyFile("", "x"); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	if err != nil {
		t.Fatalf("ParseLevel: %v", err)
	}
	if lvl.String() != "WARN" {
		t.Errorf("got %v, want WARN", lvl)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error")
	}
}
