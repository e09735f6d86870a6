package log

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sync"
	"time"
)

// DailyFile is an io.Writer appending to <dir>/<name>-YYYY-MM-DD.log and
// switching to a new file when the local date changes.
type DailyFile struct {
	dir  string
	name string
	now  func() time.Time

	newFileYear  int
	newFileMonth time.Month
	newFileDay   int
	f            *os.File

	mtx sync.Mutex
}

// NewDailyFile creates dir if needed. Files are opened lazily on first Write.
func NewDailyFile(dir, name string) (*DailyFile, error) {
	if dir == "" || name == "" {
		return nil, errors.New("NewDailyFile: empty dir or name")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("NewDailyFile mkdir fail! " + err.Error())
	}
	return &DailyFile{dir: dir, name: name, now: time.Now}, nil
}

// Write appends p to the file of the current day.
func (l *DailyFile) Write(p []byte) (int, error) {
	year, month, day := l.now().Date()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if err := l.newFile(year, month, day); err != nil {
		return 0, err
	}
	return l.f.Write(p)
}

// Close closes the current file.
func (l *DailyFile) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.close()
}

// FileName returns the file name used for the given date.
func (l *DailyFile) FileName(year int, month time.Month, day int) string {
	return path.Join(l.dir, fmt.Sprintf("%s-%d-%02d-%02d.log", l.name, year, month, day))
}

func (l *DailyFile) newFile(year int, month time.Month, day int) error {
	if l.f != nil && l.newFileYear == year && l.newFileMonth == month && l.newFileDay == day {
		return nil
	}
	if err := l.close(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.FileName(year, month, day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.f = f
	l.newFileYear, l.newFileMonth, l.newFileDay = year, month, day
	return nil
}

func (l *DailyFile) close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
