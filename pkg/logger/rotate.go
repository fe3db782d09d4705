package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile is a zapcore.WriteSyncer that writes to <dir>/YYYY-MM-DD.log,
// switching files when the day changes
type DailyFile struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewDailyFile creates a DailyFile under dir
func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{dir: dir, now: time.Now}
}

// Filename returns the file written for t
func (d *DailyFile) Filename(t time.Time) string {
	return filepath.Join(d.dir, t.Format("2006-01-02")+".log")
}

// Write implements io.Writer
func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if day := now.Format("2006-01-02"); day != d.day || d.file == nil {
		if d.file != nil {
			_ = d.file.Close()
		}
		f, err := os.OpenFile(d.Filename(now), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, err
		}
		d.day, d.file = day, f
	}
	return d.file.Write(p)
}

// Sync flushes the current file
func (d *DailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

// Close closes the current file
func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
