package trash

import (
	"os"
	"path/filepath"
	"time"

	"github.com/k0kubun/pp/v3"
)

// Kind tells files and directories apart
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "Directory"
	}
	return "File"
}

// InvalidID stands in for trash entry names that are not valid UTF-8
const InvalidID = "<invalid UTF-8>"

const deletionDateLayout = "2006-01-02 15:04:05"

// Item represents one entry in the trash directory
type Item struct {
	// ID is the entry's file name inside the trash directory
	ID string

	// Path is the absolute path of the entry inside the trash directory
	Path string

	// OriginalPath is where the entry lived before it was trashed
	OriginalPath string

	// DeletionDate is when the entry becomes eligible for permanent deletion
	DeletionDate time.Time
}

// Kind stats the entry on every call, so it reflects the current disk state
func (i *Item) Kind() Kind {
	fi, err := os.Stat(i.Path)
	if err == nil && fi.IsDir() {
		return KindDirectory
	}
	return KindFile
}

// FormatDeletionDate renders the deletion date relative to now: "Today" and
// "Tomorrow" by UTC calendar day, an absolute UTC timestamp otherwise.
func (i *Item) FormatDeletionDate(now time.Time) string {
	day := truncateDay(i.DeletionDate)
	today := truncateDay(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return i.DeletionDate.UTC().Format(deletionDateLayout)
	}
}

// Expired reports whether the grace period is over at now
func (i *Item) Expired(now time.Time) bool {
	return i.DeletionDate.Before(now)
}

// Name returns the base name the entry had before it was trashed
func (i *Item) Name() string {
	return filepath.Base(i.OriginalPath)
}

func (i *Item) GetName() string            { return i.Name() }
func (i *Item) GetPath() string            { return i.Path }
func (i *Item) GetOriginalPath() string    { return i.OriginalPath }
func (i *Item) GetDeletionDate() time.Time { return i.DeletionDate }

func (i *Item) String() string {
	type item Item // drops the String method
	p := pp.New()
	p.SetColoringEnabled(false)
	return p.Sprint(item(*i))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
