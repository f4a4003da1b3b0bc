package draft

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Category is a media category with its own file collection and deletion queue.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryVideo     Category = "video"
	CategoryDocuments Category = "documents"
)

// Categories lists every media category in form order.
var Categories = []Category{CategoryImages, CategoryVideo, CategoryDocuments}

// FieldName is the multipart field new files are uploaded under.
func (c Category) FieldName() string {
	return string(c)
}

// DeleteField is the multipart field carrying the JSON array of URLs to delete.
func (c Category) DeleteField() string {
	switch c {
	case CategoryImages:
		return "deleteImages"
	case CategoryVideo:
		return "deleteVideos"
	default:
		return "deleteDocuments"
	}
}

// Label returns a human readable name.
func (c Category) Label() string {
	switch c {
	case CategoryImages:
		return "Mission Images"
	case CategoryVideo:
		return "Mission Video"
	default:
		return "Technical Documents"
	}
}

var categoryExtensions = map[Category][]string{
	CategoryImages:    {".jpg", ".jpeg", ".png", ".gif", ".webp"},
	CategoryVideo:     {".mp4", ".webm", ".ogg", ".mov"},
	CategoryDocuments: {".pdf", ".doc", ".docx", ".odt", ".txt", ".md", ".csv", ".xls", ".xlsx", ".ppt", ".pptx"},
}

// Accepts reports whether a file name looks like something this category takes.
func (c Category) Accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range categoryExtensions[c] {
		if e == ext {
			return true
		}
	}
	return false
}

// FileKey identifies a staged file. New files are keyed by name, size and
// modification time; remote files by URL only.
type FileKey struct {
	Name       string
	Size       int64
	ModifiedMs int64
	URL        string
}

// IsRemote reports whether the key belongs to an already persisted file.
func (k FileKey) IsRemote() bool {
	return k.URL != ""
}

func (k FileKey) String() string {
	if k.IsRemote() {
		return k.URL
	}
	return fmt.Sprintf("%s:%d:%d", k.Name, k.Size, k.ModifiedMs)
}

// StagedFile is either a NewFile or a RemoteFile.
type StagedFile interface {
	Key() FileKey
	DisplayName() string
	staged()
}

// NewFile is a local file picked for upload.
type NewFile struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	MIMEType string
}

func (f NewFile) Key() FileKey {
	return FileKey{Name: f.Name, Size: f.Size, ModifiedMs: f.ModTime.UnixMilli()}
}

func (f NewFile) DisplayName() string { return f.Name }

func (NewFile) staged() {}

// Open opens the file contents for upload.
func (f NewFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// RemoteFile is a file already stored by the backend.
type RemoteFile struct {
	URL string
}

func (f RemoteFile) Key() FileKey { return FileKey{URL: f.URL} }

// DisplayName is the last path segment of the URL.
func (f RemoteFile) DisplayName() string {
	if u, err := url.Parse(f.URL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	parts := strings.Split(f.URL, "/")
	return parts[len(parts)-1]
}

func (RemoteFile) staged() {}

// StatFile builds a NewFile from a path on disk. The MIME type comes from the
// extension, falling back to sniffing the first bytes.
func StatFile(p string) (NewFile, error) {
	info, err := os.Stat(p)
	if err != nil {
		return NewFile{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return NewFile{}, fmt.Errorf("%s is a directory", p)
	}

	f := NewFile{
		Path:    p,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	f.MIMEType = mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
	if f.MIMEType == "" {
		f.MIMEType, _ = sniffMIME(p)
	}
	return f, nil
}

func sniffMIME(p string) (string, error) {
	fh, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer func() { _ = fh.Close() }()

	buf := make([]byte, 512)
	n, err := io.ReadFull(fh, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// Selection is one batch of picked files, the equivalent of a file input's
// current value. AddFiles clears it after consuming.
type Selection struct {
	files []NewFile
}

// NewSelection wraps already stat'ed files.
func NewSelection(files ...NewFile) *Selection {
	return &Selection{files: files}
}

// SelectPaths stats every path into a selection.
func SelectPaths(paths ...string) (*Selection, error) {
	sel := &Selection{}
	for _, p := range paths {
		f, err := StatFile(p)
		if err != nil {
			return nil, err
		}
		sel.files = append(sel.files, f)
	}
	return sel, nil
}

// Files returns the selected files.
func (s *Selection) Files() []NewFile { return s.files }

// Len returns the number of selected files.
func (s *Selection) Len() int { return len(s.files) }

// Clear empties the selection so the same files can be picked again.
func (s *Selection) Clear() { s.files = nil }

// FileCollection holds the staged files of one category in insertion order.
type FileCollection struct {
	entries *orderedmap.OrderedMap[FileKey, StagedFile]
}

func newFileCollection() *FileCollection {
	return &FileCollection{entries: orderedmap.New[FileKey, StagedFile]()}
}

// Add stages a file. Returns false if a file with the same key is already staged.
func (c *FileCollection) Add(f StagedFile) bool {
	if _, ok := c.entries.Get(f.Key()); ok {
		return false
	}
	c.entries.Set(f.Key(), f)
	return true
}

// Get looks up a staged file.
func (c *FileCollection) Get(key FileKey) (StagedFile, bool) {
	return c.entries.Get(key)
}

// Remove unstages a file.
func (c *FileCollection) Remove(key FileKey) (StagedFile, bool) {
	return c.entries.Delete(key)
}

// Len returns the number of staged files.
func (c *FileCollection) Len() int { return c.entries.Len() }

// Files returns staged files in insertion order.
func (c *FileCollection) Files() []StagedFile {
	out := make([]StagedFile, 0, c.entries.Len())
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// NewFiles returns only files that still need uploading.
func (c *FileCollection) NewFiles() []NewFile {
	var out []NewFile
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		if nf, ok := pair.Value.(NewFile); ok {
			out = append(out, nf)
		}
	}
	return out
}

// RemoteFiles returns only already persisted files.
func (c *FileCollection) RemoteFiles() []RemoteFile {
	var out []RemoteFile
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		if rf, ok := pair.Value.(RemoteFile); ok {
			out = append(out, rf)
		}
	}
	return out
}

// DeletionQueue is an ordered, duplicate free list of remote URLs to delete.
type DeletionQueue struct {
	urls []string
	seen map[string]struct{}
}

func newDeletionQueue() *DeletionQueue {
	return &DeletionQueue{seen: make(map[string]struct{})}
}

// Enqueue appends a URL unless it is already queued.
func (q *DeletionQueue) Enqueue(u string) bool {
	if _, ok := q.seen[u]; ok {
		return false
	}
	q.seen[u] = struct{}{}
	q.urls = append(q.urls, u)
	return true
}

// URLs returns a copy of the queued URLs, never nil.
func (q *DeletionQueue) URLs() []string {
	out := make([]string, len(q.urls))
	copy(out, q.urls)
	return out
}

// Len returns the number of queued URLs.
func (q *DeletionQueue) Len() int { return len(q.urls) }
