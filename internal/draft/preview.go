package draft

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/orbitfund/orbitfund/internal/logger"
)

// PreviewKind selects how a staged file is shown.
type PreviewKind string

const (
	PreviewImage    PreviewKind = "image"
	PreviewVideo    PreviewKind = "video"
	PreviewDocument PreviewKind = "document"
)

var (
	imageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	videoExtensions = map[string]bool{"mp4": true, "webm": true, "ogg": true}
)

// Preview describes one preview tile. Key is what the remove control passes
// back to RemoveFile.
type Preview struct {
	Key      FileKey
	Name     string
	Kind     PreviewKind
	Source   string // local path or remote URL
	Existing bool
	Muted    bool
	Autoplay bool
	Controls bool
	Detail   string // filled in once probing finished
}

// classifyMIME classifies a new file by its MIME type.
func classifyMIME(mimeType string) PreviewKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return PreviewImage
	case strings.HasPrefix(mimeType, "video/"):
		return PreviewVideo
	default:
		return PreviewDocument
	}
}

// classifyURL classifies a remote file by its extension.
func classifyURL(u string) PreviewKind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(RemoteFile{URL: u}.DisplayName()), "."))
	switch {
	case imageExtensions[ext]:
		return PreviewImage
	case videoExtensions[ext]:
		return PreviewVideo
	default:
		return PreviewDocument
	}
}

func newPreview(f StagedFile) Preview {
	p := Preview{Key: f.Key(), Name: f.DisplayName()}
	switch sf := f.(type) {
	case NewFile:
		p.Kind = classifyMIME(sf.MIMEType)
		p.Source = sf.Path
	case RemoteFile:
		p.Kind = classifyURL(sf.URL)
		p.Source = sf.URL
		p.Existing = true
	}
	if p.Kind == PreviewVideo {
		p.Muted = true
		p.Autoplay = true
		p.Controls = false
	}
	return p
}

// Previews renders the staged files of a category in collection order.
func (m *Manager) Previews(c Category) []Preview {
	files := m.files[c].Files()
	out := make([]Preview, 0, len(files))
	for _, f := range files {
		p := newPreview(f)
		if probe, ok := m.probes.get(p.Key); ok {
			p.Detail = probe.Detail
		}
		out = append(out, p)
	}
	return out
}

// Probe holds details computed asynchronously for a new file.
type Probe struct {
	Key      FileKey
	MIMEType string
	Detail   string
}

// probeStore is written by probe workers and read by the owning goroutine.
// live holds the keys of new files that are still staged; a worker finishing
// after its file was removed finds the key gone and its result is discarded.
type probeStore struct {
	mu      sync.Mutex
	results map[FileKey]Probe
	live    map[FileKey]bool
}

func newProbeStore() *probeStore {
	return &probeStore{results: make(map[FileKey]Probe), live: make(map[FileKey]bool)}
}

func (s *probeStore) get(k FileKey) (Probe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.results[k]
	return p, ok
}

// stage marks k as staged so probe results for it are kept.
func (s *probeStore) stage(k FileKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[k] = true
}

// put stores p unless its file was unstaged. Reports whether it was kept.
func (s *probeStore) put(p Probe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live[p.Key] {
		return false
	}
	s.results[p.Key] = p
	return true
}

func (s *probeStore) drop(k FileKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, k)
	delete(s.results, k)
}

// PendingProbes returns the new files of a category that have not been probed.
// The caller may hand the result to RunProbes on another goroutine.
func (m *Manager) PendingProbes(c Category) []NewFile {
	var pending []NewFile
	for _, f := range m.files[c].NewFiles() {
		if _, ok := m.probes.get(f.Key()); !ok {
			pending = append(pending, f)
		}
	}
	return pending
}

// RunProbes sniffs the given files on a bounded worker pool. Each result is
// stored under its own file key, so completion order does not matter. Results
// for files removed in the meantime are dropped. It does not touch any other
// manager state and is safe to call off the owning goroutine.
func (m *Manager) RunProbes(ctx context.Context, files []NewFile) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.PreviewWorkers)

	for _, f := range files {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			probe := Probe{Key: f.Key(), Detail: "unreadable"}
			if sniffed, err := sniffMIME(f.Path); err == nil {
				probe.MIMEType = sniffed
				probe.Detail = fmt.Sprintf("%s, %s", humanSize(f.Size), sniffed)
			}
			if !m.probes.put(probe) {
				logger.Debug("Discarded probe of %s: no longer staged", f.Name)
			}
			return nil
		})
	}
	return g.Wait()
}

func humanSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
