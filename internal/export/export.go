// Package export writes every legal update to a directory tree of markdown
// files with YAML front matter, one file per update under its category.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"gopkg.in/yaml.v3"

	"legalupdates/internal/models"
	"legalupdates/internal/permalink"
	"legalupdates/internal/sanitize"
	"legalupdates/internal/store"
)

// UpdateLister lists updates. *store.UpdateStore implements it.
type UpdateLister interface {
	List(ctx context.Context, f store.UpdateFilter) ([]models.Update, error)
}

// Sink stores one exported file under a slash-separated name.
// *storage.Client implements it.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// DirSink writes files below a local directory.
type DirSink string

// Put writes data to dir/name, creating parent directories.
func (d DirSink) Put(_ context.Context, name string, data []byte) error {
	path := filepath.Join(string(d), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// FrontMatter is the YAML header of an exported file.
type FrontMatter struct {
	Heading   string    `yaml:"heading"`
	Category  string    `yaml:"category"`
	Slug      string    `yaml:"slug"`
	Permalink string    `yaml:"permalink"`
	Created   time.Time `yaml:"created"`
	Updated   time.Time `yaml:"updated"`
}

// Exporter converts stored updates into markdown files.
type Exporter struct {
	updates   UpdateLister
	converter *md.Converter
	homeURL   string
	slugMode  string
}

// New creates an Exporter. homeURL is used to build the permalink recorded
// in each file's front matter.
func New(updates UpdateLister, homeURL, slugMode string) *Exporter {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	return &Exporter{
		updates:   updates,
		converter: conv,
		homeURL:   homeURL,
		slugMode:  slugMode,
	}
}

// Export writes every update to dir/{category}/{slug}.md and returns the
// number of files written.
func (e *Exporter) Export(ctx context.Context, dir string) (int, error) {
	return e.ExportTo(ctx, DirSink(dir))
}

// ExportTo writes every update to sink as {category}/{slug}.md.
func (e *Exporter) ExportTo(ctx context.Context, sink Sink) (int, error) {
	updates, err := e.updates.List(ctx, store.UpdateFilter{})
	if err != nil {
		return 0, fmt.Errorf("list updates: %w", err)
	}

	n := 0
	for i := range updates {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		u := &updates[i]
		data, err := e.Render(u)
		if err != nil {
			return n, fmt.Errorf("export update %d: %w", u.ID, err)
		}
		name := u.Category + "/" + e.fileName(u)
		if err := sink.Put(ctx, name, data); err != nil {
			return n, fmt.Errorf("export update %d: %w", u.ID, err)
		}
		slog.Debug("exported update", "id", u.ID, "name", name)
		n++
	}
	return n, nil
}

// fileName is the update's slug, or update-{id} when the heading has no
// sluggable characters.
func (e *Exporter) fileName(u *models.Update) string {
	s := permalink.SlugFor(e.slugMode, u)
	if s == "" {
		s = "update-" + strconv.FormatInt(u.ID, 10)
	}
	return s + ".md"
}

// Render returns the exported file contents for u.
func (e *Exporter) Render(u *models.Update) ([]byte, error) {
	s := permalink.SlugFor(e.slugMode, u)
	fm := FrontMatter{
		Heading:  u.Heading,
		Category: u.Category,
		Slug:     s,
		Created:  u.CreatedAt.UTC(),
		Updated:  u.UpdatedAt.UTC(),
	}
	if s != "" {
		fm.Permalink = permalink.LinkSlug(e.homeURL, u.Category, s)
	}

	body := u.Content
	if !u.IsMarkdown() {
		var err error
		body, err = e.converter.ConvertString(sanitize.Content(u.Content))
		if err != nil {
			return nil, fmt.Errorf("convert html: %w", err)
		}
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
