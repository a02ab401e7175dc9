package render

import (
	"bytes"
	"html/template"
	"io"
)

// ArticleView is the data for the standalone legal update page.
type ArticleView struct {
	SiteName     string
	Title        string // <title>, e.g. "Heading - Legal Update"
	Heading      string
	Date         string // DateFormat
	ISODate      string // YYYY-MM-DD for <time datetime>
	CategorySlug string
	CategoryName string
	Content      template.HTML // already sanitized
	BackURL      string
	StaticBase   string
}

// Tab is one category tab on the index page.
type Tab struct {
	Slug   string
	Name   string
	Active bool
}

// TabsView is the data for the tabbed legal updates index page.
type TabsView struct {
	SiteName   string
	Title      string
	Tabs       []Tab
	Endpoint   string // URL the tab script posts to
	Nonce      string // anti-forgery token echoed back as "nonce"
	StaticBase string
}

// ListingItem is one update in a category listing fragment.
type ListingItem struct {
	Heading   string
	Date      string
	Summary   string
	HasMore   bool
	Permalink string
}

// ListingView is the data for a category listing fragment.
type ListingView struct {
	Items []ListingItem
}

// Article writes the standalone page for one legal update.
func (rn *Renderer) Article(w io.Writer, v *ArticleView) error {
	return rn.publicTemplate(w, "single_update", v)
}

// Tabs writes the tabbed index page.
func (rn *Renderer) Tabs(w io.Writer, v *TabsView) error {
	return rn.publicTemplate(w, "index", v)
}

// Listing returns the HTML fragment for a category listing. An empty view
// renders the "no updates" placeholder.
func (rn *Renderer) Listing(v *ListingView) ([]byte, error) {
	var buf bytes.Buffer
	if err := rn.publicTemplate(&buf, "listing", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
