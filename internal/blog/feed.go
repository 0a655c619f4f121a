package blog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// FeedInfo describes the site the RSS channel belongs to.
type FeedInfo struct {
	Title       string
	SiteURL     string
	Description string
}

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// ArticleURL is where the frontend shows an article.
func ArticleURL(siteURL, slug string) string {
	return strings.TrimRight(siteURL, "/") + "/blog/" + slug
}

// WriteRSS writes an RSS 2.0 document listing every article, newest update
// first.
func (ix *Index) WriteRSS(w io.Writer, info FeedInfo) error {
	ch := rssChannel{
		Title:       info.Title,
		Link:        strings.TrimRight(info.SiteURL, "/") + "/blog",
		Description: info.Description,
	}
	if ch.Description == "" {
		ch.Description = info.Title
	}

	for i, a := range ix.articles {
		if i == 0 {
			ch.LastBuildDate = rfc1123(a.Meta.UpdatedAt)
		}
		link := ArticleURL(info.SiteURL, a.Meta.Slug)
		ch.Items = append(ch.Items, rssItem{
			Title:       a.Meta.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     rfc1123(a.Meta.CreatedAt),
			Description: a.Meta.Excerpt,
			Categories:  a.Meta.Tags,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(rss{Version: "2.0", Channel: ch}); err != nil {
		return fmt.Errorf("encoding rss: %w", err)
	}
	return enc.Flush()
}

func rfc1123(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC1123Z)
}
