package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
)

// Knockout bindings that toggle the two download tables on the stats page.
const (
	communityTableBinding = "visible: !showAllPackageDownloads()"
	allTableBinding       = "visible: showAllPackageDownloads"
)

// FetchPopularPackageIDs downloads the statistics page and returns the top
// ranked package ids, one per base name.
func (g *NuGetGateway) FetchPopularPackageIDs(ctx context.Context, communityOnly bool, top int) ([]string, error) {
	g.logger.Infof("Fetching package statistics from %s (community only: %t)", g.statsURL, communityOnly)
	resp, err := get(ctx, g.httpClient, g.statsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics page: %w", err)
	}
	defer resp.Body.Close()

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics page: %w", err)
	}

	ranked, err := ParseRankedPackageIDs(page, communityOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statistics page: %w", err)
	}
	ids := domain.GroupByBaseName(ranked, top)
	g.logger.Debugf("Statistics page listed %d ids, %d kept after grouping", len(ranked), len(ids))
	return ids, nil
}

// ParseRankedPackageIDs extracts package ids, in rank order, from the
// statistics page table selected by communityOnly. The id is the trimmed
// text of the second cell of every data row.
func ParseRankedPackageIDs(page []byte, communityOnly bool) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	binding := allTableBinding
	if communityOnly {
		binding = communityTableBinding
	}
	table := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && attr(n, "data-bind") == binding
	})
	if table == nil {
		return nil, fmt.Errorf("%w: data-bind=%q", ErrStatsTableNotFound, binding)
	}

	rows := collectElements(table, atom.Tr)
	if len(rows) > 0 {
		rows = rows[1:] // header
	}

	var ids []string
	for _, row := range rows {
		cells := childElements(row, atom.Td)
		if len(cells) < 2 {
			continue
		}
		ids = append(ids, strings.TrimSpace(textContent(cells[1])))
	}
	if len(ids) == 0 {
		return nil, ErrNoPackageRows
	}
	return ids, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

// collectElements returns every descendant of n with the given tag, in
// document order.
func collectElements(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			out = append(out, c)
		}
		out = append(out, collectElements(c, tag)...)
	}
	return out
}

func childElements(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			out = append(out, c)
		}
	}
	return out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
