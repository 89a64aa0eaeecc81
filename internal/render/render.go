// Package render writes the changelog document set as reStructuredText:
// one page per release, a summary page, a products index table, and a
// toctree index, matching the layout of the published changelog site.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwittgen/changelog/internal/changelog"
)

// DefaultProductURL prefixes product names to link to their repositories.
const DefaultProductURL = "https://github.com/lsst/"

// DefaultTicketURL prefixes issue keys to link to the issue tracker.
const DefaultTicketURL = "https://jira.lsstcorp.org/browse/"

// productColumns is the number of columns in the products table.
const productColumns = 5

// Writer renders a changelog report into a directory of RST files.
type Writer struct {
	// Dir is the output directory; it is created if missing.
	Dir string
	// ProductURL overrides DefaultProductURL.
	ProductURL string
	// TicketURL overrides DefaultTicketURL.
	TicketURL string
}

func (w *Writer) productURL() string {
	if w.ProductURL == "" {
		return DefaultProductURL
	}
	return w.ProductURL
}

func (w *Writer) ticketURL() string {
	if w.TicketURL == "" {
		return DefaultTicketURL
	}
	return w.TicketURL
}

// Write renders the full document set for one report.
func (w *Writer) Write(rep *changelog.Report) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := w.writeProducts(rep.Products); err != nil {
		return err
	}

	var summary strings.Builder
	heading(&summary, "Summary", '-')
	for _, rel := range rep.Releases {
		var page strings.Builder
		w.release(&page, rel, '-')
		w.release(&summary, rel, '^')
		if err := w.writeFile(rel.Name+".rst", page.String()); err != nil {
			return err
		}
	}
	if err := w.writeFile("summary.rst", summary.String()); err != nil {
		return err
	}
	return w.writeIndex(rep)
}

// release appends one release section: heading, release date, the
// added/removed product table, and the cross-referenced ticket table.
func (w *Writer) release(b *strings.Builder, rel changelog.ReleaseView, level byte) {
	heading(b, rel.Name, level)
	fmt.Fprintf(b, "Released at %s\n\n", rel.Date.Format("2006-01-02 15:04"))

	if len(rel.Added) > 0 || len(rel.Removed) > 0 {
		rows := make([][]string, 0, max(len(rel.Added), len(rel.Removed)))
		for i := 0; i < max(len(rel.Added), len(rel.Removed)); i++ {
			row := []string{"", ""}
			if i < len(rel.Added) {
				row[0] = rel.Added[i]
			}
			if i < len(rel.Removed) {
				row[1] = rel.Removed[i]
			}
			rows = append(rows, row)
		}
		listTable(b, []string{"Added Product(s)", "Removed Product(s)"}, rows, "")
	} else if !rel.IsTail {
		b.WriteString("No products added/removed in this tag\n\n")
	}

	if len(rel.Tickets) == 0 {
		b.WriteString("No changes in this tag\n\n")
		return
	}
	rows := make([][]string, 0, len(rel.Tickets))
	for _, row := range rel.Tickets {
		key := changelog.IssueKey(row.Ticket)
		rows = append(rows, []string{
			fmt.Sprintf("`%s <%s%s>`_", key, w.ticketURL(), key),
			row.Summary,
			row.LastMerge.Format(time.RFC3339),
			strings.Join(row.Packages, ", "),
		})
	}
	listTable(b, []string{"Ticket", "Description", "Last Merge", "Product"}, rows, "datatable")
}

// writeProducts renders the products.rst page: every product as a
// repository link, laid out in a fixed number of table columns.
func (w *Writer) writeProducts(products []string) error {
	var b strings.Builder
	heading(&b, "Products", '-')

	var rows [][]string
	for i := 0; i < len(products); i += productColumns {
		row := make([]string, productColumns)
		for j := 0; j < productColumns; j++ {
			if i+j < len(products) {
				p := products[i+j]
				row[j] = fmt.Sprintf("`%s <%s%s>`_", p, w.productURL(), p)
			}
		}
		rows = append(rows, row)
	}
	header := make([]string, productColumns)
	header[0] = "Products"
	listTable(&b, header, rows, "")
	return w.writeFile("products.rst", b.String())
}

// writeIndex renders the toctree index in descending release order.
func (w *Writer) writeIndex(rep *changelog.Report) error {
	title := "Releases"
	if rep.Cadence.String() == "weekly" {
		title = "Weekly Releases"
	}
	var b strings.Builder
	heading(&b, title, '-')
	b.WriteString(".. toctree::\n")
	fmt.Fprintf(&b, "   :caption: %s\n", title)
	b.WriteString("   :maxdepth: 1\n")
	b.WriteString("   :hidden:\n\n")
	b.WriteString("   summary\n")
	b.WriteString("   products\n")
	for _, rel := range rep.Releases {
		fmt.Fprintf(&b, "   %s\n", rel.Name)
	}
	b.WriteString("\n")
	b.WriteString("- :doc:`summary`\n")
	b.WriteString("- :doc:`products`\n")
	for _, rel := range rep.Releases {
		fmt.Fprintf(&b, "- :doc:`%s`\n", rel.Name)
	}
	return w.writeFile("index.rst", b.String())
}

func (w *Writer) writeFile(name, content string) error {
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// heading writes an RST section heading underlined with the given character.
func heading(b *strings.Builder, text string, underline byte) {
	b.WriteString(text)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(string(underline), len(text)))
	b.WriteString("\n\n")
}

// listTable writes an RST list-table directive with one header row.
func listTable(b *strings.Builder, header []string, rows [][]string, class string) {
	b.WriteString(".. list-table::\n")
	if class != "" {
		fmt.Fprintf(b, "   :class: %s\n", class)
	}
	b.WriteString("   :header-rows: 1\n\n")
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == 0 {
				fmt.Fprintf(b, "   * - %s\n", cell)
			} else {
				fmt.Fprintf(b, "     - %s\n", cell)
			}
		}
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	b.WriteString("\n")
}
