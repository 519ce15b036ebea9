package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/services"
	"github.com/olekukonko/tablewriter"
)

const maxCell = 40

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// renderPage prints one page of links followed by a "Page x of y" footer.
func renderPage(w io.Writer, p services.Page, now time.Time) {
	if p.Total == 0 {
		fmt.Fprintln(w, "No links found.")
		return
	}

	table := newTable(w, "ID", "Topic", "Uploader", "Clicks", "Added", "URL")
	for _, l := range p.Items {
		table.Append([]string{
			l.ID,
			truncate(l.Topic(), maxCell),
			l.Uploader(),
			strconv.FormatInt(l.ClickCount, 10),
			models.RelativeTime(l.CreatedAt.Time, now),
			truncate(l.URL, maxCell),
		})
	}
	table.Render()
	fmt.Fprintf(w, "Page %d of %d (%d links)\n", p.Page, p.PageCount, p.Total)
}

// renderLink prints a single link with its description.
func renderLink(w io.Writer, l models.Link) {
	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"ID", l.ID},
		{"Topic", l.Topic()},
		{"URL", l.URL},
		{"Description", truncate(l.Description, 2*maxCell)},
		{"Uploader", l.Uploader()},
		{"Clicks", strconv.FormatInt(l.ClickCount, 10)},
		{"Added", models.FormatDate(l.CreatedAt.Time)},
	})
	table.Render()
}

func renderStats(w io.Writer, st services.Stats, mine bool) {
	table := newTable(w, "Metric", "Value")
	if mine {
		table.Append([]string{"Your links", strconv.Itoa(st.UserLinks)})
		table.Append([]string{"Clicks on your links", strconv.FormatInt(st.UserClicks, 10)})
	}
	table.Append([]string{"All links", strconv.Itoa(st.TotalLinks)})
	table.Append([]string{"All clicks", strconv.FormatInt(st.TotalClicks, 10)})
	table.Render()

	if len(st.Top) == 0 {
		return
	}
	fmt.Fprintln(w, "Most clicked:")
	top := newTable(w, "#", "Topic", "Uploader", "Clicks")
	for i, l := range st.Top {
		top.Append([]string{strconv.Itoa(i + 1), truncate(l.Topic(), maxCell), l.Uploader(), strconv.FormatInt(l.ClickCount, 10)})
	}
	top.Render()
}
