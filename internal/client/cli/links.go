package cli

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/services"
)

func (a *App) showPage(n int) {
	renderPage(a.out, a.linkService.Page(n), a.now())
}

// List reloads the links from the server and shows the first page. Search,
// filters and sort are kept.
func (a *App) List(ctx context.Context, _ []string) error {
	if err := a.linkService.Refresh(ctx); err != nil {
		return err
	}
	a.describeQuery()
	a.showPage(1)
	return nil
}

func (a *App) describeQuery() {
	q := a.linkService.Query()
	var parts []string
	if q.Search != "" {
		parts = append(parts, "search "+strconv.Quote(q.Search))
	}
	if q.Topic != "" {
		parts = append(parts, "topic ~ "+strconv.Quote(q.Topic))
	}
	if q.Uploader != "" {
		parts = append(parts, "uploader ~ "+strconv.Quote(q.Uploader))
	}
	if q.SortField != services.SortNone {
		parts = append(parts, "sorted by "+string(q.SortField)+" "+string(q.SortDir))
	}
	if len(parts) > 0 {
		a.println(a.style().muted.Render("(" + strings.Join(parts, ", ") + ")"))
	}
}

func (a *App) Search(_ context.Context, args []string) error {
	a.linkService.Search(strings.Join(args, " "))
	a.describeQuery()
	a.showPage(1)
	return nil
}

func (a *App) Sort(_ context.Context, args []string) error {
	const help = "sort <date|topic|uploader|url> [asc|desc] | sort off"
	if len(args) == 0 || len(args) > 2 {
		return usage(help)
	}
	if args[0] == "off" {
		a.linkService.SetSort(services.SortNone, services.SortAsc)
	} else {
		dir := ""
		if len(args) == 2 {
			dir = args[1]
		}
		field, direction, err := services.ParseSort(args[0], dir)
		if err != nil {
			return err
		}
		a.linkService.SetSort(field, direction)
	}
	a.describeQuery()
	a.showPage(1)
	return nil
}

func (a *App) Filter(_ context.Context, args []string) error {
	const help = "filter <topic|uploader> <text> | filter clear"
	switch {
	case len(args) == 1 && args[0] == "clear":
		a.linkService.ClearFilters()
	case len(args) >= 1:
		kind, err := services.ParseFilterKind(args[0])
		if err != nil {
			return err
		}
		a.linkService.SetFilter(kind, strings.Join(args[1:], " "))
	default:
		return usage(help)
	}
	a.describeQuery()
	a.showPage(1)
	return nil
}

func (a *App) Page(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("page <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("page <n>")
	}
	a.showPage(n)
	return nil
}

func (a *App) findLink(id string) (models.Link, bool) {
	links := a.linkService.Links()
	i := slices.IndexFunc(links, func(l models.Link) bool { return l.ID == id })
	if i < 0 {
		return models.Link{}, false
	}
	return links[i], true
}

func (a *App) Show(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	l, ok := a.findLink(args[0])
	if !ok {
		return services.ErrLinkNotFound
	}
	renderLink(a.out, l)
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("open <id>")
	}
	if err := a.linkService.RecordClick(ctx, args[0]); err != nil {
		return err
	}
	a.println("Opened in your browser.")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	id := args[0]
	if l, ok := a.findLink(id); ok {
		a.println("Deleting " + strconv.Quote(l.Topic()) + " (" + l.URL + ")")
	}
	if !confirm(a.reader, "Are you sure?", a.out) {
		a.println("Cancelled.")
		return nil
	}
	if err := a.linkService.Delete(ctx, id); err != nil {
		return err
	}
	a.success("Link deleted.")
	return nil
}

func (a *App) Upload(ctx context.Context, _ []string) error {
	url, err := getSimpleText(a.reader, "Link URL (http:// or https://)", a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description (at least 10 characters)", a.out)
	if err != nil {
		return err
	}

	link, err := a.linkService.Create(ctx, models.NewLink{URL: url, Title: title, Description: description})
	if err != nil {
		return err
	}
	a.success("Link shared! (id " + link.ID + ")")
	return nil
}
