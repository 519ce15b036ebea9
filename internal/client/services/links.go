package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/linksphere/internal/client/client"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/validation"
	"github.com/dmitrijs2005/linksphere/internal/logging"
	"github.com/pkg/browser"
)

type SortField string

const (
	SortNone     SortField = ""
	SortDate     SortField = "date"
	SortTopic    SortField = "topic"
	SortUploader SortField = "uploader"
	SortURL      SortField = "url"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type FilterKind string

const (
	FilterTopic    FilterKind = "topic"
	FilterUploader FilterKind = "uploader"
)

func ParseSort(field, direction string) (SortField, SortDirection, error) {
	f := SortField(strings.ToLower(field))
	switch f {
	case SortDate, SortTopic, SortUploader, SortURL:
	default:
		return "", "", fmt.Errorf("unknown sort field %q (want date, topic, uploader or url)", field)
	}

	d := SortDirection(strings.ToLower(direction))
	switch d {
	case "":
		d = SortAsc
	case SortAsc, SortDesc:
	default:
		return "", "", fmt.Errorf("unknown sort direction %q (want asc or desc)", direction)
	}
	return f, d, nil
}

func ParseFilterKind(s string) (FilterKind, error) {
	switch k := FilterKind(strings.ToLower(s)); k {
	case FilterTopic, FilterUploader:
		return k, nil
	}
	return "", fmt.Errorf("unknown filter %q (want topic or uploader)", s)
}

// Opener shows a URL to the user.
type Opener interface {
	Open(url string) error
}

// BrowserOpener opens URLs in the system browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

// SessionHandle is what the link view needs from the session.
type SessionHandle interface {
	Token() string
	HandleUnauthorized(ctx context.Context, token string)
}

// Page is one page of the current view. Page is 1-indexed; with no items
// it is page 1 of 0.
type Page struct {
	Items     []models.Link
	Page      int
	PageCount int
	PageSize  int
	Total     int
}

// Stats backs the dashboard and admin screens.
type Stats struct {
	TotalLinks  int
	TotalClicks int64
	UserLinks   int
	UserClicks  int64
	Top         []models.Link
}

// LinkService is the link list view-model used by the REPL.
type LinkService interface {
	Refresh(ctx context.Context) error
	Links() []models.Link
	Search(text string)
	SetSort(field SortField, dir SortDirection)
	SetFilter(kind FilterKind, value string)
	ClearFilters()
	Query() ViewQuery
	Page(page int) Page
	Paginate(pageSize, page int) Page
	Delete(ctx context.Context, id string) error
	RecordClick(ctx context.Context, id string) error
	Create(ctx context.Context, link models.NewLink) (*models.Link, error)
	Stats(user models.User, topN int) Stats
}

// ViewQuery is the current search, filter and sort state.
type ViewQuery struct {
	Search    string
	Topic     string
	Uploader  string
	SortField SortField
	SortDir   SortDirection
}

// LinkView caches the server's links and derives the visible list from it.
// The cache is only replaced by Refresh or edited after a successful remote
// call; search, filter and sort never touch it.
type LinkView struct {
	client          client.Client
	session         SessionHandle
	opener          Opener
	logger          logging.Logger
	defaultPageSize int

	mu    sync.Mutex
	cache []models.Link
	query ViewQuery
}

func NewLinkView(c client.Client, session SessionHandle, opener Opener, logger logging.Logger, defaultPageSize int) *LinkView {
	if opener == nil {
		opener = BrowserOpener{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &LinkView{
		client:          c,
		session:         session,
		opener:          opener,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		query:           ViewQuery{SortField: SortDate, SortDir: SortDesc},
	}
}

func (v *LinkView) token() (string, error) {
	t := v.session.Token()
	if t == "" {
		return "", ErrNotAuthenticated
	}
	return t, nil
}

// forward hands a refused token to the session. token is the one the request
// was sent with, so a late refusal cannot end a newer session.
func (v *LinkView) forward(ctx context.Context, token string, err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		v.session.HandleUnauthorized(ctx, token)
	}
}

// Refresh replaces the cache with the server's list. On failure the cache is
// left as it was.
func (v *LinkView) Refresh(ctx context.Context) error {
	token, err := v.token()
	if err != nil {
		return err
	}

	links, err := v.client.ListLinks(ctx, token)
	if err != nil {
		v.forward(ctx, token, err)
		return err
	}

	v.mu.Lock()
	v.cache = links
	v.mu.Unlock()
	v.logger.Debug(ctx, "links refreshed", "count", len(links))
	return nil
}

// Links returns the visible list: cache order, narrowed by search and
// filters, then sorted.
func (v *LinkView) Links() []models.Link {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked()
}

func (v *LinkView) visibleLocked() []models.Link {
	q := v.query
	out := make([]models.Link, 0, len(v.cache))
	for _, l := range v.cache {
		if q.Search != "" && !containsFold(l.Title, q.Search) && !containsFold(l.Description, q.Search) {
			continue
		}
		if q.Topic != "" && !containsFold(l.Topic(), q.Topic) {
			continue
		}
		if q.Uploader != "" && !containsFold(l.Uploader(), q.Uploader) {
			continue
		}
		out = append(out, l)
	}

	if q.SortField != SortNone {
		cmpFn := comparator(q.SortField)
		if q.SortDir == SortDesc {
			slices.SortStableFunc(out, func(a, b models.Link) int { return cmpFn(b, a) })
		} else {
			slices.SortStableFunc(out, cmpFn)
		}
	}
	return out
}

func comparator(f SortField) func(a, b models.Link) int {
	switch f {
	case SortDate:
		return func(a, b models.Link) int { return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano()) }
	case SortTopic:
		return func(a, b models.Link) int { return strings.Compare(a.Topic(), b.Topic()) }
	case SortUploader:
		return func(a, b models.Link) int { return strings.Compare(a.Uploader(), b.Uploader()) }
	default:
		return func(a, b models.Link) int { return strings.Compare(a.URL, b.URL) }
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Search narrows the view to links whose title or description contains
// text. Empty text clears the search.
func (v *LinkView) Search(text string) {
	v.mu.Lock()
	v.query.Search = strings.TrimSpace(text)
	v.mu.Unlock()
}

func (v *LinkView) SetSort(field SortField, dir SortDirection) {
	v.mu.Lock()
	v.query.SortField = field
	v.query.SortDir = dir
	v.mu.Unlock()
}

// SetFilter sets one filter; an empty value clears it.
func (v *LinkView) SetFilter(kind FilterKind, value string) {
	value = strings.TrimSpace(value)
	v.mu.Lock()
	defer v.mu.Unlock()
	switch kind {
	case FilterTopic:
		v.query.Topic = value
	case FilterUploader:
		v.query.Uploader = value
	}
}

func (v *LinkView) ClearFilters() {
	v.mu.Lock()
	v.query.Topic = ""
	v.query.Uploader = ""
	v.mu.Unlock()
}

func (v *LinkView) Query() ViewQuery {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

func (v *LinkView) Page(page int) Page {
	return v.Paginate(v.defaultPageSize, page)
}

// Paginate slices the visible list. Out-of-range pages are clamped.
func (v *LinkView) Paginate(pageSize, page int) Page {
	if pageSize <= 0 {
		pageSize = v.defaultPageSize
	}
	return paginate(v.Links(), pageSize, page)
}

func paginate(items []models.Link, pageSize, page int) Page {
	n := len(items)
	count := (n + pageSize - 1) / pageSize
	page = max(1, min(page, count))

	start := min((page-1)*pageSize, n)
	end := min(start+pageSize, n)
	return Page{
		Items:     items[start:end],
		Page:      page,
		PageCount: count,
		PageSize:  pageSize,
		Total:     n,
	}
}

// Delete removes the link on the server first and from the cache only after
// the server agreed.
func (v *LinkView) Delete(ctx context.Context, id string) error {
	token, err := v.token()
	if err != nil {
		return err
	}

	if err := v.client.DeleteLink(ctx, token, id); err != nil {
		v.forward(ctx, token, err)
		return err
	}

	v.mu.Lock()
	v.cache = slices.DeleteFunc(v.cache, func(l models.Link) bool { return l.ID == id })
	v.mu.Unlock()
	return nil
}

// RecordClick counts a visit and opens the link. The count is best effort:
// the URL is opened even when the server call fails.
func (v *LinkView) RecordClick(ctx context.Context, id string) error {
	v.mu.Lock()
	i := slices.IndexFunc(v.cache, func(l models.Link) bool { return l.ID == id })
	if i < 0 {
		v.mu.Unlock()
		return ErrLinkNotFound
	}
	url := v.cache[i].URL
	v.mu.Unlock()

	if token, err := v.token(); err != nil {
		v.logger.Warn(ctx, "click not recorded", "link_id", id, "error", err)
	} else if err := v.client.IncrementClick(ctx, token, id); err != nil {
		v.forward(ctx, token, err)
		v.logger.Warn(ctx, "click not recorded", "link_id", id, "error", err)
	} else {
		v.mu.Lock()
		if i := slices.IndexFunc(v.cache, func(l models.Link) bool { return l.ID == id }); i >= 0 {
			v.cache[i].ClickCount++
		}
		v.mu.Unlock()
	}

	if err := v.opener.Open(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// Create shares a new link and appends it to the cache.
func (v *LinkView) Create(ctx context.Context, link models.NewLink) (*models.Link, error) {
	link.URL = strings.TrimSpace(link.URL)
	link.Title = strings.TrimSpace(link.Title)
	link.Description = strings.TrimSpace(link.Description)
	if err := validation.Struct(link); err != nil {
		return nil, err
	}

	token, err := v.token()
	if err != nil {
		return nil, err
	}

	created, err := v.client.CreateLink(ctx, token, link)
	if err != nil {
		v.forward(ctx, token, err)
		return nil, err
	}

	v.mu.Lock()
	v.cache = append(v.cache, *created)
	v.mu.Unlock()
	return created, nil
}

// Stats summarises the cache for the dashboard. Links count as the user's
// when either the id or the username matches.
func (v *LinkView) Stats(user models.User, topN int) Stats {
	v.mu.Lock()
	links := slices.Clone(v.cache)
	v.mu.Unlock()

	var st Stats
	for _, l := range links {
		st.TotalLinks++
		st.TotalClicks += l.ClickCount
		if (user.ID != "" && l.UserID == user.ID) || (user.Username != "" && l.User.Username == user.Username) {
			st.UserLinks++
			st.UserClicks += l.ClickCount
		}
	}

	slices.SortStableFunc(links, func(a, b models.Link) int { return cmp.Compare(b.ClickCount, a.ClickCount) })
	st.Top = links[:min(max(topN, 0), len(links))]
	return st
}
