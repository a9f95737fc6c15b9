package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Record is one item of a collection as returned by the server.
type Record map[string]any

// listBody accepts a paginated {"results": [...]} object or a bare array.
type listBody json.RawMessage

func (l *listBody) UnmarshalJSON(b []byte) error {
	*l = append((*l)[:0], b...)
	return nil
}

func (l listBody) decode(out any) error {
	trimmed := bytes.TrimSpace(l)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.Unmarshal([]byte("[]"), out)
	}
	if trimmed[0] == '{' {
		var page struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return err
		}
		if len(page.Results) == 0 {
			return json.Unmarshal([]byte("[]"), out)
		}
		trimmed = page.Results
	}
	return json.Unmarshal(trimmed, out)
}

// DecodeList decodes a list response body into records.
func DecodeList(body []byte) ([]Record, error) {
	var out []Record
	if err := listBody(body).decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Resource is a REST collection rooted at base, for example "/events/".
type Resource struct {
	c    Doer
	base string
}

func NewResource(c Doer, base string) *Resource {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Resource{c: c, base: base}
}

func (r *Resource) Path() string {
	return r.base
}

func (r *Resource) item(id int) string {
	return fmt.Sprintf("%s%d/", r.base, id)
}

func (r *Resource) List(ctx context.Context, query url.Values) ([]Record, error) {
	var raw listBody
	if err := r.c.Do(ctx, http.MethodGet, r.base, query, nil, &raw); err != nil {
		return nil, err
	}
	var out []Record
	if err := raw.decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", r.base, err)
	}
	return out, nil
}

func (r *Resource) Get(ctx context.Context, id int) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.c.Do(ctx, http.MethodGet, r.item(id), nil, nil, &out)
	return out, err
}

func (r *Resource) Create(ctx context.Context, body any) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.c.Do(ctx, http.MethodPost, r.base, nil, body, &out)
	return out, err
}

func (r *Resource) Update(ctx context.Context, id int, body any) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.c.Do(ctx, http.MethodPut, r.item(id), nil, body, &out)
	return out, err
}

func (r *Resource) Delete(ctx context.Context, id int) error {
	return r.c.Do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

// Action posts to a detail route such as /visitors/12/check_in/.
func (r *Resource) Action(ctx context.Context, id int, name string, body any) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.c.Do(ctx, http.MethodPost, r.item(id)+strings.Trim(name, "/")+"/", nil, body, &out)
	return out, err
}

// View gets a list route such as /alerts/active/ or /complaints/stats/.
func (r *Resource) View(ctx context.Context, name string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.c.Do(ctx, http.MethodGet, r.base+strings.Trim(name, "/")+"/", query, nil, &out)
	return out, err
}

// Page names as used in settings and on the command line.
const (
	PageSocieties  = "societies"
	PageFlats      = "flats"
	PageBlocks     = "blocks"
	PageNotices    = "notices"
	PageVisitors   = "visitors"
	PageComplaints = "complaints"
	PageBills      = "bills"
	PagePayments   = "payments"
	PageEvents     = "events"
	PageAlerts     = "alerts"
)

var pagePaths = map[string]string{
	PageSocieties:  "/society/societies/",
	PageFlats:      "/society/flats/",
	PageBlocks:     "/society/blocks/",
	PageNotices:    "/notices/",
	PageVisitors:   "/visitors/",
	PageComplaints: "/complaints/",
	PageBills:      "/billing/bills/",
	PagePayments:   "/billing/payments/",
	PageEvents:     "/events/",
	PageAlerts:     "/alerts/",
}

// Resources holds one Resource per page.
type Resources struct {
	byPage map[string]*Resource
}

func NewResources(c Doer) *Resources {
	r := &Resources{byPage: make(map[string]*Resource, len(pagePaths))}
	for page, path := range pagePaths {
		r.byPage[page] = NewResource(c, path)
	}
	return r
}

func (r *Resources) Page(name string) (*Resource, bool) {
	res, ok := r.byPage[name]
	return res, ok
}

// Pages returns the known page names in sorted order.
func (r *Resources) Pages() []string {
	out := make([]string, 0, len(r.byPage))
	for k := range r.byPage {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
