package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/settings"
)

// FilterAll is the selection meaning "no filter". It is stored as null.
const FilterAll = "all"

// PageResult is one rendered page of a collection.
type PageResult struct {
	Page    string
	Records []api.Record
	// Matched is the number of records left after the search term, before
	// truncation to PageSize.
	Matched  int
	PageSize int
	Search   string
	Sort     *models.SortPref
	Query    url.Values
}

type PageService interface {
	List(ctx context.Context, page string) (*PageResult, error)
	SetFilter(ctx context.Context, page, key, value string) error
	Pages() []string
}

type pageService struct {
	resources *api.Resources
	settings  *settings.Store
}

func NewPageService(resources *api.Resources, store *settings.Store) PageService {
	return &pageService{resources: resources, settings: store}
}

func (p *pageService) Pages() []string {
	return p.resources.Pages()
}

// SetFilter persists a filter selection. "all" and "" clear the filter.
func (p *pageService) SetFilter(ctx context.Context, page, key, value string) error {
	if _, ok := p.resources.Page(page); !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if value == FilterAll || value == "" {
		return p.settings.SetFilter(ctx, page, key, nil)
	}
	return p.settings.SetFilter(ctx, page, key, value)
}

// List fetches page with its saved filters as query parameters, then
// applies the saved search term and sort order locally and cuts the result
// to the saved page size.
func (p *pageService) List(ctx context.Context, page string) (*PageResult, error) {
	res, ok := p.resources.Page(page)
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}

	query := url.Values{}
	for k, v := range p.settings.Filters(page) {
		if v == nil {
			continue
		}
		query.Set(k, fmt.Sprint(v))
	}

	records, err := res.List(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &PageResult{
		Page:     page,
		PageSize: p.settings.GetPageSize(),
		Search:   p.settings.GetSearchTerm(page),
		Query:    query,
	}

	records = Search(records, result.Search)
	if pref, ok := p.settings.GetSort(page); ok && pref.Field != "" {
		SortRecords(records, pref)
		result.Sort = &pref
	}

	result.Matched = len(records)
	if result.PageSize > 0 && len(records) > result.PageSize {
		records = records[:result.PageSize]
	}
	result.Records = records
	return result, nil
}

// Search keeps the records with a string value containing term, ignoring
// case. Nested objects and arrays are searched too. An empty term keeps
// everything.
func Search(records []api.Record, term string) []api.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}

	out := make([]api.Record, 0, len(records))
	for _, r := range records {
		if containsString(map[string]any(r), term) {
			out = append(out, r)
		}
	}
	return out
}

func containsString(v any, term string) bool {
	switch x := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(x), term)
	case map[string]any:
		for _, e := range x {
			if containsString(e, term) {
				return true
			}
		}
	case []any:
		for _, e := range x {
			if containsString(e, term) {
				return true
			}
		}
	}
	return false
}

// SortRecords orders records in place by pref.Field. Numbers compare
// numerically, strings case-insensitively; records missing the field go
// last in either direction.
func SortRecords(records []api.Record, pref models.SortPref) {
	desc := pref.Direction == models.SortDesc

	sort.SliceStable(records, func(i, j int) bool {
		a, aok := records[i][pref.Field]
		b, bok := records[j][pref.Field]
		aok = aok && a != nil
		bok = bok && b != nil

		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}

		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	as := strings.ToLower(fmt.Sprint(a))
	bs := strings.ToLower(fmt.Sprint(b))
	return strings.Compare(as, bs)
}
