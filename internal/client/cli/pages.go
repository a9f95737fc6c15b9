package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/client/services"
	"github.com/dmitrijs2005/societyhub/internal/client/session"
	"github.com/dmitrijs2005/societyhub/internal/common"
)

var errUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

// requireLogin applies the resident-area guard used by every page command.
func (a *App) requireLogin(ctx context.Context) error {
	if d, _ := a.session.Guard(ctx, session.AreaResident); !d.Allowed {
		return common.ErrNotLoggedIn
	}
	return nil
}

func (a *App) Pages(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	for _, p := range a.pages.Pages() {
		fmt.Fprintln(a.out, p)
	}
	return nil
}

// List fetches a page with its saved state applied and prints it as a table.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("list <page>")
	}
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	page := args[0]

	res, err := a.pages.List(ctx, page)
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%s: showing %d of %d", page, len(res.Records), res.Matched)
	if res.Search != "" {
		summary += fmt.Sprintf(", search %q", res.Search)
	}
	if pending, ok := a.settings.PendingSearchTerm(page); ok {
		summary += fmt.Sprintf(", search %q pending", pending)
	}
	if len(res.Query) > 0 {
		summary += ", filters " + res.Query.Encode()
	}
	if res.Sort != nil {
		summary += fmt.Sprintf(", sorted by %s %s", res.Sort.Field, res.Sort.Direction)
	}
	if secs := a.settings.GetAutoRefresh(page); secs > 0 {
		summary += fmt.Sprintf(", auto-refresh %ds", secs)
	}
	fmt.Fprintln(a.out, summary)

	cols, _ := a.settings.GetColumns(page)
	return renderRecords(a.out, res.Records, cols)
}

// Filter shows the filters of a page, or sets one. "all" clears it.
func (a *App) Filter(ctx context.Context, args []string) error {
	switch len(args) {
	case 1:
		filters := a.settings.Filters(args[0])
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := filters[k]
			if v == nil {
				v = services.FilterAll
			}
			fmt.Fprintf(a.out, "%s = %v\n", k, v)
		}
		return nil
	case 3:
		return a.pages.SetFilter(ctx, args[0], args[1], args[2])
	}
	return usage("filter <page> [key value|all]")
}

// Search sets the search term of a page after the debounce delay. Without
// a term the search is cleared.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("search <page> [term]")
	}
	page, term := args[0], strings.Join(args[1:], " ")
	a.settings.SetSearchTermAfter(ctx, page, term, a.debounce)
	return nil
}

func (a *App) Sort(ctx context.Context, args []string) error {
	switch len(args) {
	case 1:
		if pref, ok := a.settings.GetSort(args[0]); ok {
			fmt.Fprintf(a.out, "%s %s\n", pref.Field, pref.Direction)
		} else {
			fmt.Fprintln(a.out, "unsorted")
		}
		return nil
	case 2, 3:
		dir := models.SortAsc
		if len(args) == 3 {
			dir = models.SortDirection(strings.ToLower(args[2]))
		}
		return a.settings.SetSort(ctx, args[0], args[1], dir)
	}
	return usage("sort <page> [field asc|desc]")
}

// Columns shows or sets the visible columns of a page, in display order.
func (a *App) Columns(ctx context.Context, args []string) error {
	switch len(args) {
	case 1:
		cols, ok := a.settings.GetColumns(args[0])
		if !ok {
			fmt.Fprintln(a.out, "all columns")
			return nil
		}
		fmt.Fprintln(a.out, strings.Join(columnOrder(cols), ","))
		return nil
	case 2:
		var cols []string
		for _, c := range strings.Split(args[1], ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		a.settings.SetColumns(ctx, args[0], cols, cols)
		return nil
	}
	return usage("columns <page> [a,b,c]")
}

func (a *App) PageSize(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintln(a.out, a.settings.GetPageSize())
		return nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return usage("pagesize [n]")
		}
		if n < models.MinPageSize || n > models.MaxPageSize {
			return fmt.Errorf("page size must be between %d and %d", models.MinPageSize, models.MaxPageSize)
		}
		return a.settings.SetPageSize(ctx, n)
	}
	return usage("pagesize [n]")
}

// AutoRefresh shows or sets the auto-refresh interval of a page in seconds.
func (a *App) AutoRefresh(ctx context.Context, args []string) error {
	switch len(args) {
	case 1:
		fmt.Fprintln(a.out, a.settings.GetAutoRefresh(args[0]))
		return nil
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usage("refresh <page> [seconds]")
		}
		return a.settings.SetAutoRefresh(ctx, args[0], n)
	}
	return usage("refresh <page> [seconds]")
}

// Reset restores all settings, or only the per-page state of one page.
func (a *App) Reset(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		a.settings.ResetSettings(ctx)
		fmt.Fprintln(a.out, "Settings reset")
		return nil
	case 1:
		if args[0] == "--all" {
			return a.resetAll(ctx)
		}
		a.settings.ResetPageSettings(ctx, args[0])
		fmt.Fprintf(a.out, "Settings for %s reset\n", args[0])
		return nil
	}
	return usage("reset [page|--all]")
}

// resetAll drops settings and the session together, leaving the client as
// on first start.
func (a *App) resetAll(ctx context.Context) error {
	if a.storage == nil {
		return errors.New("local storage is not available")
	}
	a.settings.ResetSettings(ctx)
	kv.ClearApp(ctx, a.storage, a.log)
	fmt.Fprintln(a.out, "All local data cleared, you are logged out")
	return nil
}
