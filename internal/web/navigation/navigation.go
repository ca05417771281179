// Package navigation carries per-page navigation state for the templates:
// which navbar entry is active and the breadcrumb trail.
package navigation

// BreadcrumbItem is one link in the breadcrumb trail. The last item is
// rendered active and unlinked.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context is handed to the base layout by every handler that renders a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// NewContext builds a navigation context for a page.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb appends one breadcrumb and returns the context for chaining.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive reports whether section and page both match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive reports whether the given navbar section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
