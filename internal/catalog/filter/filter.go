package filter

import (
	"sort"
	"strings"

	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevant"
	SortPriceAsc  SortOrder = "low-high"
	SortPriceDesc SortOrder = "high-low"
	SortNameAsc   SortOrder = "a-z"
)

const DefaultPageSize = 20

// Criteria describes one storefront catalog query. Zero values mean "no
// constraint": an empty search matches everything, an empty category or
// brand set selects every category or brand, MaxPrice 0 disables the price
// ceiling.
type Criteria struct {
	Search     string
	MinPrice   float64
	MaxPrice   float64
	Categories []string
	Brands     []string
	Sort       SortOrder
	Page       int
	PageSize   int
}

// Page is one slice of the filtered, sorted result set.
type Page struct {
	Items      []domain.Product `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// Apply runs the full pipeline: filter, sort, paginate. The input slice is
// never mutated; sorting is stable so ties keep their fetch order
// ("relevance").
func Apply(products []domain.Product, c Criteria) Page {
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, c) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, c.Sort)

	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := c.Page
	if page < 1 {
		page = 1
	}

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:      filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Matches reports whether a product passes every active facet. Facets are
// AND-ed together; membership within the category and brand sets is OR-ed.
func Matches(p domain.Product, c Criteria) bool {
	if c.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(c.Search)) {
		return false
	}
	if p.Price < c.MinPrice {
		return false
	}
	if c.MaxPrice > 0 && p.Price > c.MaxPrice {
		return false
	}
	if len(c.Categories) > 0 && !contains(c.Categories, p.Category) {
		return false
	}
	if len(c.Brands) > 0 && !contains(c.Brands, p.Brand) {
		return false
	}
	return true
}

func sortProducts(products []domain.Product, order SortOrder) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Name < products[j].Name
		})
	default:
		// relevance keeps fetch order
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
