package entity

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// AllLocations is the location choice that disables the location filter
const AllLocations = "Toàn Quốc"

// DefaultPerPage is the directory page size
const DefaultPerPage = 9

// Company is a directory entry. Salaries are in millions of VND per month.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Logo            string    `json:"logo,omitempty"`
	Description     string    `json:"description"`
	Industries      []string  `json:"industry"`
	Location        string    `json:"location"`
	Size            string    `json:"size"`
	BusinessType    string    `json:"businessType"`
	EmploymentTypes []string  `json:"employmentType"`
	Tags            []string  `json:"tags"`
	Rating          float64   `json:"rating"`
	SalaryMin       int       `json:"salaryMin"`
	SalaryMax       int       `json:"salaryMax"`
	Views           int       `json:"views"`
	FoundedAt       time.Time `json:"foundedDate"`
}

// AverageSalary is the midpoint of the salary range
func (c Company) AverageSalary() float64 {
	return float64(c.SalaryMin+c.SalaryMax) / 2
}

// DirectoryFilter narrows the company directory. Empty fields match everything.
type DirectoryFilter struct {
	Search          string
	Locations       []string
	Sizes           []string
	BusinessTypes   []string
	EmploymentTypes []string
	Tags            []string
	MinRating       float64
	SalaryMin       float64
	SalaryMax       float64 // 0 means no upper bound
}

// Match reports whether c passes every criterion of f
func (f DirectoryFilter) Match(c Company) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" && !matchesSearch(c, q) {
		return false
	}
	if len(f.Locations) > 0 && !slices.Contains(f.Locations, AllLocations) && !slices.Contains(f.Locations, c.Location) {
		return false
	}
	if len(f.Sizes) > 0 && !slices.Contains(f.Sizes, c.Size) {
		return false
	}
	if len(f.BusinessTypes) > 0 && !slices.Contains(f.BusinessTypes, c.BusinessType) {
		return false
	}
	if len(f.EmploymentTypes) > 0 && !anyOf(f.EmploymentTypes, c.EmploymentTypes) {
		return false
	}
	if len(f.Tags) > 0 && !anyOf(f.Tags, c.Tags) {
		return false
	}
	if f.MinRating > 0 && c.Rating < f.MinRating {
		return false
	}

	avg := c.AverageSalary()
	if avg < f.SalaryMin {
		return false
	}
	if f.SalaryMax > 0 && avg > f.SalaryMax {
		return false
	}
	return true
}

func matchesSearch(c Company, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Description), q) {
		return true
	}
	for _, ind := range c.Industries {
		if strings.Contains(strings.ToLower(ind), q) {
			return true
		}
	}
	return false
}

func anyOf(wanted, have []string) bool {
	for _, w := range wanted {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// Apply returns the companies matching f in their original order
func (f DirectoryFilter) Apply(list []Company) []Company {
	out := make([]Company, 0, len(list))
	for _, c := range list {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// SortOrder selects how the directory is ordered
type SortOrder string

const (
	SortTrending SortOrder = "trending"
	SortRating   SortOrder = "rating"
	SortSalary   SortOrder = "salary"
	SortNewest   SortOrder = "newest"
)

// ErrUnknownSort is returned for a sort order outside the known set
var ErrUnknownSort = errors.New("unknown company sort")

// ParseSortOrder maps a query value to a SortOrder; empty means trending
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortTrending, nil
	case SortTrending, SortRating, SortSalary, SortNewest:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
}

// SortCompanies orders list in place, best first. Ties keep their order.
func SortCompanies(list []Company, order SortOrder) {
	slices.SortStableFunc(list, func(a, b Company) int {
		switch order {
		case SortRating:
			return compareDesc(a.Rating, b.Rating)
		case SortSalary:
			return compareDesc(a.AverageSalary(), b.AverageSalary())
		case SortNewest:
			return b.FoundedAt.Compare(a.FoundedAt)
		default:
			return b.Views - a.Views
		}
	})
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// Pagination describes one page of the directory
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of the directory
type Page struct {
	Companies  []Company  `json:"companies"`
	Pagination Pagination `json:"pagination"`
}

// Paginate cuts page (1-based) out of list. Pages past the end are empty.
func Paginate(list []Company, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(list)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	items := make([]Company, end-start)
	copy(items, list[start:end])

	return Page{
		Companies: items,
		Pagination: Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: (total + perPage - 1) / perPage,
		},
	}
}

// ErrCompanyNotFound is returned when a company id does not exist
var ErrCompanyNotFound = errors.New("company not found")
