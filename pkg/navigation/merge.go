// Package navigation assembles the site header from the page-oriented and
// section-oriented navigation lists served by the content service.
package navigation

import "wedding-site/pkg/models"

// Merge combines the two lists. Page-list entries are seeded first, keyed by
// link id so several links to the same page stay distinct. A section-list
// entry is then matched by page id (preferring the entry with the same link
// id), then by link id, then by page slug; anything unmatched is kept as its
// own entry. Page-list entries without a page id are dropped, as they cannot
// be linked.
func Merge(pageNav, sectionNav []models.NavLink) []models.NavLink {
	merged := make([]models.NavLink, 0, len(pageNav)+len(sectionNav))
	byPage := make(map[int64][]int, len(pageNav))
	byLink := make(map[int64]int, len(pageNav))

	for _, item := range pageNav {
		id := item.PageID()
		if id == 0 {
			continue
		}
		if item.ID != 0 {
			if i, ok := byLink[item.ID]; ok {
				merged[i] = overlay(merged[i], item)
				continue
			}
		} else if idx := byPage[id]; len(idx) > 0 {
			// without a link id only the page identifies the entry
			merged[idx[0]] = overlay(merged[idx[0]], item)
			continue
		}
		i := len(merged)
		merged = append(merged, item)
		byPage[id] = append(byPage[id], i)
		if item.ID != 0 {
			byLink[item.ID] = i
		}
	}

	// entries already overlaid by a section-list item
	taken := make(map[int]bool, len(sectionNav))

	for _, item := range sectionNav {
		if id := item.PageID(); id != 0 {
			if i := pickSamePage(merged, byPage[id], item.ID, taken); i >= 0 {
				merged[i] = overlay(merged[i], item)
				taken[i] = true
				continue
			}
			i := len(merged)
			merged = append(merged, item)
			byPage[id] = append(byPage[id], i)
			taken[i] = true
			continue
		}

		if i := indexOf(merged, func(l models.NavLink) bool { return item.ID != 0 && l.ID == item.ID }); i >= 0 {
			merged[i] = overlay(merged[i], item)
			taken[i] = true
			continue
		}
		if slug := item.PageSlug(); slug != "" {
			if i := indexOf(merged, func(l models.NavLink) bool { return l.PageSlug() == slug }); i >= 0 {
				merged[i] = overlay(merged[i], item)
				taken[i] = true
				continue
			}
		}
		merged = append(merged, item)
	}

	return merged
}

// pickSamePage chooses among the entries pointing at the same page: the one
// with the same link id, else the first not yet matched. -1 when none fits.
func pickSamePage(merged []models.NavLink, candidates []int, linkID int64, taken map[int]bool) int {
	if linkID != 0 {
		for _, i := range candidates {
			if merged[i].ID == linkID {
				return i
			}
		}
	}
	for _, i := range candidates {
		if !taken[i] {
			return i
		}
	}
	return -1
}

func indexOf(links []models.NavLink, match func(models.NavLink) bool) int {
	for i, l := range links {
		if match(l) {
			return i
		}
	}
	return -1
}

// overlay copies the set fields of src over dst.
func overlay(dst, src models.NavLink) models.NavLink {
	if dst.ID == 0 {
		dst.ID = src.ID
	}
	if src.CustomLabel != "" {
		dst.CustomLabel = src.CustomLabel
	}
	// a slug-only page ref never replaces a resolved one
	if src.Page != nil && (dst.Page == nil || src.Page.ID != 0) {
		dst.Page = src.Page
	}
	if src.Section != nil {
		dst.Section = src.Section
	}
	return dst
}
