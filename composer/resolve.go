package composer

import "letrystudio/models"

// candidateNames lists each display name once, in wardrobe order.
func candidateNames(items []models.WardrobeItem) []string {
	seen := make(map[string]bool, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		names = append(names, item.Name)
	}
	return names
}

func preferredNames(items []models.WardrobeItem, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var names []string
	for _, item := range items {
		if wanted[item.ID] {
			names = append(names, item.Name)
		}
	}
	return names
}

// resolveSelection maps names to wardrobe items by exact match. A name shared
// by several items selects all of them in wardrobe order; unknown names are
// dropped.
func resolveSelection(items []models.WardrobeItem, selection []string) []models.WardrobeItem {
	taken := make(map[string]bool)
	var resolved []models.WardrobeItem
	for _, name := range selection {
		for _, item := range items {
			if item.Name != name || taken[item.ID] {
				continue
			}
			taken[item.ID] = true
			resolved = append(resolved, item)
		}
	}
	return resolved
}
