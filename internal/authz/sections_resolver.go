package authz

// RoleSectionOverrides maps roles to administrator-configured section
// lists. An entry replaces the hard-coded default list for every principal
// with that role; it never affects a principal-level override.
type RoleSectionOverrides map[Role][]SectionID

// ResolveSections computes the ordered navigation sections visible to the
// principal. Precedence, first match wins:
//
//  1. A non-empty principal-level override is returned verbatim. It is
//     absolute and is not intersected with role or permission lists.
//  2. Role sections come from the administrator override for the role when
//     present, otherwise from the hard-coded defaults.
//  3. A non-empty permission allow-list narrows the role sections. It can
//     never grant a section the role does not carry; entries outside the
//     role set are silently dropped.
//  4. Otherwise a non-empty permission deny-list subtracts from the role
//     sections.
//  5. Otherwise the role sections pass through unchanged.
func ResolveSections(p Principal, perms EffectivePermissions, overrides RoleSectionOverrides) []SectionID {
	p = p.Normalized()

	if len(p.SectionOverride) > 0 {
		return cloneSections(p.SectionOverride)
	}

	roleSections := DefaultSections(p.Role)
	if override, ok := overrides[p.Role]; ok && len(override) > 0 {
		roleSections = cloneSections(override)
	}

	if len(perms.VisibleSections) > 0 {
		return intersectSections(roleSections, perms.VisibleSections)
	}
	if len(perms.HiddenSections) > 0 {
		return subtractSections(roleSections, perms.HiddenSections)
	}
	return roleSections
}

// SectionVisible reports whether the section is in the resolved list.
func SectionVisible(sections []SectionID, id SectionID) bool {
	for _, s := range sections {
		if s == id {
			return true
		}
	}
	return false
}

// LeaderboardHidden derives the leaderboard suppression flag from the
// resolved section list. This is the only source of truth for it; any
// stored suppression flag is ignored so the navigation and the flag can
// never disagree.
func LeaderboardHidden(sections []SectionID) bool {
	return !SectionVisible(sections, SectionLeaderboard)
}

// intersectSections keeps entries of base that also appear in allow,
// preserving base order.
func intersectSections(base, allow []SectionID) []SectionID {
	allowed := make(map[SectionID]struct{}, len(allow))
	for _, s := range allow {
		allowed[s] = struct{}{}
	}
	out := make([]SectionID, 0, len(base))
	for _, s := range base {
		if _, ok := allowed[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// subtractSections removes entries of deny from base, preserving order.
func subtractSections(base, deny []SectionID) []SectionID {
	denied := make(map[SectionID]struct{}, len(deny))
	for _, s := range deny {
		denied[s] = struct{}{}
	}
	out := make([]SectionID, 0, len(base))
	for _, s := range base {
		if _, ok := denied[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
