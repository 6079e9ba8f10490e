package permission

import "sort"

// Actor ranks. Rank gates which permission sets an actor may hand out, it
// never grants access by itself.
const (
	RankUser       = 1
	RankAdmin      = 2
	RankSuperAdmin = 3
)

// Effective flattens role permission sets and direct grants into a sorted,
// deduplicated list of codes. Duplicates across sources collapse; the result
// is deterministic regardless of input order.
func Effective(rolePerms [][]string, direct []string) []string {
	seen := make(map[string]struct{})
	for _, perms := range rolePerms {
		for _, code := range perms {
			seen[code] = struct{}{}
		}
	}
	for _, code := range direct {
		seen[code] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for code := range seen {
		result = append(result, code)
	}
	sort.Strings(result)
	return result
}

// Can reports whether a principal holds the given permission code. Total
// admins pass every check before membership is consulted, including codes
// the registry has never seen.
func Can(isAdmin bool, effective []string, code string) bool {
	if isAdmin {
		return true
	}
	for _, c := range effective {
		if c == code {
			return true
		}
	}
	return false
}

// CanAny reports whether the principal holds at least one of the codes.
// An empty code list is never satisfied for non-admins.
func CanAny(isAdmin bool, effective []string, codes ...string) bool {
	if isAdmin {
		return true
	}
	for _, code := range codes {
		if Can(false, effective, code) {
			return true
		}
	}
	return false
}

// HasProtected reports whether any permission in the set belongs to a
// protected category.
func HasProtected(perms []*Permission) bool {
	for _, p := range perms {
		if p.Category.Protected() {
			return true
		}
	}
	return false
}

// CanAssign decides whether an actor of the given rank may hand out a
// permission set. Rank 3 assigns anything, rank 2 only sets free of protected
// categories, rank 1 assigns nothing.
func CanAssign(actorRank int, hasProtected bool) bool {
	if actorRank >= RankSuperAdmin {
		return true
	}
	if actorRank == RankAdmin {
		return !hasProtected
	}
	return false
}
