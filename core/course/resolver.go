package course

import "strings"

// ResolveCode fuzzy-matches a short or legacy course code against the
// canonical code set, case-insensitively, in three tiers:
//
//  1. exact equality;
//  2. prefix-or-suffix match — a unique union wins outright, otherwise
//     codes ending with the query are preferred (legacy codes commonly gain
//     a department prefix) and win only when that narrows to one;
//  3. substring match as the broadest fallback, unique hit only.
//
// Anything still ambiguous after tier 3 is ErrUnresolvedCode: legacy codes
// that cannot be pinned down are surfaced, never guessed.
func ResolveCode(codes []string, short string) (string, error) {
	q := strings.ToUpper(strings.TrimSpace(short))
	if q == "" {
		return "", ErrUnresolvedCode
	}

	for _, c := range codes {
		if strings.ToUpper(c) == q {
			return c, nil
		}
	}

	var affix, suffix []string
	for _, c := range codes {
		u := strings.ToUpper(c)
		pre := strings.HasPrefix(u, q)
		suf := strings.HasSuffix(u, q)
		if pre || suf {
			affix = append(affix, c)
		}
		if suf {
			suffix = append(suffix, c)
		}
	}
	if len(affix) == 1 {
		return affix[0], nil
	}
	if len(affix) > 1 && len(suffix) == 1 {
		return suffix[0], nil
	}

	var sub []string
	for _, c := range codes {
		if strings.Contains(strings.ToUpper(c), q) {
			sub = append(sub, c)
		}
	}
	if len(sub) == 1 {
		return sub[0], nil
	}
	return "", ErrUnresolvedCode
}
