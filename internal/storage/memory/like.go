package memory

import (
	"regexp"
	"strings"
	"sync"
)

var (
	likeMu    sync.Mutex
	likeCache = map[string]*regexp.Regexp{}
)

// likeRegexp compiles a SQL LIKE pattern into an anchored, case-insensitive
// regexp: '%' matches any run of characters and '_' exactly one.
func likeRegexp(pattern string) *regexp.Regexp {
	likeMu.Lock()
	defer likeMu.Unlock()
	if re, ok := likeCache[pattern]; ok {
		return re
	}
	var b strings.Builder
	b.WriteString(`(?is)^`)
	lit := strings.Builder{}
	flush := func() {
		b.WriteString(regexp.QuoteMeta(lit.String()))
		lit.Reset()
	}
	for _, r := range pattern {
		switch r {
		case '%':
			flush()
			b.WriteString(`.*`)
		case '_':
			flush()
			b.WriteString(`.`)
		default:
			lit.WriteRune(r)
		}
	}
	flush()
	b.WriteString(`$`)
	re := regexp.MustCompile(b.String())
	if len(likeCache) > 1024 {
		likeCache = map[string]*regexp.Regexp{}
	}
	likeCache[pattern] = re
	return re
}

// Like reports whether s matches the LIKE pattern.
func Like(s, pattern string) bool {
	return likeRegexp(pattern).MatchString(s)
}
