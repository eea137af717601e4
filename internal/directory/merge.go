package directory

import (
	"strconv"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
)

// Merge returns one identity per user id: the directory entry keyed by the
// id's decimal form when present, otherwise domain.DefaultIdentity. The
// result has exactly len(ids) entries for distinct ids and never fails.
func Merge(ids []int, users map[string]domain.IdentityEntry) map[int]domain.IdentityEntry {
	out := make(map[int]domain.IdentityEntry, len(ids))
	for _, id := range ids {
		if u, ok := users[strconv.Itoa(id)]; ok {
			out[id] = u
			continue
		}
		out[id] = domain.DefaultIdentity(id)
	}
	return out
}
