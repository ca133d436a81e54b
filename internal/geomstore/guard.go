package geomstore

// Complete applies the overflow policy to a fetch result. A result whose
// count equals the query limit may be a truncated view of the tile, and a
// truncated tile misleads clients into treating the subset as complete, so
// the whole set is discarded and the tile renders empty. Strictly equality:
// a true total of exactly limit is suppressed too, a known conservative
// false positive. Below the limit every fetched record passes through.
func Complete(res FetchResult, limit int) []Record {
	if res.Count() == limit {
		return nil
	}
	return res.Records
}
