package fields

// Source is one candidate mapping of request fields (body, query or path
// parameters). Values may be of arbitrary JSON-compatible shape.
type Source map[string]interface{}

// Record is the merged view over all sources for one request.
type Record map[string]interface{}

// Merge combines candidate sources in the given precedence order: later
// sources overwrite earlier ones on key collision. The order is a
// per-endpoint choice made by the caller. Deletion endpoints typically favor
// query parameters, creation endpoints the body.
func Merge(sources ...Source) Record {
	merged := make(Record)
	for _, src := range sources {
		for k, v := range src {
			merged[k] = v
		}
	}
	return merged
}
