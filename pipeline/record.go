package pipeline

// Record is one unit of domain data, such as a JSON object or a CSV row.
type Record map[string]any

// Batch is an ordered sequence of records. A nil Batch is empty.
type Batch []Record

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Lookup follows a dotted path through nested mappings. It reports false
// when any segment is missing or a non-mapping is encountered.
func (r Record) Lookup(path []string) (any, bool) {
	var cur any = map[string]any(r)
	for _, key := range path {
		var m map[string]any
		switch v := cur.(type) {
		case map[string]any:
			m = v
		case Record:
			m = v
		default:
			return nil, false
		}
		next, ok := m[key]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
