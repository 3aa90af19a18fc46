// FILE: lixenwraith/confman/merge.go
package confman

// Merge combines two mappings without modifying either. Keys from override win.
// When both sides hold a mapping under the same key the two are merged
// recursively; every other pair, including sequences and mismatched kinds, takes
// the override value whole. Keys keep base order, new keys follow in override order.
//
// Inputs must be acyclic; the manager verifies this with checkDepth before merging.
func Merge(base, override *Mapping) *Mapping {
	result := &Mapping{
		keys:   make([]string, 0, base.Len()+override.Len()),
		values: make(map[string]Value, base.Len()+override.Len()),
	}
	base.Range(func(k string, v Value) bool {
		result.keys = append(result.keys, k)
		result.values[k] = v
		return true
	})

	override.Range(func(k string, v Value) bool {
		if existing, ok := result.values[k]; ok {
			em, eIsMap := existing.AsMapping()
			om, oIsMap := v.AsMapping()
			if eIsMap && oIsMap {
				result.values[k] = Map(Merge(em, om))
				return true
			}
		}
		result.Set(k, v)
		return true
	})

	return result
}
