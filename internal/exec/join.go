package exec

// hashJoin implements §4.6: the smaller side becomes the build side,
// unpacked into a multimap keyed by its join column's string value; the
// larger side is streamed as the probe side. Every match is emitted with
// left columns then right columns, regardless of which physical side was
// chosen as build.
func hashJoin(leftRows, rightRows [][]string, leftJoinIdx, rightJoinIdx int) [][]string {
	buildIsLeft := len(leftRows) <= len(rightRows)

	var buildRows, probeRows [][]string
	var buildIdx, probeIdx int
	if buildIsLeft {
		buildRows, probeRows, buildIdx, probeIdx = leftRows, rightRows, leftJoinIdx, rightJoinIdx
	} else {
		buildRows, probeRows, buildIdx, probeIdx = rightRows, leftRows, rightJoinIdx, leftJoinIdx
	}

	multimap := make(map[string][][]string, len(buildRows))
	for _, row := range buildRows {
		if buildIdx >= len(row) {
			continue
		}
		key := row[buildIdx]
		multimap[key] = append(multimap[key], row)
	}

	var out [][]string
	for _, probe := range probeRows {
		if probeIdx >= len(probe) {
			continue
		}
		for _, build := range multimap[probe[probeIdx]] {
			var left, right []string
			if buildIsLeft {
				left, right = build, probe
			} else {
				left, right = probe, build
			}
			row := make([]string, 0, len(left)+len(right))
			row = append(row, left...)
			row = append(row, right...)
			out = append(out, row)
		}
	}
	return out
}
