package cog

// workingSet is an immutable snapshot of the dataset being oversampled.
// Candidates are derived with withCluster and committed by replacing the
// searcher's reference; a snapshot is never modified after construction.
type workingSet struct {
	version  int
	features [][]float64
	labels   []int
	// clusters holds the partitioner's id per row, or Unassigned.
	clusters []int
	// origins holds the training-row index of an observed row, or -1 for a
	// synthetic row.
	origins []int
}

// newWorkingSet builds the initial snapshot: the training rows with their
// cluster assignments.
func newWorkingSet(train *Dataset, assign []int) *workingSet {
	n := train.Len()
	ws := &workingSet{
		features: train.Features,
		labels:   train.Labels,
		clusters: append([]int(nil), assign...),
		origins:  make([]int, n),
	}
	for i := range ws.origins {
		ws.origins[i] = i
	}
	return ws
}

// Len returns the number of rows.
func (ws *workingSet) Len() int { return len(ws.labels) }

// withCluster returns a new snapshot in which the observed rows listed in
// members are replaced by rows. rows must start with those members, in order,
// followed by synthetic rows. Every row of the result is Unassigned.
func (ws *workingSet) withCluster(members []int, rows Oversampled) *workingSet {
	drop := make(map[int]bool, len(members))
	for _, m := range members {
		drop[m] = true
	}

	size := ws.Len() - len(members) + len(rows.Labels)
	next := &workingSet{
		version:  ws.version + 1,
		features: make([][]float64, 0, size),
		labels:   make([]int, 0, size),
		clusters: make([]int, 0, size),
		origins:  make([]int, 0, size),
	}
	for i, o := range ws.origins {
		if o >= 0 && drop[o] {
			continue
		}
		next.features = append(next.features, ws.features[i])
		next.labels = append(next.labels, ws.labels[i])
		next.origins = append(next.origins, o)
	}
	for i := range rows.Labels {
		origin := -1
		if i < len(members) {
			origin = members[i]
		}
		next.features = append(next.features, rows.Features[i])
		next.labels = append(next.labels, rows.Labels[i])
		next.origins = append(next.origins, origin)
	}
	for range next.labels {
		next.clusters = append(next.clusters, Unassigned)
	}
	return next
}

// synthetic returns the number of synthetic rows in the snapshot.
func (ws *workingSet) synthetic() int {
	n := 0
	for _, o := range ws.origins {
		if o < 0 {
			n++
		}
	}
	return n
}
