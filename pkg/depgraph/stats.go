package depgraph

// TreeStats summarizes a built tree.
type TreeStats struct {
	TotalCrates     int `json:"total_crates"`
	DirectDeps      int `json:"direct_deps"`
	TransitiveDeps  int `json:"transitive_deps"`
	DuplicateCrates int `json:"duplicate_crates"`
}

// ComputeStats walks root once.
//
// TotalCrates counts distinct package ids, synthetic roots excluded.
// DuplicateCrates counts names with more than one version within the
// rendered tree, which can be lower than the global duplicate index.
// TransitiveDeps saturates at zero.
func ComputeStats(root *TreeNode) TreeStats {
	ids := make(map[string]struct{})
	versions := make(map[string]map[string]struct{})

	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		if !n.IsSynthetic() {
			ids[n.ID] = struct{}{}
		}
		if n.Version != "" {
			if versions[n.Name] == nil {
				versions[n.Name] = make(map[string]struct{})
			}
			versions[n.Name][n.Version] = struct{}{}
		}
		for _, c := range n.Dependencies {
			walk(c)
		}
	}
	walk(root)

	dupes := 0
	for _, vs := range versions {
		if len(vs) > 1 {
			dupes++
		}
	}

	direct := len(root.Dependencies)
	self := 0
	if !root.IsSynthetic() {
		self = 1
	}
	transitive := len(ids) - direct - self
	if transitive < 0 {
		transitive = 0
	}

	return TreeStats{
		TotalCrates:     len(ids),
		DirectDeps:      direct,
		TransitiveDeps:  transitive,
		DuplicateCrates: dupes,
	}
}

// TreeOutput is the structured form of a tree command result.
type TreeOutput struct {
	Root  *TreeNode `json:"root"`
	Stats TreeStats `json:"stats"`
}
