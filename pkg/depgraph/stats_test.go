package depgraph

import "testing"

func TestComputeStats(t *testing.T) {
	g := mustGraph(t, workspaceInput())

	tests := []struct {
		name string
		opts Options
		want TreeStats
	}{
		{
			name: "full tree",
			want: TreeStats{TotalCrates: 9, DirectDeps: 3, TransitiveDeps: 5, DuplicateCrates: 1},
		},
		{
			name: "depth one",
			opts: Options{MaxDepth: Depth(1)},
			want: TreeStats{TotalCrates: 4, DirectDeps: 3, TransitiveDeps: 0, DuplicateCrates: 0},
		},
		{
			name: "exclude dev",
			opts: Options{ExcludeDev: true},
			want: TreeStats{TotalCrates: 8, DirectDeps: 2, TransitiveDeps: 5, DuplicateCrates: 1},
		},
		{
			name: "invert leaf",
			opts: Options{Invert: "leaf"},
			want: TreeStats{TotalCrates: 4, DirectDeps: 1, TransitiveDeps: 2, DuplicateCrates: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(mustBuild(t, g, tt.opts))
			if got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
			if got.TotalCrates < got.DirectDeps || got.TransitiveDeps < 0 {
				t.Errorf("inconsistent stats %+v", got)
			}
		})
	}
}

func TestComputeStatsSaturates(t *testing.T) {
	root := syntheticNode("")
	got := ComputeStats(root)
	if got != (TreeStats{}) {
		t.Errorf("ComputeStats(empty) = %+v", got)
	}
}

func TestComputeStatsCountsRepeatedNodesOnce(t *testing.T) {
	g := mustGraph(t, Input{
		Root: id("a", "1.0.0"),
		Packages: []Package{
			pkg("a", "1.0.0", on(id("b", "1.0.0")), on(id("c", "1.0.0"))),
			pkg("b", "1.0.0", on(id("c", "1.0.0"))),
			pkg("c", "1.0.0"),
		},
	})
	got := ComputeStats(mustBuild(t, g, Options{}))
	if got.TotalCrates != 3 || got.DirectDeps != 2 || got.TransitiveDeps != 0 {
		t.Errorf("ComputeStats() = %+v", got)
	}
}
