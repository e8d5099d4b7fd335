package yeargraph

import (
	"fmt"
	"sort"
)

// CliqueCommunities finds overlapping communities by clique percolation: maximal
// cliques of at least k keywords are adjacent when they share k-1 keywords, and
// each connected group of adjacent cliques forms one community. A keyword may
// belong to several communities. Communities are sorted, ordered by first keyword.
func (g *Graph) CliqueCommunities(k int) ([][]string, error) {
	if k < 2 {
		return nil, fmt.Errorf("clique size must be at least 2, got %d", k)
	}

	var cliques [][]string
	for _, c := range g.Cliques() {
		if len(c) >= k {
			cliques = append(cliques, c)
		}
	}
	if len(cliques) == 0 {
		return nil, nil
	}

	// Index cliques by keyword so only cliques that share something are compared.
	byKeyword := make(map[string][]int)
	for i, c := range cliques {
		for _, kw := range c {
			byKeyword[kw] = append(byKeyword[kw], i)
		}
	}

	uf := newUnionFind(len(cliques))
	shared := make(map[[2]int]int)
	for _, members := range byKeyword {
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				shared[[2]int{members[x], members[y]}]++
			}
		}
	}
	for pair, n := range shared {
		if n >= k-1 {
			uf.union(pair[0], pair[1])
		}
	}

	groups := make(map[int]map[string]bool)
	for i, c := range cliques {
		root := uf.find(i)
		if groups[root] == nil {
			groups[root] = make(map[string]bool)
		}
		for _, kw := range c {
			groups[root][kw] = true
		}
	}

	communities := make([][]string, 0, len(groups))
	for _, set := range groups {
		community := make([]string, 0, len(set))
		for kw := range set {
			community = append(community, kw)
		}
		sort.Strings(community)
		communities = append(communities, community)
	}
	sortGroups(communities)
	return communities, nil
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
