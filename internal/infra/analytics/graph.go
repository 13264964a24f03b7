package analytics

import (
	"sort"

	"tldrscope/internal/domain"
)

// BuildGraph builds the reference graph from each record's related list.
// References need not resolve: a dangling name still collects incoming
// edges but gets no centrality entry. Records without a name are skipped.
func BuildGraph(records []domain.CommandRecord, topN int) domain.DependencyGraph {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	graph := domain.DependencyGraph{
		Outgoing:   make(map[string][]string),
		Incoming:   make(map[string][]string),
		Centrality: make(map[string]int),
	}

	order := make([]string, 0, len(records))
	for _, rec := range records {
		name := rec.Identity()
		if name == "" {
			continue
		}
		if _, seen := graph.Outgoing[name]; !seen {
			graph.Outgoing[name] = []string{}
			order = append(order, name)
		}
		graph.Outgoing[name] = append(graph.Outgoing[name], rec.Related...)
	}

	for _, name := range order {
		if _, ok := graph.Incoming[name]; !ok {
			graph.Incoming[name] = []string{}
		}
		for _, target := range graph.Outgoing[name] {
			graph.Incoming[target] = append(graph.Incoming[target], name)
		}
	}

	ranking := make([]domain.ConnectedCommand, 0, len(order))
	for _, name := range order {
		out, in := len(graph.Outgoing[name]), len(graph.Incoming[name])
		graph.Centrality[name] = out + in
		ranking = append(ranking, domain.ConnectedCommand{
			Command:    name,
			Centrality: out + in,
			Outgoing:   out,
			Incoming:   in,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Centrality > ranking[j].Centrality
	})
	graph.Ranking = ranking

	graph.MostConnected = make([]domain.ConnectedCommand, 0, topN)
	for _, node := range ranking {
		if len(graph.MostConnected) == topN {
			break
		}
		if node.Centrality == 0 {
			continue
		}
		graph.MostConnected = append(graph.MostConnected, node)
	}
	return graph
}
