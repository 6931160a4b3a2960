package service

import (
	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

// ContestRow is a contest with its status at the time of the listing.
type ContestRow struct {
	model.Contest
	Status model.ContestStatus `json:"status"`
}

// Contests returns the cached contests matching query in sort order.
func (s *Service) Contests(query string, sort listing.SortState) []ContestRow {
	items := listing.Contests.Apply(s.contests.Snapshot(), query, sort)
	now := s.clock.Now()
	rows := make([]ContestRow, len(items))
	for i, c := range items {
		rows[i] = ContestRow{Contest: c, Status: c.Status(now)}
	}
	return rows
}

// Resources returns the cached resources matching query in sort order.
func (s *Service) Resources(query string, sort listing.SortState) []model.Resource {
	return listing.Resources.Apply(s.resources.Snapshot(), query, sort)
}

// Events returns the cached events matching query in sort order.
func (s *Service) Events(query string, sort listing.SortState) []model.Event {
	return listing.Events.Apply(s.events.Snapshot(), query, sort)
}
